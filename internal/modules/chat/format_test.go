package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		when time.Time
		want string
	}{
		{"afternoon", time.Date(2024, 1, 1, 15, 4, 0, 0, time.UTC), "3:04 pm"},
		{"morning", time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), "9:30 am"},
		{"midnight", time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC), "12:05 am"},
		{"noon", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), "12:00 pm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Format("Alice", "hello", tt.when)
			assert.Equal(t, Envelope{Username: "Alice", Text: "hello", Time: tt.want}, env)
		})
	}
}

func TestFormat_KeepsTextVerbatim(t *testing.T) {
	env := Format("", "  <b>hi</b>  ", time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "", env.Username)
	assert.Equal(t, "  <b>hi</b>  ", env.Text)
	assert.Equal(t, "11:59 pm", env.Time)
}
