package topicmgr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RegisterAndList(t *testing.T) {
	m := NewManager()

	joined := DefineModule(TopicConfig{Name: "chat.room.joined", Module: "chat", Description: "joined"})
	closed := DefineFramework(TopicConfig{Name: "ws.client.closed", Module: "ignored", Description: "closed"})

	require.NoError(t, m.Register(joined))
	require.NoError(t, m.Register(closed))

	topics := m.List()
	require.Len(t, topics, 2)
	assert.Equal(t, "chat.room.joined", topics[0].Name())
	assert.Equal(t, ScopeFramework, topics[1].Scope())
	assert.Empty(t, topics[1].Module())

	got, ok := m.Get("chat.room.joined")
	require.True(t, ok)
	assert.Equal(t, "chat", got.Module())
	assert.Len(t, m.ListByModule("chat"), 1)
	assert.Equal(t, 2, m.Count())
}

func TestManager_RegisterIsIdempotentForSameDefinition(t *testing.T) {
	m := NewManager()
	topic := DefineModule(TopicConfig{Name: "chat.room.left", Module: "chat", Description: "left"})

	require.NoError(t, m.Register(topic))
	require.NoError(t, m.Register(topic))
	assert.Equal(t, 1, m.Count())

	clash := DefineModule(TopicConfig{Name: "chat.room.left", Module: "other", Description: "something else"})
	err := m.Register(clash)
	var topicErr *TopicError
	require.True(t, errors.As(err, &topicErr))
	assert.Equal(t, ErrorTypeDuplicate, topicErr.Type)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		topic Topic
		want  ErrorType
	}{
		{"missing name", DefineModule(TopicConfig{Module: "chat", Description: "d"}), ErrorTypeMissing},
		{"single segment", DefineModule(TopicConfig{Name: "chat", Module: "chat", Description: "d"}), ErrorTypeInvalidName},
		{"upper case", DefineModule(TopicConfig{Name: "Chat.Message", Module: "chat", Description: "d"}), ErrorTypeInvalidName},
		{"missing description", DefineModule(TopicConfig{Name: "chat.message", Module: "chat"}), ErrorTypeMissing},
		{"module topic without module", DefineModule(TopicConfig{Name: "chat.message", Description: "d"}), ErrorTypeMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.topic)
			var topicErr *TopicError
			require.True(t, errors.As(err, &topicErr))
			assert.Equal(t, tt.want, topicErr.Type)
		})
	}
}

func TestMustRegisterPanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() {
		NewManager().MustRegister(DefineModule(TopicConfig{Name: "bad name"}))
	})
}
