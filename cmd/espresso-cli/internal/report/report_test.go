package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nfrund/espresso/internal/domain"
	"github.com/nfrund/espresso/internal/topicmgr"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newestFirst(n int) []domain.StoredMessage {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	out := make([]domain.StoredMessage, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, domain.StoredMessage{
			RoomID:    "lobby",
			Username:  "user",
			Text:      "message " + string(rune('a'+i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestChronological(t *testing.T) {
	in := newestFirst(5) // e d c b a

	all := Chronological(in, 0)
	require.Len(t, all, 5)
	assert.Equal(t, "message a", all[0].Text)
	assert.Equal(t, "message e", all[4].Text)
	assert.Equal(t, "message e", in[0].Text, "input must not be reordered")

	latest := Chronological(in, 2)
	require.Len(t, latest, 2)
	assert.Equal(t, "message d", latest[0].Text)
	assert.Equal(t, "message e", latest[1].Text)
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	WriteHistory(&buf, "lobby", Chronological(newestFirst(3), 0), false)

	out := buf.String()
	assert.Contains(t, out, "====== lobby (3 messages) ======")
	assert.Contains(t, out, "TIME")
	assert.Contains(t, out, "MESSAGE")
	require.Contains(t, out, "message a")
	assert.Less(t, strings.Index(out, "message a"), strings.Index(out, "message c"), "oldest first")
}

func TestWriteHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	WriteHistory(&buf, "attic", nil, false)
	assert.Contains(t, buf.String(), "No stored messages.")
}

func TestExportJSONLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	msgs := Chronological(newestFirst(3), 0)

	require.NoError(t, ExportJSONLines(fs, "out/lobby.jsonl", msgs))

	data, err := afero.ReadFile(fs, "out/lobby.jsonl")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)

	var first domain.StoredMessage
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, msgs[0], first)
	assert.Contains(t, lines[0], `"roomId":"lobby"`)
}

func TestExportJSONLines_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := ExportJSONLines(fs, "lobby.jsonl", nil)
	assert.ErrorContains(t, err, "create lobby.jsonl")
}

func TestTopicsOutput(t *testing.T) {
	topics := []topicmgr.Topic{
		topicmgr.DefineModule(topicmgr.TopicConfig{
			Name:        "chat.test.event",
			Module:      "chat",
			Description: "A test event",
			Metadata:    map[string]any{"b": 2, "a": 1},
		}),
	}

	var table bytes.Buffer
	WriteTopicsTable(&table, topics)
	assert.Contains(t, table.String(), "chat.test.event")
	assert.Contains(t, table.String(), "module")

	var js bytes.Buffer
	require.NoError(t, WriteTopicsJSON(&js, topics))
	var doc struct {
		Topics []TopicDisplay `json:"topics"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(js.Bytes(), &doc))
	assert.Equal(t, 1, doc.Count)
	assert.Equal(t, "chat", doc.Topics[0].Module)

	var details bytes.Buffer
	WriteTopicDetails(&details, topics[0])
	assert.Less(t, strings.Index(details.String(), "  a: 1"), strings.Index(details.String(), "  b: 2"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdef...", truncate("abcdefghijklmnop", 9))
}
