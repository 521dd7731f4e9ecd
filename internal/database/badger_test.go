package database

import (
	"context"
	"testing"
	"time"

	"github.com/nfrund/espresso/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStore(t *testing.T) {
	store, err := OpenBadger(t.TempDir(), domain.HistoryLimit)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	testRepository(t, store)
}

func TestBadgerStore_InMemory(t *testing.T) {
	store, err := OpenBadger("", 2)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, text := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveMessage(ctx, domain.NewMessage{
			RoomID: "lobby", Username: "u", Text: text, Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	msgs, err := store.RecentMessages(ctx, "lobby")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "c", msgs[0].Text)
	assert.Equal(t, "b", msgs[1].Text)
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenBadger(dir, domain.HistoryLimit)
	require.NoError(t, err)
	require.NoError(t, store.SaveMessage(ctx, domain.NewMessage{RoomID: "lobby", Username: "u", Text: "kept"}))
	require.NoError(t, store.Close())

	store, err = OpenBadger(dir, domain.HistoryLimit)
	require.NoError(t, err)
	defer store.Close()

	msgs, err := store.RecentMessages(ctx, "lobby")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "kept", msgs[0].Text)
}

func TestMessageKey_PrefixesDoNotCollide(t *testing.T) {
	at := time.Unix(0, 42)
	assert.NotContains(t, string(messageKey("ab", at)), string(roomPrefix("a")))
	assert.Contains(t, string(messageKey("a", at)), "msg:61:0000000000000000042:")
}
