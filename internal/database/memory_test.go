package database

import (
	"context"
	"testing"
	"time"

	"github.com/nfrund/espresso/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	testRepository(t, NewMemoryStore(0))
}

func TestMemoryStore_OrdersByTimestamp(t *testing.T) {
	store := NewMemoryStore(domain.HistoryLimit)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveMessage(ctx, domain.NewMessage{RoomID: "r", Text: "second", Timestamp: base.Add(time.Second)}))
	require.NoError(t, store.SaveMessage(ctx, domain.NewMessage{RoomID: "r", Text: "first", Timestamp: base}))

	msgs := store.Messages("r")
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
}

func TestMemoryStore_ResetAndClose(t *testing.T) {
	store := NewMemoryStore(domain.HistoryLimit)
	ctx := context.Background()

	require.NoError(t, store.SaveMessage(ctx, domain.NewMessage{RoomID: "r", Text: "x"}))
	store.Reset()
	assert.Empty(t, store.Messages("r"))

	require.NoError(t, store.Close())
	err := store.SaveMessage(ctx, domain.NewMessage{RoomID: "r", Text: "x"})
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := NewMemoryStore(domain.HistoryLimit)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.RecentMessages(ctx, "r")
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)
}
