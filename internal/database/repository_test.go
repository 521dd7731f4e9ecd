package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nfrund/espresso/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepository runs the behaviour every MessageRepository must honour.
// room names are made unique per run so shared external databases can be used.
func testRepository(t *testing.T, repo domain.MessageRepository) {
	t.Helper()
	ctx := context.Background()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty room", func(t *testing.T) {
		msgs, err := repo.RecentMessages(ctx, "empty-"+suffix)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("newest first", func(t *testing.T) {
		room := "order-" + suffix
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.SaveMessage(ctx, domain.NewMessage{
				RoomID:    room,
				Username:  "Brave Blue Otter",
				Text:      fmt.Sprintf("msg %d", i),
				Timestamp: base.Add(time.Duration(i) * time.Second),
			}))
		}

		msgs, err := repo.RecentMessages(ctx, room)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "msg 2", msgs[0].Text)
		assert.Equal(t, "msg 0", msgs[2].Text)
		assert.Equal(t, room, msgs[0].RoomID)
		assert.Equal(t, "Brave Blue Otter", msgs[0].Username)
		assert.True(t, msgs[0].Timestamp.Equal(base.Add(2*time.Second)), "got %s", msgs[0].Timestamp)
	})

	t.Run("capped at history limit", func(t *testing.T) {
		room := "cap-" + suffix
		for i := 0; i < domain.HistoryLimit+5; i++ {
			require.NoError(t, repo.SaveMessage(ctx, domain.NewMessage{
				RoomID:    room,
				Username:  "u",
				Text:      fmt.Sprintf("m%02d", i),
				Timestamp: base.Add(time.Duration(i) * time.Millisecond),
			}))
		}

		msgs, err := repo.RecentMessages(ctx, room)
		require.NoError(t, err)
		require.Len(t, msgs, domain.HistoryLimit)
		assert.Equal(t, fmt.Sprintf("m%02d", domain.HistoryLimit+4), msgs[0].Text)
		assert.Equal(t, "m05", msgs[len(msgs)-1].Text)
	})

	t.Run("rooms are isolated", func(t *testing.T) {
		a, b := "iso-"+suffix, "iso-"+suffix+":b"
		require.NoError(t, repo.SaveMessage(ctx, domain.NewMessage{RoomID: a, Username: "u", Text: "in a", Timestamp: base}))
		require.NoError(t, repo.SaveMessage(ctx, domain.NewMessage{RoomID: b, Username: "u", Text: "in b", Timestamp: base}))

		msgs, err := repo.RecentMessages(ctx, a)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "in a", msgs[0].Text)
	})

	t.Run("zero timestamp is stamped", func(t *testing.T) {
		room := "stamp-" + suffix
		before := time.Now().Add(-time.Second)
		require.NoError(t, repo.SaveMessage(ctx, domain.NewMessage{RoomID: room, Username: "u", Text: "now"}))

		msgs, err := repo.RecentMessages(ctx, room)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.True(t, msgs[0].Timestamp.After(before))
	})
}
