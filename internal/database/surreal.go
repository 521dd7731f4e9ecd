package database

import (
	"context"
	"time"

	"github.com/nfrund/espresso/internal/domain"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const (
	driverSurreal = "surreal"
	messageTable  = "message"

	recentMessagesQuery = "SELECT roomId, username, text, timestamp FROM message WHERE roomId = $room ORDER BY timestamp DESC LIMIT $limit"
	createMessageQuery  = "CREATE type::table($table) CONTENT $data"
	defineIndexQuery    = "DEFINE INDEX IF NOT EXISTS message_room_time ON TABLE message FIELDS roomId, timestamp"
)

var _ domain.MessageRepository = (*SurrealStore)(nil)

// surrealMessage is the row shape of the message table.
type surrealMessage struct {
	RoomID    string                       `json:"roomId"`
	Username  string                       `json:"username"`
	Text      string                       `json:"text"`
	Timestamp surrealmodels.CustomDateTime `json:"timestamp"`
}

// SurrealStore implements the message repository on a SurrealDB table.
type SurrealStore struct {
	db    *surrealdb.DB
	limit int
}

// NewSurrealStore creates a store on an open connection.
func NewSurrealStore(db *surrealdb.DB, limit int) *SurrealStore {
	return &SurrealStore{db: db, limit: effectiveLimit(limit)}
}

// EnsureSchema defines the index used by RecentMessages.
func (s *SurrealStore) EnsureSchema(ctx context.Context) error {
	if err := Execute(ctx, s.db, defineIndexQuery, nil); err != nil {
		return NewStoreError(driverSurreal, "define schema", err).WithQuery(defineIndexQuery)
	}
	return nil
}

// RecentMessages returns the newest messages of a room, newest first.
func (s *SurrealStore) RecentMessages(ctx context.Context, roomID string) ([]domain.StoredMessage, error) {
	rows, err := Query[surrealMessage](ctx, s.db, recentMessagesQuery, map[string]any{
		"room":  roomID,
		"limit": s.limit,
	})
	if err != nil {
		return nil, NewStoreError(driverSurreal, "recent messages", err).WithQuery(recentMessagesQuery)
	}

	messages := make([]domain.StoredMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, domain.StoredMessage{
			RoomID:    row.RoomID,
			Username:  row.Username,
			Text:      row.Text,
			Timestamp: row.Timestamp.Time,
		})
	}
	return messages, nil
}

// SaveMessage creates a message record.
func (s *SurrealStore) SaveMessage(ctx context.Context, msg domain.NewMessage) error {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	data := map[string]any{
		"roomId":    msg.RoomID,
		"username":  msg.Username,
		"text":      msg.Text,
		"timestamp": surrealmodels.CustomDateTime{Time: ts.UTC()},
	}
	err := Execute(ctx, s.db, createMessageQuery, map[string]any{"table": messageTable, "data": data})
	if err != nil {
		return NewStoreError(driverSurreal, "save message", err).WithQuery(createMessageQuery)
	}
	return nil
}

// Close closes the underlying connection.
func (s *SurrealStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.db.Close(ctx); err != nil {
		return NewStoreError(driverSurreal, "close", err)
	}
	return nil
}
