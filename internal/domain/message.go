package domain

import (
	"context"
	"time"
)

// HistoryLimit is the maximum number of stored messages returned for a room.
const HistoryLimit = 50

// StoredMessage is a chat message as it was persisted for a room.
type StoredMessage struct {
	RoomID    string    `json:"roomId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage is the input for appending a message to a room's history.
// A zero Timestamp is stamped by the repository at write time.
type NewMessage struct {
	RoomID    string    `json:"roomId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageRepository defines the contract for room history storage.
// It lives in the domain because it's a requirement OF the chat engine, not
// of any particular database.
type MessageRepository interface {
	// RecentMessages returns up to HistoryLimit messages of a room, newest first.
	RecentMessages(ctx context.Context, roomID string) ([]StoredMessage, error)
	// SaveMessage appends a message to a room's history.
	SaveMessage(ctx context.Context, msg NewMessage) error
}
