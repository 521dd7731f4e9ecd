package database

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/nfrund/espresso/internal/domain"
)

const driverBadger = "badger"

var _ domain.MessageRepository = (*BadgerStore)(nil)

// BadgerStore persists room histories in an embedded BadgerDB.
//
// Keys are formatted as "msg:{hex(room)}:{unixnano, 19 digits}:{uuid}" so
// that a prefix scan yields a room's messages in chronological order. The
// room is hex encoded so one room's prefix never matches another room.
type BadgerStore struct {
	db    *badger.DB
	limit int
}

// OpenBadger opens (or creates) a store at path. An empty path keeps the
// data in memory.
func OpenBadger(path string, limit int) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, NewStoreError(driverBadger, "open", err)
	}
	return NewBadgerStore(db, limit), nil
}

// NewBadgerStore wraps an open database.
func NewBadgerStore(db *badger.DB, limit int) *BadgerStore {
	return &BadgerStore{db: db, limit: effectiveLimit(limit)}
}

func roomPrefix(roomID string) []byte {
	return []byte("msg:" + hex.EncodeToString([]byte(roomID)) + ":")
}

func messageKey(roomID string, at time.Time) []byte {
	return fmt.Appendf(roomPrefix(roomID), "%019d:%s", at.UnixNano(), uuid.New())
}

// SaveMessage stores a message under a time ordered key.
func (s *BadgerStore) SaveMessage(ctx context.Context, msg domain.NewMessage) error {
	if err := ctx.Err(); err != nil {
		return NewStoreError(driverBadger, "save message", err)
	}

	stored := domain.StoredMessage{
		RoomID:    msg.RoomID,
		Username:  msg.Username,
		Text:      msg.Text,
		Timestamp: msg.Timestamp.UTC(),
	}
	if msg.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(stored)
	if err != nil {
		return NewStoreError(driverBadger, "save message", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(msg.RoomID, stored.Timestamp), value)
	})
	if err != nil {
		return NewStoreError(driverBadger, "save message", err)
	}
	return nil
}

// RecentMessages walks the room prefix backwards from the newest key.
func (s *BadgerStore) RecentMessages(ctx context.Context, roomID string) ([]domain.StoredMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewStoreError(driverBadger, "recent messages", err)
	}

	messages := make([]domain.StoredMessage, 0, s.limit)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(roomID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the largest possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), "9999999999999999999"...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix) && len(messages) < s.limit; it.Next() {
			var msg domain.StoredMessage
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &msg)
			})
			if err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		return nil, NewStoreError(driverBadger, "recent messages", err)
	}
	return messages, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStoreError(driverBadger, "close", err)
	}
	return nil
}
