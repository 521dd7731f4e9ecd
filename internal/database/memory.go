package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nfrund/espresso/internal/domain"
)

const driverMemory = "memory"

var _ domain.MessageRepository = (*MemoryStore)(nil)

// MemoryStore keeps room histories in process memory. It is the default
// backend and the test double for the persistence port.
type MemoryStore struct {
	mu     sync.RWMutex
	rooms  map[string][]domain.StoredMessage
	limit  int
	now    func() time.Time
	closed bool
}

// NewMemoryStore creates an empty store returning up to limit messages per
// room. A limit outside 1..50 uses the default.
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string][]domain.StoredMessage),
		limit: effectiveLimit(limit),
		now:   time.Now,
	}
}

// RecentMessages returns the newest messages of a room, newest first.
func (s *MemoryStore) RecentMessages(ctx context.Context, roomID string) ([]domain.StoredMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewStoreError(driverMemory, "recent messages", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStoreError(driverMemory, "recent messages", ErrClosed)
	}

	history := s.rooms[roomID]
	n := min(len(history), s.limit)
	out := make([]domain.StoredMessage, 0, n)
	for i := len(history) - 1; i >= len(history)-n; i-- {
		out = append(out, history[i])
	}
	return out, nil
}

// SaveMessage appends a message, keeping each room ordered by timestamp.
func (s *MemoryStore) SaveMessage(ctx context.Context, msg domain.NewMessage) error {
	if err := ctx.Err(); err != nil {
		return NewStoreError(driverMemory, "save message", err)
	}

	stored := domain.StoredMessage{
		RoomID:    msg.RoomID,
		Username:  msg.Username,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NewStoreError(driverMemory, "save message", ErrClosed)
	}

	history := s.rooms[msg.RoomID]
	i := sort.Search(len(history), func(i int) bool {
		return history[i].Timestamp.After(stored.Timestamp)
	})
	history = append(history, domain.StoredMessage{})
	copy(history[i+1:], history[i:])
	history[i] = stored
	s.rooms[msg.RoomID] = history
	return nil
}

// Messages returns every stored message of a room, oldest first.
func (s *MemoryStore) Messages(roomID string) []domain.StoredMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.StoredMessage(nil), s.rooms[roomID]...)
}

// Reset drops all stored messages.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = make(map[string][]domain.StoredMessage)
}

// Close marks the store closed. Further operations fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
