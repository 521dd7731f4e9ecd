package websocket

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
)

var (
	// ErrEventAlreadyAllowed is returned when trying to add a duplicate event.
	ErrEventAlreadyAllowed = errors.New("event already in whitelist")
	// ErrInvalidEvent is returned when an empty event name is provided.
	ErrInvalidEvent = errors.New("event cannot be empty")
)

// EventWhitelist holds the inbound event names clients may send. Frames with
// any other event are ignored by the read pump.
type EventWhitelist struct {
	mu     sync.RWMutex
	events []string
}

// NewEventWhitelist creates a whitelist with the given events. Empty names
// are skipped.
func NewEventWhitelist(events ...string) *EventWhitelist {
	valid := make([]string, 0, len(events))
	for _, event := range events {
		if event != "" && !slices.Contains(valid, event) {
			valid = append(valid, event)
		}
	}
	return &EventWhitelist{events: valid}
}

// IsAllowed reports whether clients may send event.
func (w *EventWhitelist) IsAllowed(event string) bool {
	if event == "" {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Contains(w.events, event)
}

// Allow adds an event to the whitelist.
func (w *EventWhitelist) Allow(event string) error {
	if event == "" {
		return ErrInvalidEvent
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if slices.Contains(w.events, event) {
		return ErrEventAlreadyAllowed
	}
	w.events = append(w.events, event)
	slog.Debug("Allowed inbound event", "event", event)
	return nil
}

// Events returns a copy of the allowed event names.
func (w *EventWhitelist) Events() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.events)
}

// DefaultEventWhitelist allows the chat relay's inbound events.
func DefaultEventWhitelist() *EventWhitelist {
	return NewEventWhitelist(EventJoinRoom, EventChatMessage)
}
