package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nfrund/espresso/internal/domain"
	"github.com/nfrund/espresso/internal/metrics"
	"github.com/nfrund/espresso/internal/modules/chat/events"
	"github.com/nfrund/espresso/internal/modules/chat/topics"
	"github.com/nfrund/espresso/internal/names"
	"github.com/nfrund/espresso/internal/presence"
	"github.com/nfrund/espresso/internal/pubsub"
	"github.com/samber/lo"
	"github.com/samber/lo/mutable"
)

// Outbound event names.
const (
	EventMessage   = "message"
	EventRoomUsers = "roomUsers"
	EventError     = "error"
)

const (
	BotName        = "Espresso Bot"
	WelcomeMessage = "Welcome to Espresso Chat!"

	errRoomRequired = "Room is required"

	defaultHistoryTimeout = 3 * time.Second
)

// RoomUsers is the payload of a "roomUsers" event.
type RoomUsers struct {
	Room  string        `json:"room"`
	Users []domain.User `json:"users"`
}

// ErrorPayload is the payload of an "error" event.
type ErrorPayload struct {
	Message string `json:"message"`
}

// JoinRequest is the inbound "joinRoom" payload.
type JoinRequest struct {
	Room string `json:"room" validate:"required"`
}

// Transport delivers engine output to connections. Implementations must
// enqueue synchronously so that emission order is preserved per connection.
type Transport interface {
	// Subscribe adds the connection to the room's broadcast group. It returns
	// false when the connection is no longer open.
	Subscribe(connectionID, room string) bool
	Emit(connectionID, event string, payload any)
	Broadcast(room, event string, payload any, except ...string)
}

// NameGenerator produces display names for joining users.
type NameGenerator interface {
	Generate() string
}

// Dependencies holds all the services the Engine requires.
type Dependencies struct {
	Registry       *presence.Registry
	Names          NameGenerator
	Repository     domain.MessageRepository
	Publisher      pubsub.Publisher // required
	Transport      Transport        // required
	Metrics        *metrics.Collectors
	HistoryTimeout time.Duration
	// Clock stamps outgoing messages. Defaults to time.Now.
	Clock func() time.Time
}

// Engine maintains room membership and fans out join, leave and chat events.
// A single mutex serialises registry mutation with the emissions that depend
// on it, so every connection observes one consistent order of events.
type Engine struct {
	mu             sync.Mutex
	registry       *presence.Registry
	names          NameGenerator
	repo           domain.MessageRepository
	publisher      pubsub.Publisher
	transport      Transport
	metrics        *metrics.Collectors
	validate       *validator.Validate
	historyTimeout time.Duration
	clock          func() time.Time
	logger         *slog.Logger
}

// NewEngine creates a new Engine, injecting its dependencies.
func NewEngine(deps Dependencies) *Engine {
	e := &Engine{
		registry:       deps.Registry,
		names:          deps.Names,
		repo:           deps.Repository,
		publisher:      deps.Publisher,
		transport:      deps.Transport,
		metrics:        deps.Metrics,
		validate:       validator.New(),
		historyTimeout: deps.HistoryTimeout,
		clock:          deps.Clock,
		logger:         slog.Default().With("component", "chat-engine"),
	}
	if e.registry == nil {
		e.registry = presence.NewRegistry()
	}
	if e.names == nil {
		e.names = names.NewGenerator()
	}
	if e.metrics == nil {
		e.metrics = metrics.Discard()
	}
	if e.historyTimeout <= 0 {
		e.historyTimeout = defaultHistoryTimeout
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	return e
}

// FormatNow builds an envelope stamped with the engine clock.
func (e *Engine) FormatNow(username, text string) Envelope {
	return Format(username, text, e.clock())
}

// Join admits a connection to a room. Validation failures are reported to
// the requester only. The user is registered and welcomed before the room
// history is fetched, so membership never waits on storage; the history, the
// join notice and the roster follow once the fetch returns.
func (e *Engine) Join(ctx context.Context, connectionID, room string) {
	logger := e.logger.With("connection_id", connectionID, "room", room)

	if err := e.validate.Struct(JoinRequest{Room: room}); err != nil {
		verr := &domain.ValidationError{Field: "room", Message: errRoomRequired}
		logger.Debug("Rejected join request", "error", verr)
		e.transport.Emit(connectionID, EventError, ErrorPayload{Message: verr.Message})
		return
	}

	username := e.names.Generate()

	e.mu.Lock()
	if current, joined := e.registry.Get(connectionID); joined {
		e.mu.Unlock()
		logger.Debug("Ignored repeated join", "current_room", current.Room)
		return
	}
	if !e.transport.Subscribe(connectionID, room) {
		e.mu.Unlock()
		logger.Debug("Dropped join for closed connection")
		return
	}
	user := e.registry.Join(connectionID, username, room)
	e.transport.Emit(connectionID, EventMessage, e.FormatNow(BotName, WelcomeMessage))
	e.metrics.RoomJoinsTotal.Inc()
	e.metrics.RoomMembers.Set(float64(e.registry.Count()))
	e.mu.Unlock()

	history := e.loadHistory(ctx, room)

	e.mu.Lock()
	if _, still := e.registry.Get(connectionID); !still {
		e.mu.Unlock()
		logger.Debug("Connection left during history fetch")
		return
	}
	for _, env := range history {
		e.transport.Emit(connectionID, EventMessage, env)
	}
	e.transport.Broadcast(room, EventMessage,
		e.FormatNow(BotName, user.Username+" has joined the chat."), connectionID)

	members := e.registry.ListByRoom(room)
	e.transport.Broadcast(room, EventRoomUsers, RoomUsers{Room: room, Users: members})
	e.mu.Unlock()

	logger.Info("User joined room", "username", user.Username, "members", len(members))

	if err := pubsub.Publish(ctx, e.publisher, topics.RoomJoined, connectionID, events.RoomJoined{
		ConnectionID: connectionID,
		Username:     user.Username,
		Room:         room,
		Members:      len(members),
	}); err != nil {
		logger.Warn("Failed to publish room joined event", "error", err)
	}
}

// loadHistory fetches the room's recent messages and returns them as
// envelopes, oldest first. Failures yield an empty history.
func (e *Engine) loadHistory(ctx context.Context, room string) []Envelope {
	if e.repo == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.historyTimeout)
	defer cancel()

	stored, err := e.repo.RecentMessages(ctx, room)
	if err != nil {
		e.logger.Warn("Failed to load room history", "room", room, "error", err)
		e.metrics.PersistFailures.WithLabelValues(metrics.OpHistory).Inc()
		return nil
	}
	if len(stored) > domain.HistoryLimit {
		stored = stored[:domain.HistoryLimit]
	}

	envelopes := lo.Map(stored, func(m domain.StoredMessage, _ int) Envelope {
		return Format(m.Username, m.Text, m.Timestamp)
	})
	mutable.Reverse(envelopes)
	return envelopes
}

// Send broadcasts text from a joined connection to its whole room and hands
// the message to the persistence worker. Unknown connections and empty text
// are dropped silently.
func (e *Engine) Send(ctx context.Context, connectionID, text string) {
	if text == "" {
		return
	}

	e.mu.Lock()
	user, ok := e.registry.Get(connectionID)
	if !ok {
		e.mu.Unlock()
		e.logger.Debug("Dropped message", "connection_id", connectionID, "error", domain.ErrUnknownConnection)
		return
	}
	now := e.clock()
	e.transport.Broadcast(user.Room, EventMessage, Format(user.Username, text, now))
	e.metrics.MessagesTotal.Inc()
	e.mu.Unlock()

	if err := pubsub.Publish(ctx, e.publisher, topics.MessagePersist, connectionID, events.PersistCommand{
		RoomID:    user.Room,
		Username:  user.Username,
		Text:      text,
		Timestamp: now.UTC(),
	}); err != nil {
		e.logger.Error("Failed to queue message for persistence",
			"connection_id", connectionID, "room", user.Room, "error", err)
		e.metrics.PersistFailures.WithLabelValues(metrics.OpSave).Inc()
	}
}

// Disconnect removes a connection's user and notifies the rest of the room.
// It is a no-op for connections that never joined or already left.
func (e *Engine) Disconnect(ctx context.Context, connectionID string) {
	e.mu.Lock()
	user, ok := e.registry.Leave(connectionID)
	if !ok {
		e.mu.Unlock()
		return
	}
	e.transport.Broadcast(user.Room, EventMessage,
		e.FormatNow(BotName, user.Username+" has left the chat."))
	members := e.registry.ListByRoom(user.Room)
	e.transport.Broadcast(user.Room, EventRoomUsers, RoomUsers{Room: user.Room, Users: members})
	e.metrics.RoomMembers.Set(float64(e.registry.Count()))
	e.mu.Unlock()

	e.logger.Info("User left room", "connection_id", connectionID, "username", user.Username, "room", user.Room)

	if err := pubsub.Publish(ctx, e.publisher, topics.RoomLeft, connectionID, events.RoomLeft{
		ConnectionID: connectionID,
		Username:     user.Username,
		Room:         user.Room,
		Members:      len(members),
	}); err != nil {
		e.logger.Warn("Failed to publish room left event", "connection_id", connectionID, "error", err)
	}
}

// RoomSnapshot returns the live roster of room.
func (e *Engine) RoomSnapshot(room string) []domain.User {
	return e.registry.ListByRoom(room)
}

// Rooms returns a summary of every room with at least one member.
func (e *Engine) Rooms() []presence.RoomSummary {
	return e.registry.Rooms()
}

// Registry exposes the engine's user registry.
func (e *Engine) Registry() *presence.Registry {
	return e.registry
}
