package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/nfrund/espresso/internal/domain"
	"github.com/nfrund/espresso/internal/metrics"
	"github.com/nfrund/espresso/internal/modules/chat/topics"
	"github.com/nfrund/espresso/internal/pubsub"
)

const defaultSaveTimeout = 5 * time.Second

// Persister listens for persistence commands on the pub/sub bus and appends
// them to the message repository. Failures are logged and never retried.
type Persister struct {
	subscriber  pubsub.Subscriber
	repo        domain.MessageRepository
	metrics     *metrics.Collectors
	saveTimeout time.Duration
	logger      *slog.Logger
}

// NewPersister creates a new persistence worker.
func NewPersister(sub pubsub.Subscriber, repo domain.MessageRepository, m *metrics.Collectors, saveTimeout time.Duration) *Persister {
	if m == nil {
		m = metrics.Discard()
	}
	if saveTimeout <= 0 {
		saveTimeout = defaultSaveTimeout
	}
	return &Persister{
		subscriber:  sub,
		repo:        repo,
		metrics:     m,
		saveTimeout: saveTimeout,
		logger:      slog.Default().With("component", "chat-persister"),
	}
}

// Start subscribes to the persistence topic. Messages are processed in the
// background until ctx is canceled or the subscriber is closed.
func (p *Persister) Start(ctx context.Context) error {
	p.logger.Info("Starting chat persistence worker", "topic", topics.MessagePersist.Name())
	return p.subscriber.Subscribe(ctx, topics.MessagePersist.Name(), p.handle)
}

// handle always returns nil: the in-memory bus redelivers nacked messages
// forever, and a message that failed to save stays delivered to the room.
func (p *Persister) handle(ctx context.Context, msg pubsub.Message) error {
	cmd, err := pubsub.Decode(topics.MessagePersist, msg)
	if err != nil {
		p.logger.Error("Discarding malformed persistence command", "error", err, "payload", string(msg.Payload))
		return nil
	}

	saveCtx, cancel := context.WithTimeout(ctx, p.saveTimeout)
	defer cancel()

	err = p.repo.SaveMessage(saveCtx, domain.NewMessage{
		RoomID:    cmd.RoomID,
		Username:  cmd.Username,
		Text:      cmd.Text,
		Timestamp: cmd.Timestamp,
	})
	if err != nil {
		p.logger.Error("Failed to save chat message",
			"room", cmd.RoomID, "username", cmd.Username, "connection_id", msg.ConnectionID, "error", err)
		p.metrics.PersistFailures.WithLabelValues(metrics.OpSave).Inc()
		return nil
	}

	p.logger.Debug("Saved chat message", "room", cmd.RoomID)
	return nil
}
