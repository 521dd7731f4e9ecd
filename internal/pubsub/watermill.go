package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// WatermillBridge implements the Publisher and Subscriber interfaces using watermill's GoChannel.
type WatermillBridge struct {
	pub    message.Publisher
	sub    message.Subscriber
	tracer trace.Tracer
	logger watermill.LoggerAdapter
}

const (
	// Metadata keys used to transfer our Message structure fields through watermill's message.
	metaKeyConnectionID = "connection_id"
	metaKeyTopic        = "topic"
)

// Option configures a WatermillBridge.
type Option func(*bridgeOptions)

type bridgeOptions struct {
	tracer      trace.Tracer
	buffer      int64
	blockOnSend bool
}

// WithTracer traces publish and handle operations with tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *bridgeOptions) { o.tracer = tracer }
}

// WithOutputBuffer sets the per-subscriber channel buffer.
func WithOutputBuffer(n int64) Option {
	return func(o *bridgeOptions) { o.buffer = n }
}

// WithBlockingPublish makes Publish wait until every subscriber acked the
// message. Tests use it to observe handler side effects synchronously.
func WithBlockingPublish() Option {
	return func(o *bridgeOptions) { o.blockOnSend = true }
}

// NewWatermillBridge initializes an in-memory Pub/Sub system.
func NewWatermillBridge(opts ...Option) *WatermillBridge {
	o := bridgeOptions{
		tracer: noop.NewTracerProvider().Tracer("espresso-pubsub"),
		buffer: 256,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := watermill.NewSlogLogger(slog.Default().With("component", "pubsub"))
	// GoChannel is a simple in-memory pub/sub implementation.
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            o.buffer,
			BlockPublishUntilSubscriberAck: o.blockOnSend,
		},
		logger,
	)

	return &WatermillBridge{
		pub:    newTracingPublisher(goChannel, o.tracer),
		sub:    goChannel,
		tracer: o.tracer,
		logger: logger,
	}
}

// mapToWatermillMessage converts our pubsub.Message to a watermill message.
func mapToWatermillMessage(msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)

	// Transfer our custom fields to watermill's metadata
	wmMsg.Metadata.Set(metaKeyConnectionID, msg.ConnectionID)
	wmMsg.Metadata.Set(metaKeyTopic, msg.Topic)

	// Merge any additional metadata
	for k, v := range msg.Metadata {
		wmMsg.Metadata.Set(k, v)
	}

	return wmMsg
}

// mapToPubSubMessage converts a watermill message back to our internal pubsub.Message.
func mapToPubSubMessage(wmMsg *message.Message) Message {
	connectionID := wmMsg.Metadata.Get(metaKeyConnectionID)
	topic := wmMsg.Metadata.Get(metaKeyTopic)

	// Reserved keys travel in dedicated fields.
	metadata := make(map[string]string)
	for k, v := range wmMsg.Metadata {
		if k != metaKeyConnectionID && k != metaKeyTopic {
			metadata[k] = v
		}
	}

	return Message{
		Topic:        topic,
		ConnectionID: connectionID,
		Payload:      wmMsg.Payload,
		Metadata:     metadata,
	}
}

// Publish implements the Publisher interface.
func (wb *WatermillBridge) Publish(ctx context.Context, msg Message) error {
	wmMsg := mapToWatermillMessage(msg)
	wmMsg.SetContext(ctx)
	// We use the message's internal topic (msg.Topic) as the watermill topic.
	return wb.pub.Publish(msg.Topic, wmMsg)
}

// Subscribe implements the Subscriber interface.
func (wb *WatermillBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	// The Subscribe method returns a channel of messages.
	messages, err := wb.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	// Run the message processing in a separate goroutine so that Subscribe is non-blocking.
	go func() {
		for wmMsg := range messages {
			msg := mapToPubSubMessage(wmMsg)

			spanCtx, span := startProcessSpan(ctx, wb.tracer, topic, wmMsg)

			if err := handler(spanCtx, msg); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				slog.Error("Failed to handle message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
				// For the in-memory bus a nack only triggers redelivery, so handlers
				// are expected to log and swallow errors they cannot recover from.
				wmMsg.Nack()
			} else {
				wmMsg.Ack()
			}
			span.End()
		}
		slog.Debug("Subscription message loop ended", "topic", topic)
	}()

	return nil
}

// Close implements the Publisher and Subscriber interface to shut down the bridge.
func (wb *WatermillBridge) Close() error {
	// Closing the subscriber will close the gochannel and stop message consumption.
	return wb.sub.Close()
}
