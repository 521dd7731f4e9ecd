package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// traceContext carries span context between publisher and subscriber inside
// watermill metadata.
var traceContext = propagation.TraceContext{}

// tracingPublisher opens a span per published message and injects its
// context into the message metadata.
type tracingPublisher struct {
	next   message.Publisher
	tracer trace.Tracer
}

func newTracingPublisher(next message.Publisher, tracer trace.Tracer) *tracingPublisher {
	return &tracingPublisher{next: next, tracer: tracer}
}

func (p *tracingPublisher) Publish(topic string, messages ...*message.Message) error {
	spans := make([]trace.Span, 0, len(messages))
	for _, msg := range messages {
		ctx, span := p.tracer.Start(msg.Context(), "pubsub.publish "+topic,
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(messageAttributes("publish", topic, msg)...),
		)
		traceContext.Inject(ctx, propagation.MapCarrier(msg.Metadata))
		msg.SetContext(ctx)
		spans = append(spans, span)
	}

	err := p.next.Publish(topic, messages...)
	for _, span := range spans {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
	return err
}

func (p *tracingPublisher) Close() error {
	return p.next.Close()
}

// startProcessSpan starts the consumer span for msg, parented to the
// publisher's span when the metadata carries one.
func startProcessSpan(ctx context.Context, tracer trace.Tracer, topic string, msg *message.Message) (context.Context, trace.Span) {
	ctx = traceContext.Extract(ctx, propagation.MapCarrier(msg.Metadata))
	return tracer.Start(ctx, "pubsub.process "+topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(messageAttributes("process", topic, msg)...),
	)
}

func messageAttributes(op, topic string, msg *message.Message) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("messaging.system", "watermill"),
		attribute.String("messaging.operation", op),
		attribute.String("messaging.destination", topic),
		attribute.String("messaging.message_id", msg.UUID),
		attribute.Int("messaging.message_payload_size_bytes", len(msg.Payload)),
	}
	if id := msg.Metadata.Get(metaKeyConnectionID); id != "" {
		attrs = append(attrs, attribute.String("chat.connection_id", id))
	}
	return attrs
}
