package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/nfrund/espresso/internal/topicmgr"
)

// Event[T] binds a registered topic to its payload type.
type Event[T any] struct {
	topic topicmgr.Topic
}

// NewEvent creates a typed event and registers it with the default topic
// manager. The JSON field names of T are recorded as topic metadata so the
// CLI can document payloads.
func NewEvent[T any](cfg topicmgr.TopicConfig) Event[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	fields := make([]string, 0)
	typeName := ""
	if t != nil {
		typeName = t.Name()
		if t.Kind() == reflect.Struct {
			for i := 0; i < t.NumField(); i++ {
				name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
				if name != "" && name != "-" {
					fields = append(fields, name)
				}
			}
		}
	}

	if cfg.Metadata == nil {
		cfg.Metadata = make(map[string]any)
	}
	cfg.Metadata["payload_fields"] = fields
	cfg.Metadata["type_name"] = typeName

	topic := topicmgr.DefineModule(cfg)
	topicmgr.Default().MustRegister(topic)
	return Event[T]{topic: topic}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topic.Name()
}

// Topic returns the registered topic definition.
func (e Event[T]) Topic() topicmgr.Topic {
	return e.topic
}

// Publish sends a typed event. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], connectionID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Name(), err)
	}

	return p.Publish(ctx, Message{
		Topic:        event.Name(),
		ConnectionID: connectionID,
		Payload:      data,
	})
}

// Decode unmarshals the payload of a message received for event.
func Decode[T any](event Event[T], msg Message) (T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", event.Name(), err)
	}
	return payload, nil
}
