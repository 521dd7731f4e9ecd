package topicmgr

import (
	"fmt"
	"time"
)

// TopicScope defines whether a topic belongs to framework or module level
type TopicScope string

const (
	ScopeFramework TopicScope = "framework" // Core topics (transport, bus)
	ScopeModule    TopicScope = "module"    // Module-specific topics (chat)
)

// TopicConfig holds configuration for creating a new topic
type TopicConfig struct {
	Name        string         `json:"name"`
	Module      string         `json:"module"`
	Scope       TopicScope     `json:"scope"`
	Description string         `json:"description"`
	Example     string         `json:"example"`
	Metadata    map[string]any `json:"metadata"`
}

// Topic is an immutable, registered bus topic.
type Topic struct {
	config TopicConfig
}

func (t Topic) Name() string             { return t.config.Name }
func (t Topic) Module() string           { return t.config.Module }
func (t Topic) Scope() TopicScope        { return t.config.Scope }
func (t Topic) Description() string      { return t.config.Description }
func (t Topic) Example() string          { return t.config.Example }
func (t Topic) Metadata() map[string]any { return t.config.Metadata }

// String returns the topic name so a Topic can be passed where a string is logged.
func (t Topic) String() string { return t.config.Name }

// DefineFramework creates a framework-scoped topic.
func DefineFramework(config TopicConfig) Topic {
	config.Scope = ScopeFramework
	config.Module = ""
	return Topic{config: config}
}

// DefineModule creates a module-scoped topic.
func DefineModule(config TopicConfig) Topic {
	config.Scope = ScopeModule
	return Topic{config: config}
}

// RegistryEntry represents a topic entry in the registry with metadata
type RegistryEntry struct {
	Topic        Topic     `json:"topic"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ErrorType categorises TopicError values.
type ErrorType string

const (
	ErrorTypeInvalidName ErrorType = "invalid_name"
	ErrorTypeDuplicate   ErrorType = "duplicate"
	ErrorTypeMissing     ErrorType = "missing_field"
)

// TopicError represents structured errors in the topic management system
type TopicError struct {
	Type    ErrorType `json:"type"`
	Topic   string    `json:"topic"`
	Message string    `json:"message"`
}

func (e *TopicError) Error() string {
	return fmt.Sprintf("topic %q: %s (%s)", e.Topic, e.Message, e.Type)
}
