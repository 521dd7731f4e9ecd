package topicmgr

import "regexp"

// topicNamePattern accepts lower-case dot separated segments, e.g. "chat.room.joined".
var topicNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)

// Validate checks a topic definition before registration.
func Validate(t Topic) error {
	if t.Name() == "" {
		return &TopicError{Type: ErrorTypeMissing, Message: "name is required"}
	}
	if !topicNamePattern.MatchString(t.Name()) {
		return &TopicError{Type: ErrorTypeInvalidName, Topic: t.Name(), Message: "name must be lower-case dot separated segments"}
	}
	if t.Description() == "" {
		return &TopicError{Type: ErrorTypeMissing, Topic: t.Name(), Message: "description is required"}
	}
	if t.Scope() == ScopeModule && t.Module() == "" {
		return &TopicError{Type: ErrorTypeMissing, Topic: t.Name(), Message: "module topics must name their module"}
	}
	return nil
}
