package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for the failure classes of the chat engine.
var (
	ErrValidation        = errors.New("validation failed")
	ErrStorage           = errors.New("message storage unavailable")
	ErrUnknownConnection = errors.New("connection has no registered user")
)

// ValidationError describes a malformed inbound request. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
