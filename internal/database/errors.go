package database

import (
	"errors"
	"fmt"

	"github.com/nfrund/espresso/internal/domain"
)

var (
	// ErrUnknownDriver is returned by Open for an unsupported STORE_DRIVER.
	ErrUnknownDriver = errors.New("unknown store driver")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")
)

// StoreError represents a failed message store operation with additional
// context. It matches domain.ErrStorage with errors.Is.
type StoreError struct {
	// Op is the repository operation, e.g. "save message".
	Op string
	// Driver names the backend that failed.
	Driver string
	// Err is the error returned by the underlying driver.
	Err error

	query string
}

// NewStoreError creates a new StoreError for driver and op.
func NewStoreError(driver, op string, err error) *StoreError {
	return &StoreError{Op: op, Driver: driver, Err: err}
}

// WithQuery adds query information to the error.
func (e *StoreError) WithQuery(query string) *StoreError {
	e.query = query
	return e
}

// Error returns the error message.
func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Driver, e.Op)
	if e.query != "" {
		msg = fmt.Sprintf("%s (query: %s)", msg, e.query)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether target is domain.ErrStorage.
func (e *StoreError) Is(target error) bool {
	return target == domain.ErrStorage
}
