package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexUnavailable signals that the search index could not serve a request.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrInvalidProduct signals a product document that fails validation.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrQueueUnavailable signals that the sync queue could not be read.
	ErrQueueUnavailable = errors.New("queue unavailable")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// IndexError wraps ErrIndexUnavailable with the message returned by the index engine.
type IndexError struct {
	Status string
	Reason string
}

func (e *IndexError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("%s: %s", ErrIndexUnavailable.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: [%s] %s", ErrIndexUnavailable.Error(), e.Status, e.Reason)
}

func (e *IndexError) Unwrap() error { return ErrIndexUnavailable }

// NewIndexError creates an index error carrying the engine's status and reason.
func NewIndexError(status, reason string) error {
	return &IndexError{Status: status, Reason: reason}
}
