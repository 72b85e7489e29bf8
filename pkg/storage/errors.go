package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a lookup legitimately has no data. It is not a
// backend failure and the HTTP boundary reports it as an explicit
// "absent" result rather than an error.
var ErrNotFound = errors.New("not found")

// ErrUnavailable indicates the backing store could not be reached or a
// command against it failed. It propagates unmodified to the caller; no
// retries or circuit breaking happen below the boundary.
var ErrUnavailable = errors.New("store unavailable")

// SerializationError wraps an envelope that could not be encoded on
// enqueue. Surfaced to the producer.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize envelope: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// MalformedEnvelopeError wraps a dequeued payload that could not be
// decoded. The consumer logs it and drops the payload; there is no
// retry and no dead-letter queue.
type MalformedEnvelopeError struct {
	Payload string
	Err     error
}

func (e *MalformedEnvelopeError) Error() string {
	return fmt.Sprintf("malformed envelope: %v", e.Err)
}

func (e *MalformedEnvelopeError) Unwrap() error { return e.Err }

// Unavailable wraps a store-level failure with ErrUnavailable so callers
// can classify it with errors.Is.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
