// Package storage defines backend configuration and the error taxonomy
// shared by every store-facing component.
//
// # Error Taxonomy
//
// Four outcomes cover every store interaction:
//
//   - ErrNotFound: the lookup has no data; an expected, non-error result
//   - ErrUnavailable: the store could not be reached; propagates unmodified
//   - SerializationError: an envelope could not be encoded on enqueue
//   - MalformedEnvelopeError: a dequeued payload could not be decoded
//
// Classify with errors.Is / errors.As:
//
//	if errors.Is(err, storage.ErrNotFound) { ... }
//
// # Related Packages
//
//   - pkg/storage/redisstore: the Redis implementation
package storage
