// Package api defines the wire-level types shared by the HTTP boundary,
// the service facade, and the storage layer.
//
// # Overview
//
// The central types are Envelope (one queued activity event) and Profile
// (the authoritative per-user record). Both carry their own validation so
// every entry point enforces the same constraints.
//
// # Envelopes
//
// Envelopes are immutable once enqueued and must round-trip losslessly
// through JSON:
//
//	env := &api.Envelope{UserID: 42, EventType: "click"}
//	if err := env.Validate(); err != nil { ... }
//
// Metadata is an open mapping of string keys to JSON-decodable values
// (strings, numbers, booleans, null, nested objects and arrays).
//
// # Related Packages
//
//   - pkg/storage/redisstore: persists these types
//   - pkg/service: composes the read/write paths
package api
