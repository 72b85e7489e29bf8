// Package redisstore implements the event queue, statistics aggregates,
// profile store and profile cache on a single Redis instance.
//
// # Key Layout
//
//	events:queue           list of serialized envelopes (retention TTL)
//	events:counts          hash of event type -> count
//	users:activity         sorted set of user id -> activity score
//	users:known            set of distinct user ids
//	users:profile:<id>     hash, the authoritative record
//	users:cache:<id>       string, serialized cached profile (TTL)
//
// # Atomicity
//
// All cross-cutting atomicity is delegated to store primitives: RPOP for
// at-most-once dequeue visibility, HINCRBY/ZINCRBY for counters, and a
// MULTI/EXEC pipeline for bulk statistics so a batched update is never
// partially visible to concurrent readers.
//
// # Related Packages
//
//   - pkg/storage: configuration and error taxonomy
//   - pkg/consumer: drains the event queue
//   - pkg/service: composes these layers behind one API
package redisstore
