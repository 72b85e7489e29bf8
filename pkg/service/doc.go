// Package service composes the profile store, cache layer, event queue
// and statistics aggregator behind one facade, and exposes the HTTP
// boundary over it.
//
// # Write Path
//
// SaveProfile writes the authoritative record first, then invalidates
// the cached copy (write-then-invalidate, never the reverse).
// SubmitEvent enqueues the envelope durably and updates the statistics
// aggregates in one atomic batch on the ingestion path.
//
// # Read Path
//
// GetProfile is cache-aside: cache first, authoritative store on a
// miss, then best-effort repopulation. Responses carry the serving
// layer so callers can observe hit rates end to end.
//
// # Related Packages
//
//   - pkg/storage/redisstore: the layers being composed
//   - pkg/consumer: drains the queue this facade feeds
package service
