// Package consumer implements the background worker that drains the
// event queue.
//
// # Loop Shape
//
// The worker is a two-state loop: poll the queue without blocking, and
// when a payload comes back, process it. An empty queue sleeps one poll
// interval (1s by default). The loop has no terminal state other than
// context cancellation.
//
//	worker := consumer.NewWorker(queue, logger, consumer.WithMetrics(metrics))
//	go worker.Run(ctx)
//
// # Failure Handling
//
// Malformed envelopes are logged, counted and dropped; there is no
// retry and no dead-letter path. Store outages are logged and the
// worker keeps polling.
//
// # Related Packages
//
//   - pkg/storage/redisstore: the queue implementation
//   - pkg/service: the ingestion path that feeds the queue
package consumer
