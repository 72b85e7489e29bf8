package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/pulse/pkg/api"
	"github.com/platinummonkey/pulse/pkg/observability"
	"github.com/platinummonkey/pulse/pkg/storage"
	"github.com/platinummonkey/pulse/pkg/storage/redisstore"
)

// DefaultPollInterval is how long the worker sleeps after finding the
// queue empty.
const DefaultPollInterval = 1 * time.Second

// Queue is the slice of the event queue the worker consumes.
type Queue interface {
	Dequeue(ctx context.Context) ([]byte, error)
}

// Worker is the long-running consumer that drains the event queue. It
// alternates between polling and processing until its context is
// cancelled.
//
// By default draining only emits the event for observability; it does
// not touch the statistics aggregates, which are updated on the
// ingestion path. Enable queue-driven aggregation with WithAggregator
// once the ingestion path stops double-writing.
type Worker struct {
	queue        Queue
	logger       *observability.Logger
	metrics      *observability.Metrics
	pollInterval time.Duration
	aggregator   *redisstore.Aggregator
}

// Option configures a Worker.
type Option func(*Worker)

// WithPollInterval overrides the empty-queue backoff interval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithMetrics attaches Prometheus counters for processed and malformed
// envelopes.
func WithMetrics(m *observability.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithAggregator switches the worker to queue-driven aggregation: each
// drained envelope updates the statistics aggregates.
func WithAggregator(agg *redisstore.Aggregator) Option {
	return func(w *Worker) { w.aggregator = agg }
}

// NewWorker creates a worker over the given queue.
func NewWorker(queue Queue, logger *observability.Logger, opts ...Option) *Worker {
	w := &Worker{
		queue:        queue,
		logger:       logger.WithField("component", "consumer"),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the queue until ctx is cancelled. It returns ctx.Err() on
// cancellation; it never returns for any other reason.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.WithField("poll_interval", w.pollInterval.String()).Info("Event consumer started")

	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info("Event consumer stopped")
			return err
		}

		payload, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			// Store failures are not recovered locally; log and keep
			// polling so a transient outage does not kill the worker.
			w.logger.WithError(err).Error("Dequeue failed")
			w.sleep(ctx)
			continue
		}

		if payload == nil {
			w.sleep(ctx)
			continue
		}

		w.process(ctx, payload)
	}
}

// process handles one dequeued payload. Malformed envelopes are logged,
// counted and dropped; there is no retry and no dead-letter queue.
func (w *Worker) process(ctx context.Context, payload []byte) {
	env, err := redisstore.DecodeEnvelope(payload)
	if err != nil {
		var malformed *storage.MalformedEnvelopeError
		if errors.As(err, &malformed) {
			w.logger.WithError(err).WithField("payload", malformed.Payload).Warn("Dropping malformed envelope")
		} else {
			w.logger.WithError(err).Warn("Dropping undecodable envelope")
		}
		if w.metrics != nil {
			w.metrics.EventsMalformedTotal.Inc()
		}
		return
	}

	w.emit(env)

	if w.aggregator != nil {
		batch := []redisstore.BulkEvent{{EventType: env.EventType, UserID: env.UserID}}
		if err := w.aggregator.IncrementBulk(ctx, batch); err != nil {
			w.logger.WithError(err).WithField("event_id", env.EventID).Error("Aggregation failed")
			return
		}
	}

	if w.metrics != nil {
		w.metrics.EventsProcessedTotal.WithLabelValues(env.EventType).Inc()
	}
}

// emit is the configured processing side effect: structured emission of
// the event for observability.
func (w *Worker) emit(env *api.Envelope) {
	w.logger.WithFields(map[string]interface{}{
		"event_id":   env.EventID,
		"user_id":    env.UserID,
		"event_type": env.EventType,
		"metadata":   env.Metadata,
	}).Info("Event drained")
}

// sleep waits one poll interval, returning false if ctx was cancelled
// while waiting.
func (w *Worker) sleep(ctx context.Context) bool {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
