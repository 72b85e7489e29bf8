package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/platinummonkey/pulse/pkg/api"
	"github.com/platinummonkey/pulse/pkg/observability"
	"github.com/platinummonkey/pulse/pkg/storage"
	"github.com/platinummonkey/pulse/pkg/storage/redisstore"
)

// Service composes the profile store, cache layer, event queue and
// statistics aggregator behind the one API the HTTP boundary consumes.
type Service struct {
	store    *redisstore.Client
	profiles *redisstore.ProfileStore
	cache    *redisstore.ProfileCache
	queue    *redisstore.EventQueue
	stats    *redisstore.Aggregator
	logger   *observability.Logger
	metrics  *observability.Metrics
	cacheTTL time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCacheTTL overrides the profile cache TTL used on repopulation.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// New creates the service facade over a connected store client.
func New(client *redisstore.Client, config storage.Config, logger *observability.Logger, opts ...Option) *Service {
	s := &Service{
		store:    client,
		profiles: redisstore.NewProfileStore(client),
		cache:    redisstore.NewProfileCache(client),
		queue:    redisstore.NewEventQueue(client),
		stats:    redisstore.NewAggregator(client),
		logger:   logger.WithField("component", "service"),
		cacheTTL: config.CacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// trackOp records one store operation outcome and its duration.
func (s *Service) trackOp(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if errors.Is(err, storage.ErrUnavailable) {
		status = "error"
		s.metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
	}
	s.metrics.StoreOperationsTotal.WithLabelValues(op, status).Inc()
	s.metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Queue exposes the event queue for the consumer process.
func (s *Service) Queue() *redisstore.EventQueue { return s.queue }

// Aggregator exposes the statistics aggregator.
func (s *Service) Aggregator() *redisstore.Aggregator { return s.stats }

// SaveProfile overwrites the authoritative record and then invalidates
// the cached copy. The ordering is the correctness property: the write
// completes before the invalidation, so a racing reader sees either the
// old cached value or the new authoritative one, never a partial write.
func (s *Service) SaveProfile(ctx context.Context, profile *api.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	start := time.Now()
	err := s.profiles.Save(ctx, profile)
	s.trackOp("save_profile", start, err)
	if err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, profile.UserID); err != nil {
		s.logger.WithError(err).WithField("user_id", profile.UserID).Error("Cache invalidation failed after write")
		return err
	}

	s.logger.WithField("user_id", profile.UserID).Debug("Profile saved")
	return nil
}

// GetProfile reads cache-aside: cache first, then the authoritative
// store, repopulating the cache on a miss. The response records which
// layer served the read.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*api.ProfileResponse, error) {
	cached, err := s.cache.Get(ctx, userID)
	if err == nil {
		if s.metrics != nil {
			s.metrics.CacheHitsTotal.Inc()
		}
		return &api.ProfileResponse{Source: api.SourceCache, Data: cached}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CacheMissesTotal.Inc()
	}

	start := time.Now()
	profile, err := s.profiles.Get(ctx, userID)
	s.trackOp("get_profile", start, err)
	if err != nil {
		return nil, err
	}

	// Repopulation is best effort; a failed cache write must not fail
	// the read.
	if err := s.cache.Put(ctx, profile, s.cacheTTL); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Cache repopulation failed")
	}

	return &api.ProfileResponse{Source: api.SourceAuthoritative, Data: profile}, nil
}

// GetCachedProfile reads only the cache layer.
func (s *Service) GetCachedProfile(ctx context.Context, userID int64) (*api.Profile, error) {
	return s.cache.Get(ctx, userID)
}

// SubmitEvent assigns the envelope an ID, enqueues it durably, tracks
// the user in the distinct-users set, and updates the statistics
// aggregates as one atomic batch. Aggregation happens here on the
// ingestion path, not in the consumer; the queue is drained for
// observability only.
func (s *Service) SubmitEvent(ctx context.Context, userID int64, eventType string, metadata map[string]interface{}) (*api.EventAck, error) {
	env := &api.Envelope{
		EventID:    uuid.NewString(),
		UserID:     userID,
		EventType:  eventType,
		Metadata:   metadata,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	err := s.queue.Enqueue(ctx, env)
	s.trackOp("enqueue", start, err)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.EventsEnqueuedTotal.WithLabelValues(eventType).Inc()
	}

	if err := s.stats.TrackUniqueUser(ctx, userID); err != nil {
		return nil, err
	}
	batch := []redisstore.BulkEvent{{EventType: eventType, UserID: userID}}
	if err := s.stats.IncrementBulk(ctx, batch); err != nil {
		return nil, err
	}

	return &api.EventAck{EventID: env.EventID, Status: "accepted"}, nil
}

// EventCount returns the counter for an event type, ErrNotFound when
// the type was never seen.
func (s *Service) EventCount(ctx context.Context, eventType string) (int64, error) {
	count, ok, err := s.stats.EventCount(ctx, eventType)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, storage.ErrNotFound
	}
	return count, nil
}

// UserActivity returns a user's activity score, ErrNotFound when the
// user has no recorded activity.
func (s *Service) UserActivity(ctx context.Context, userID int64) (float64, error) {
	score, ok, err := s.stats.UserActivity(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, storage.ErrNotFound
	}
	return score, nil
}

// StoreStats returns the store's server introspection snapshot.
func (s *Service) StoreStats(ctx context.Context) (*api.StoreStats, error) {
	return s.store.ServerStats(ctx)
}
