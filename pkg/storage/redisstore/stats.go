package redisstore

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/platinummonkey/pulse/pkg/storage"
)

// Aggregator owns the event-count and user-activity aggregates. Both
// mappings only ever increase; all mutation goes through store-side
// atomic increments.
type Aggregator struct {
	client *Client
}

// BulkEvent is one (event type, user) pair in a batched update.
type BulkEvent struct {
	EventType string
	UserID    int64
}

// NewAggregator creates an aggregator on the shared store client.
func NewAggregator(client *Client) *Aggregator {
	return &Aggregator{client: client}
}

// IncrementEventCount atomically increments one event-type counter.
func (a *Aggregator) IncrementEventCount(ctx context.Context, eventType string) error {
	if err := a.client.rdb.HIncrBy(ctx, keyEventCounts, eventType, 1).Err(); err != nil {
		return storage.Unavailable("increment event count", err)
	}
	return nil
}

// IncrementUserActivity atomically adds 1 to one user's activity score.
func (a *Aggregator) IncrementUserActivity(ctx context.Context, userID int64) error {
	member := strconv.FormatInt(userID, 10)
	if err := a.client.rdb.ZIncrBy(ctx, keyUserActivity, 1, member).Err(); err != nil {
		return storage.Unavailable("increment user activity", err)
	}
	return nil
}

// IncrementBulk applies one counter increment and one score increment
// per event as a single MULTI/EXEC batch: either every update in the
// batch becomes visible together or, on a store-level failure, none do.
func (a *Aggregator) IncrementBulk(ctx context.Context, events []BulkEvent) error {
	if len(events) == 0 {
		return nil
	}

	pipe := a.client.rdb.TxPipeline()
	for _, ev := range events {
		pipe.HIncrBy(ctx, keyEventCounts, ev.EventType, 1)
		pipe.ZIncrBy(ctx, keyUserActivity, 1, strconv.FormatInt(ev.UserID, 10))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return storage.Unavailable("increment bulk", err)
	}
	return nil
}

// EventCount returns the counter for an event type. A type that was
// never incremented returns ok=false, not zero.
func (a *Aggregator) EventCount(ctx context.Context, eventType string) (int64, bool, error) {
	val, err := a.client.rdb.HGet(ctx, keyEventCounts, eventType).Result()
	if err == redis.Nil {
		return 0, false, nil
	} else if err != nil {
		return 0, false, storage.Unavailable("get event count", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, storage.Unavailable("parse event count", err)
	}
	return count, true, nil
}

// UserActivity returns a user's activity score, ok=false when the user
// was never incremented.
func (a *Aggregator) UserActivity(ctx context.Context, userID int64) (float64, bool, error) {
	member := strconv.FormatInt(userID, 10)
	score, err := a.client.rdb.ZScore(ctx, keyUserActivity, member).Result()
	if err == redis.Nil {
		return 0, false, nil
	} else if err != nil {
		return 0, false, storage.Unavailable("get user activity", err)
	}
	return score, true, nil
}

// TrackUniqueUser adds the user to the distinct-users set.
func (a *Aggregator) TrackUniqueUser(ctx context.Context, userID int64) error {
	if err := a.client.rdb.SAdd(ctx, keyKnownUsers, userID).Err(); err != nil {
		return storage.Unavailable("track unique user", err)
	}
	return nil
}

// UniqueUsers returns the cardinality of the distinct-users set.
func (a *Aggregator) UniqueUsers(ctx context.Context) (int64, error) {
	n, err := a.client.rdb.SCard(ctx, keyKnownUsers).Result()
	if err != nil {
		return 0, storage.Unavailable("count unique users", err)
	}
	return n, nil
}
