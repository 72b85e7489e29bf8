package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/platinummonkey/pulse/pkg/api"
	"github.com/platinummonkey/pulse/pkg/storage"
)

// ProfileCache is the time-bounded derived copy of profile records.
// Entries are unconditional overwrites, expire after the configured TTL,
// and are deleted eagerly on every profile write.
//
// An optional in-process LRU sits in front of the store. It is only
// coherent within a single API instance; multi-instance deployments
// should disable it (L1CacheSize = 0) and rely on the store alone.
type ProfileCache struct {
	client     *Client
	defaultTTL time.Duration
	l1         *lru.LRU[int64, *api.Profile]
}

// NewProfileCache creates a profile cache on the shared store client.
func NewProfileCache(client *Client) *ProfileCache {
	c := &ProfileCache{
		client:     client,
		defaultTTL: client.config.CacheTTL,
	}
	if client.config.L1CacheSize > 0 {
		c.l1 = lru.NewLRU[int64, *api.Profile](client.config.L1CacheSize, nil, client.config.CacheTTL)
	}
	return c
}

// Put caches a profile with the given TTL, overwriting any existing
// entry. A zero ttl uses the configured default.
func (c *ProfileCache) Put(ctx context.Context, profile *api.Profile, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return &storage.SerializationError{Err: err}
	}
	if err := c.client.rdb.Set(ctx, cacheKey(profile.UserID), data, ttl).Err(); err != nil {
		return storage.Unavailable("cache profile", err)
	}
	if c.l1 != nil {
		c.l1.Add(profile.UserID, profile)
	}
	return nil
}

// Get returns the cached profile, or ErrNotFound on a miss. Corrupt
// entries are deleted and treated as a miss.
func (c *ProfileCache) Get(ctx context.Context, userID int64) (*api.Profile, error) {
	if c.l1 != nil {
		if profile, ok := c.l1.Get(userID); ok {
			return profile, nil
		}
	}

	data, err := c.client.rdb.Get(ctx, cacheKey(userID)).Result()
	if err == redis.Nil {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, storage.Unavailable("get cached profile", err)
	}

	var profile api.Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		c.client.rdb.Del(ctx, cacheKey(userID))
		return nil, storage.ErrNotFound
	}

	if c.l1 != nil {
		c.l1.Add(userID, &profile)
	}
	return &profile, nil
}

// Invalidate deletes the cache entry for a user. Deleting an absent
// entry is a no-op, not an error.
func (c *ProfileCache) Invalidate(ctx context.Context, userID int64) error {
	if c.l1 != nil {
		c.l1.Remove(userID)
	}
	if err := c.client.rdb.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return storage.Unavailable("invalidate cache", err)
	}
	return nil
}
