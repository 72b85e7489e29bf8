package storage

import "time"

// Config for the key-value store backend and the layers built on it.
type Config struct {
	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Profile cache config
	CacheEnabled bool
	CacheTTL     time.Duration
	L1CacheSize  int // Entries; 0 disables the in-process layer

	// Event queue retention. Reset on every push, not accumulated.
	QueueTTL time.Duration
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		RedisURL:        "redis://localhost:6379",
		RedisDB:         0,
		RedisMaxRetries: 3,
		RedisPoolSize:   10,
		CacheEnabled:    true,
		CacheTTL:        300 * time.Second,
		L1CacheSize:     1024,
		QueueTTL:        3000 * time.Second,
	}
}
