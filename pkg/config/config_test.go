package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/pulse/pkg/observability"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "redis://localhost:6379", cfg.Storage.RedisURL)
	assert.True(t, cfg.Storage.CacheEnabled)
	assert.Equal(t, 300*time.Second, cfg.Storage.CacheTTL)
	assert.Equal(t, 3000*time.Second, cfg.Storage.QueueTTL)

	assert.Equal(t, 1*time.Second, cfg.Worker.PollInterval)
	assert.False(t, cfg.Worker.QueueDriven)
	assert.Equal(t, "@every 1m", cfg.Worker.SnapshotSchedule)

	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PULSE_PORT", "9000")
	t.Setenv("PULSE_HEALTH_PORT", "9001")
	t.Setenv("PULSE_REDIS_URL", "redis://redis.internal:6380/2")
	t.Setenv("PULSE_REDIS_DB", "2")
	t.Setenv("PULSE_CACHE_TTL", "90s")
	t.Setenv("PULSE_QUEUE_TTL", "10m")
	t.Setenv("PULSE_L1_CACHE_SIZE", "0")
	t.Setenv("PULSE_WORKER_POLL_INTERVAL", "250ms")
	t.Setenv("PULSE_WORKER_QUEUE_DRIVEN", "true")
	t.Setenv("PULSE_LOG_LEVEL", "debug")
	t.Setenv("PULSE_RATELIMIT_CONFIG", "/etc/pulse/ratelimit.yaml")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "redis://redis.internal:6380/2", cfg.Storage.RedisURL)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.Equal(t, 90*time.Second, cfg.Storage.CacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.Storage.QueueTTL)
	assert.Equal(t, 0, cfg.Storage.L1CacheSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Worker.PollInterval)
	assert.True(t, cfg.Worker.QueueDriven)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, "/etc/pulse/ratelimit.yaml", cfg.RateLimitConfigPath)
}

func TestLoadConfig_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("PULSE_CACHE_TTL", "not-a-duration")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, cfg.Storage.CacheTTL)
}

func TestConfig_Validate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := LoadConfig()
		require.NoError(t, err)
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid(t).Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		cfg := valid(t)
		cfg.Server.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("port collision", func(t *testing.T) {
		cfg := valid(t)
		cfg.Server.HealthPort = cfg.Server.Port
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing redis URL", func(t *testing.T) {
		cfg := valid(t)
		cfg.Storage.RedisURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive poll interval", func(t *testing.T) {
		cfg := valid(t)
		cfg.Worker.PollInterval = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("otel enabled requires endpoint", func(t *testing.T) {
		cfg := valid(t)
		cfg.Observability.OTelEnabled = true
		cfg.Observability.OTelEndpoint = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, observability.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, observability.WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, observability.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, observability.InfoLevel, parseLogLevel("bogus"))
}
