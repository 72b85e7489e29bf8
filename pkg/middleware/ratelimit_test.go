package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiterTest(t *testing.T, config *RateLimitConfig) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRateLimiter(client, config, "test:ratelimit"), mr
}

func TestRateLimiter_AllowUnderLimit(t *testing.T) {
	limiter, _ := setupLimiterTest(t, &RateLimitConfig{RequestsPerWindow: 3, WindowDuration: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, allowed, "request over the window limit should be denied")
}

func TestRateLimiter_PerKeyIsolation(t *testing.T) {
	limiter, _ := setupLimiterTest(t, &RateLimitConfig{RequestsPerWindow: 1, WindowDuration: time.Minute})
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, allowed, "a different client has its own window")
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	limiter, mr := setupLimiterTest(t, &RateLimitConfig{RequestsPerWindow: 1, WindowDuration: 10 * time.Second})
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)

	allowed, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(11 * time.Second)

	allowed, err = limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, allowed, "a fresh window starts after expiry")
}

func TestRateLimiter_Remaining(t *testing.T) {
	limiter, _ := setupLimiterTest(t, &RateLimitConfig{RequestsPerWindow: 5, WindowDuration: time.Minute})
	ctx := context.Background()

	remaining, err := limiter.Remaining(ctx, "client-a")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	_, err = limiter.Allow(ctx, "client-a")
	require.NoError(t, err)

	remaining, err = limiter.Remaining(ctx, "client-a")
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
}

func TestRateLimiter_Handler(t *testing.T) {
	limiter, _ := setupLimiterTest(t, &RateLimitConfig{RequestsPerWindow: 1, WindowDuration: time.Minute})

	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/v1/events", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestRateLimiter_FailsOpenOnStoreError(t *testing.T) {
	limiter, mr := setupLimiterTest(t, DefaultRateLimitConfig())
	mr.Close()

	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/v1/events", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, "limiter must fail open when the store is down")
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := LoadRateLimitConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultRateLimitConfig(), cfg)
	})

	t.Run("file overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ratelimit.yaml")
		require.NoError(t, os.WriteFile(path, []byte("requests_per_window: 42\nwindow: 30s\n"), 0o644))

		cfg, err := LoadRateLimitConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 42, cfg.RequestsPerWindow)
		assert.Equal(t, 30*time.Second, cfg.WindowDuration)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadRateLimitConfig("/nonexistent/ratelimit.yaml")
		assert.Error(t, err)
	})
}
