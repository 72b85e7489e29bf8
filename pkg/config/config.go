package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/pulse/pkg/observability"
	"github.com/platinummonkey/pulse/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	// Worker configuration
	Worker WorkerConfig

	// Observability configuration
	Observability ObservabilityConfig

	// RateLimitConfigPath points at an optional YAML file tuning the
	// ingestion rate limiter; empty means defaults.
	RateLimitConfigPath string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// WorkerConfig holds event consumer configuration
type WorkerConfig struct {
	PollInterval time.Duration
	// QueueDriven enables aggregation from the consumer instead of the
	// ingestion path. Off by default; see pkg/consumer.
	QueueDriven bool
	// SnapshotSchedule is the cron expression for the periodic
	// queue/stats snapshot log line.
	SnapshotSchedule string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:              loadServerConfig(),
		Storage:             loadStorageConfig(),
		Worker:              loadWorkerConfig(),
		Observability:       loadObservabilityConfig(),
		RateLimitConfigPath: getEnv("PULSE_RATELIMIT_CONFIG", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("PULSE_HOST", "0.0.0.0"),
		Port:            getEnv("PULSE_PORT", "8080"),
		ReadTimeout:     getEnvDuration("PULSE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("PULSE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("PULSE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("PULSE_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("PULSE_HEALTH_PORT", "9090"),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if redisURL := getEnv("PULSE_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("PULSE_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("PULSE_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisMaxRetries := getEnvInt("PULSE_REDIS_MAX_RETRIES", 0); redisMaxRetries > 0 {
		cfg.RedisMaxRetries = redisMaxRetries
	}
	if redisPoolSize := getEnvInt("PULSE_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}

	if cacheEnabled := getEnv("PULSE_CACHE_ENABLED", ""); cacheEnabled != "" {
		cfg.CacheEnabled = strings.ToLower(cacheEnabled) == "true"
	}
	if cacheTTL := getEnvDuration("PULSE_CACHE_TTL", 0); cacheTTL > 0 {
		cfg.CacheTTL = cacheTTL
	}
	if l1Size := getEnvInt("PULSE_L1_CACHE_SIZE", -1); l1Size >= 0 {
		cfg.L1CacheSize = l1Size
	}
	if queueTTL := getEnvDuration("PULSE_QUEUE_TTL", 0); queueTTL > 0 {
		cfg.QueueTTL = queueTTL
	}

	return cfg
}

// loadWorkerConfig loads event consumer configuration from environment
func loadWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:     getEnvDuration("PULSE_WORKER_POLL_INTERVAL", 1*time.Second),
		QueueDriven:      getEnvBool("PULSE_WORKER_QUEUE_DRIVEN", false),
		SnapshotSchedule: getEnv("PULSE_WORKER_SNAPSHOT_SCHEDULE", "@every 1m"),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("PULSE_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("PULSE_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("PULSE_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("PULSE_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("PULSE_OTEL_SERVICE_NAME", "pulse"),
		OTelServiceVersion: getEnv("PULSE_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("PULSE_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Storage.RedisURL == "" {
		return fmt.Errorf("redis URL is required")
	}
	if c.Storage.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Storage.QueueTTL <= 0 {
		return fmt.Errorf("queue TTL must be positive")
	}
	if c.Worker.PollInterval <= 0 {
		return fmt.Errorf("worker poll interval must be positive")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
