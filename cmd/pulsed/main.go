package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/pulse/pkg/config"
	"github.com/platinummonkey/pulse/pkg/middleware"
	"github.com/platinummonkey/pulse/pkg/observability"
	"github.com/platinummonkey/pulse/pkg/service"
	"github.com/platinummonkey/pulse/pkg/storage/redisstore"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.InfoLevel, os.Stderr).WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("service", "pulsed")

	ctx := context.Background()
	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize OpenTelemetry")
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	client, err := redisstore.NewClient(cfg.Storage)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to store")
		os.Exit(1)
	}
	logger.WithField("redis_url", cfg.Storage.RedisURL).Info("Store connection established")

	svcOpts := []service.Option{service.WithCacheTTL(cfg.Storage.CacheTTL)}
	if metrics != nil {
		svcOpts = append(svcOpts, service.WithMetrics(metrics))
	}
	svc := service.New(client, cfg.Storage, logger, svcOpts...)

	rateLimitCfg, err := middleware.LoadRateLimitConfig(cfg.RateLimitConfigPath)
	if err != nil {
		logger.WithError(err).Error("Failed to load rate limit configuration")
		os.Exit(1)
	}
	limiter := middleware.NewRateLimiter(client.Redis(), rateLimitCfg, "ratelimit")

	router := mux.NewRouter()
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(middleware.RequestID)
	if metrics != nil {
		router.Use(observability.HTTPMetricsMiddleware(metrics))
	}
	router.Use(limiter.Handler)
	router.Use(middleware.MaxBytes(1 << 20))
	service.NewHandlers(svc).RegisterRoutes(router)

	var handler http.Handler = router
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(router, "pulsed")
	}

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics live on their own port so probes and scrapes
	// bypass the rate limiter.
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(client.Redis()))
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	var g errgroup.Group
	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("Health server listening")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	shutdown := observability.NewShutdownManager(logger, apiServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return client.Close()
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return observability.ShutdownOTel(shutdownCtx, otelProviders, logger)
	})

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
	}
	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}
