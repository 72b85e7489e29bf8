// Package observability provides structured logging, Prometheus metrics,
// health checks, graceful shutdown, and OpenTelemetry tracing.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("user_id", 42).Info("Profile saved")
//
// # Prometheus Metrics
//
// Initialize and instrument:
//
//	metrics := observability.NewMetrics(nil)
//	metrics.EventsEnqueuedTotal.WithLabelValues("click").Inc()
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//
// # Health Checks
//
// Configure health checker against the store:
//
//	checker := observability.NewHealthChecker(client.Redis())
//	observability.RegisterHealthRoutes(mux, checker)
//
// # Graceful Shutdown
//
// Register cleanup and block until a signal arrives:
//
//	sm := observability.NewShutdownManager(logger, server, 30*time.Second)
//	sm.RegisterShutdownFunc(func(ctx context.Context) error { return client.Close() })
//	sm.WaitForShutdown()
package observability
