package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/pulse/pkg/config"
	"github.com/platinummonkey/pulse/pkg/consumer"
	"github.com/platinummonkey/pulse/pkg/observability"
	"github.com/platinummonkey/pulse/pkg/storage/redisstore"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.InfoLevel, os.Stderr).WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("service", "pulse-worker")

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	client, err := redisstore.NewClient(cfg.Storage)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to store")
		os.Exit(1)
	}
	defer client.Close()
	logger.WithField("redis_url", cfg.Storage.RedisURL).Info("Store connection established")

	queue := redisstore.NewEventQueue(client)
	stats := redisstore.NewAggregator(client)

	opts := []consumer.Option{
		consumer.WithPollInterval(cfg.Worker.PollInterval),
	}
	if metrics != nil {
		opts = append(opts, consumer.WithMetrics(metrics))
	}
	if cfg.Worker.QueueDriven {
		logger.Info("Queue-driven aggregation enabled")
		opts = append(opts, consumer.WithAggregator(stats))
	}
	worker := consumer.NewWorker(queue, logger, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodic snapshot of queue depth and store health for dashboards.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Worker.SnapshotSchedule, func() {
		snapshot(ctx, logger, metrics, client, queue, stats)
	})
	if err != nil {
		logger.WithError(err).Error("Failed to schedule snapshot job")
		os.Exit(1)
	}
	scheduler.Start()

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(client.Redis()))
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := worker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("Health server listening")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Worker exited with error")
		os.Exit(1)
	}

	cronCtx := scheduler.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(cfg.Server.ShutdownTimeout):
		logger.Warn("Snapshot job did not finish before shutdown timeout")
	}

	logger.Info("Worker stopped")
}

// snapshot records the queue depth gauge and logs one line of store and
// aggregate state.
func snapshot(ctx context.Context, logger *observability.Logger, metrics *observability.Metrics, client *redisstore.Client, queue *redisstore.EventQueue, stats *redisstore.Aggregator) {
	snapCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	depth, err := queue.Len(snapCtx)
	if err != nil {
		logger.WithError(err).Warn("Snapshot: queue depth unavailable")
		return
	}
	if metrics != nil {
		metrics.QueueDepth.Set(float64(depth))
		metrics.StoreConnectionsActive.Set(float64(client.PoolStats().TotalConns))
	}

	fields := map[string]interface{}{"queue_depth": depth}

	if unique, err := stats.UniqueUsers(snapCtx); err == nil {
		fields["unique_users"] = unique
	}
	if serverStats, err := client.ServerStats(snapCtx); err == nil {
		fields["connected_clients"] = serverStats.ConnectedClients
		fields["used_memory"] = serverStats.UsedMemoryHuman
		fields["ops_per_sec"] = serverStats.InstantaneousOpsPerSec
	}

	logger.WithFields(fields).Info("Queue snapshot")
}
