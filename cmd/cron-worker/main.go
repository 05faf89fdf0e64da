package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chokistore/backend/internal/cron"
	"github.com/chokistore/backend/internal/notifications"
	"github.com/chokistore/backend/pkg/config"
	"github.com/chokistore/backend/pkg/db"
	"github.com/chokistore/backend/pkg/instance"
	"github.com/chokistore/backend/pkg/logger"
	"github.com/chokistore/backend/pkg/metrics"
	"github.com/chokistore/backend/pkg/migrate"
	"github.com/chokistore/backend/pkg/outbox"
	"github.com/chokistore/backend/pkg/redis"
)

const serviceKind = "cron-worker"

func main() {
	bootLog := logger.New(logger.Options{ServiceName: serviceKind})
	if err := godotenv.Load(); err != nil {
		bootLog.Warn(context.Background(), ".env file not found, relying on environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		bootLog.Error(ctx, "cron worker exited", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Service.Kind = serviceKind

	logg := logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceKind,
		"instance":    instance.GetID(),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	// Lock is scoped per environment.
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(serviceKind, lockScope(cfg.App.Env)), cfg.Cron.Interval)
	if err != nil {
		return fmt.Errorf("cron lock: %w", err)
	}
	jobs, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return fmt.Errorf("create cron service: %w", err)
	}

	go func() {
		if err := metrics.Serve(ctx, cfg.App.Port, prometheus.DefaultGatherer); err != nil {
			logg.Error(ctx, "metrics listener stopped", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
	return nil
}

func lockScope(env string) string {
	if env == "" {
		return "local"
	}
	return env
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	cleanup, err := cron.NewNotificationCleanupJob(logg, notifications.NewRepository(dbClient.DB()), cfg.Cron.NotificationRetention)
	if err != nil {
		return nil, err
	}
	retention, err := cron.NewOutboxRetentionJob(
		logg,
		outbox.NewRepository(dbClient.DB()),
		outbox.NewDLQRepository(dbClient.DB()),
		cfg.Cron.OutboxRetentionDays,
	)
	if err != nil {
		return nil, err
	}
	return cron.NewRegistry(cleanup, retention)
}
