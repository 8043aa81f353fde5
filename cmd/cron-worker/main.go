package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rhoodstudio/studio-backend/internal/boosts"
	"github.com/rhoodstudio/studio-backend/internal/credits"
	"github.com/rhoodstudio/studio-backend/internal/cron"
	"github.com/rhoodstudio/studio-backend/pkg/config"
	"github.com/rhoodstudio/studio-backend/pkg/db"
	"github.com/rhoodstudio/studio-backend/pkg/instance"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"github.com/rhoodstudio/studio-backend/pkg/metrics"
	"github.com/rhoodstudio/studio-backend/pkg/migrate"
	"github.com/rhoodstudio/studio-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.FromConfig("cron-worker", cfg.App, instance.ID())

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	lock, err := cron.NewRedisLock(redisClient, cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	boostsService, err := boosts.NewService(boosts.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create boosts service", err)
		os.Exit(1)
	}
	boostExpiry, err := cron.NewBoostExpiryJob(cron.BoostExpiryJobParams{Logger: logg, Boosts: boostsService})
	if err != nil {
		logg.Error(context.Background(), "failed to create boost expiry job", err)
		os.Exit(1)
	}
	reconcile, err := cron.NewBalanceReconcileJob(cron.BalanceReconcileJobParams{
		Logger: logg,
		Ledger: credits.NewLedgerRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create balance reconcile job", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry(boostExpiry, reconcile)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "serviceKind", cfg.Service.Kind)
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
