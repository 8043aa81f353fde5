package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rhoodstudio/studio-backend/api/routes"
	"github.com/rhoodstudio/studio-backend/internal/boosts"
	"github.com/rhoodstudio/studio-backend/internal/credits"
	"github.com/rhoodstudio/studio-backend/internal/leaderboard"
	"github.com/rhoodstudio/studio-backend/internal/opportunities"
	"github.com/rhoodstudio/studio-backend/internal/users"
	"github.com/rhoodstudio/studio-backend/pkg/auth/session"
	"github.com/rhoodstudio/studio-backend/pkg/config"
	"github.com/rhoodstudio/studio-backend/pkg/db"
	"github.com/rhoodstudio/studio-backend/pkg/instance"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"github.com/rhoodstudio/studio-backend/pkg/metrics"
	"github.com/rhoodstudio/studio-backend/pkg/migrate"
	"github.com/rhoodstudio/studio-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.FromConfig("api", cfg.App, instance.ID())

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

	revocations, err := session.NewRevocations(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create token revocations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	usersRepo := users.NewRepository(dbClient.DB())
	boostsRepo := boosts.NewRepository(dbClient.DB())

	creditsService, err := credits.NewService(credits.ServiceParams{
		DB:            dbClient,
		Ledger:        credits.NewLedgerRepository(dbClient.DB()),
		Users:         usersRepo,
		Opportunities: opportunities.NewRepository(dbClient.DB()),
		Boosts:        boostsRepo,
		Metrics:       metrics.NewCreditMetrics(registry),
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create credits service", err)
		os.Exit(1)
	}

	boostsService, err := boosts.NewService(boostsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create boosts service", err)
		os.Exit(1)
	}

	leaderboardService, err := leaderboard.NewService(usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create leaderboard service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    revocations,
		Resolver:    users.NewRoleResolver(usersRepo),
		Idempotency: redisClient,
		Limiter:     redisClient,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Gatherer:    registry,
		Credits:     creditsService,
		Boosts:      boostsService,
		Leaderboard: leaderboardService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	logg.Info(ctx, "api server stopped")
}
