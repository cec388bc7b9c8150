// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"subscription-tracker/internal/config"
	"subscription-tracker/internal/domain/ports/repository"
	"subscription-tracker/internal/infra/adapters/reminder"
	"subscription-tracker/internal/infra/api"
	"subscription-tracker/internal/infra/api/apiv1"
	pg "subscription-tracker/internal/infra/db/postgres"
	"subscription-tracker/internal/infra/logging"
	"subscription-tracker/internal/infra/metrics"
	red "subscription-tracker/internal/infra/redis"
	"subscription-tracker/internal/infra/sched"
	"subscription-tracker/internal/infra/web"
	"subscription-tracker/internal/infra/worker"
	"subscription-tracker/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, debug level)")
	flag.Parse()

	// Prices are rendered as JSON numbers, matching the numeric column.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Repositories (+ optional Redis cache) ----
	var (
		subRepo  repository.SubscriptionRepository = pg.NewSubscriptionRepo(pool)
		userRepo repository.UserRepository         = pg.NewPostgresUserRepo(pool)
		limiter  api.Limiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		subRepo = pg.NewSubscriptionRepoCacheDecorator(subRepo, redisClient, cfg.Redis.TTL)
		userRepo = pg.NewUserRepoCacheDecorator(userRepo, redisClient, cfg.Redis.TTL)
		limiter = red.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	} else {
		logger.Warn().Msg("redis not configured; cache and rate limiting disabled")
	}
	txManager := pg.NewTxManager(pool)

	// ---- Reminder dispatch ----
	scheduler, closeScheduler, err := reminder.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("reminder driver")
	}
	defer func() { _ = closeScheduler() }()

	workers := worker.NewPool(cfg.Reminder.Workers, cfg.Reminder.Workers*16, logging.Component(logger, "reminder_pool"))
	// Stop drains queued triggers on shutdown, so the pool outlives the signal context.
	workers.Start(context.WithoutCancel(ctx))
	defer workers.Stop()

	dispatcher := usecase.NewReminderDispatcher(scheduler, workers, cfg.CallbackURL(), logger)
	logger.Info().Str("driver", scheduler.Name()).Str("callback", cfg.CallbackURL()).Msg("reminder dispatch ready")

	// ---- Use cases ----
	subUC := usecase.NewSubscriptionUseCase(subRepo, txManager, dispatcher, logging.Component(logger, "subscription_uc"))

	// ---- Status gauge ----
	if cfg.Metrics.Enabled {
		refresher := sched.NewStatusRefresher(cfg.Stats.RefreshCron, subUC, logger).
			OnTick(func() { metrics.ObservePool(pool) })
		go func() { _ = refresher.Run(ctx) }()
	}

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.ExpiresIn)
	srv := apiv1.NewServer(subUC, userRepo, cfg.Reminder.AcceptTimeout, logging.Component(logger, "http")).
		WithReadiness(func(ctx context.Context) error { return pool.Ping(ctx) })
	router := apiv1.NewRouter(srv, web.NewAuthenticator(auth, userRepo, logger), apiv1.RouterConfig{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		MetricsEnabled: cfg.Metrics.Enabled,
		RateLimiter:    limiter,
	})

	server := api.NewServer(cfg.Server.Port, router, cfg.Server.ShutdownTimeout, logger)
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server stopped")
	}
	logger.Info().Msg("shutdown complete")
}
