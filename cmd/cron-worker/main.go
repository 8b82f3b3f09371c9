package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danamoreau/strandly-backend/internal/billing"
	"github.com/danamoreau/strandly-backend/internal/cron"
	"github.com/danamoreau/strandly-backend/internal/salons"
	"github.com/danamoreau/strandly-backend/internal/streaks"
	"github.com/danamoreau/strandly-backend/pkg/config"
	"github.com/danamoreau/strandly-backend/pkg/db"
	"github.com/danamoreau/strandly-backend/pkg/logger"
	"github.com/danamoreau/strandly-backend/pkg/metrics"
	"github.com/danamoreau/strandly-backend/pkg/migrate"
	"github.com/danamoreau/strandly-backend/pkg/outbox"
	"github.com/danamoreau/strandly-backend/pkg/redis"
)

const (
	// The lock TTL outlives the cadence so a crashed worker cannot
	// leave a permanently held lock.
	cycleInterval = time.Hour
	lockTTL       = 2 * time.Hour
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

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	streaksService, err := streaks.NewService(streaks.ServiceParams{
		DB:             dbClient,
		Repo:           streaks.NewRepository(dbClient.DB()),
		Outbox:         outboxService,
		WarnWithinDays: cfg.Trial.WarnWithinDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create streaks service", err)
		os.Exit(1)
	}

	salonsService, err := salons.NewService(salons.ServiceParams{
		DB:            dbClient,
		Repo:          salons.NewRepository(dbClient.DB()),
		Outbox:        outboxService,
		InviteTTLDays: cfg.Trial.InviteTTLDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create salons service", err)
		os.Exit(1)
	}

	streakResetJob, err := cron.NewStreakResetJob(cron.StreakResetJobParams{
		Logger:  logg,
		Streaks: streaksService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create streak reset job", err)
		os.Exit(1)
	}

	trialExpiryJob, err := cron.NewTrialExpiryJob(cron.TrialExpiryJobParams{
		Logger:         logg,
		DB:             dbClient,
		Subscriptions:  billing.NewRepository(dbClient.DB()),
		Outbox:         outboxService,
		WarnWithinDays: cfg.Trial.WarnWithinDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create trial expiry job", err)
		os.Exit(1)
	}

	invitationExpiryJob, err := cron.NewInvitationExpiryJob(cron.InvitationExpiryJobParams{
		Logger: logg,
		Salons: salonsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invitation expiry job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockScope(cfg.App.Env)), lockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(streakResetJob, trialExpiryJob, invitationExpiryJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cycleInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockScope(env string) string {
	if env == "" {
		env = "local"
	}
	return "cron-worker:" + env
}
