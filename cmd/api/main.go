package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/danamoreau/strandly-backend/api/routes"
	"github.com/danamoreau/strandly-backend/internal/auth"
	"github.com/danamoreau/strandly-backend/internal/billing"
	"github.com/danamoreau/strandly-backend/internal/challenges"
	"github.com/danamoreau/strandly-backend/internal/instagram"
	"github.com/danamoreau/strandly-backend/internal/notifications"
	"github.com/danamoreau/strandly-backend/internal/posts"
	"github.com/danamoreau/strandly-backend/internal/profiles"
	"github.com/danamoreau/strandly-backend/internal/salons"
	"github.com/danamoreau/strandly-backend/internal/streaks"
	stripewebhook "github.com/danamoreau/strandly-backend/internal/webhooks/stripe"
	"github.com/danamoreau/strandly-backend/pkg/auth/session"
	"github.com/danamoreau/strandly-backend/pkg/config"
	"github.com/danamoreau/strandly-backend/pkg/db"
	"github.com/danamoreau/strandly-backend/pkg/logger"
	"github.com/danamoreau/strandly-backend/pkg/migrate"
	"github.com/danamoreau/strandly-backend/pkg/outbox"
	"github.com/danamoreau/strandly-backend/pkg/redis"
	"github.com/danamoreau/strandly-backend/pkg/stripe"
)

const webhookEventTTL = 24 * time.Hour

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

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	billingRepo := billing.NewRepository(dbClient.DB())
	billingService, err := billing.NewService(billing.ServiceParams{
		DB:        dbClient,
		Repo:      billingRepo,
		Stripe:    billing.NewStripeClient(stripeClient),
		StripeCfg: cfg.Stripe,
		TrialDays: cfg.Trial.LengthDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	profilesRepo := profiles.NewRepository(dbClient.DB())
	profilesService, err := profiles.NewService(profilesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create profiles service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		UserRepo:       auth.NewRepository(dbClient.DB()),
		ProfileRepo:    profilesRepo,
		Trials:         billingService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	postsService, err := posts.NewService(posts.ServiceParams{
		Repo:     posts.NewRepository(dbClient.DB()),
		Access:   billingService,
		Profiles: profilesService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create posts service", err)
		os.Exit(1)
	}

	streaksService, err := streaks.NewService(streaks.ServiceParams{
		DB:             dbClient,
		Repo:           streaks.NewRepository(dbClient.DB()),
		Outbox:         outboxService,
		Trials:         billingService,
		WarnWithinDays: cfg.Trial.WarnWithinDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create streaks service", err)
		os.Exit(1)
	}

	challengesService, err := challenges.NewService(challenges.ServiceParams{
		DB:     dbClient,
		Repo:   challenges.NewRepository(dbClient.DB()),
		Outbox: outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create challenges service", err)
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

	instagramService, err := instagram.NewService(instagram.NewRepository(dbClient.DB()), cfg.Instagram)
	if err != nil {
		logg.Error(context.Background(), "failed to create instagram service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	stripeWebhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		BillingRepo:       billingRepo,
		Outbox:            outboxService,
		TransactionRunner: dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	stripeWebhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookEventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			postsService,
			streaksService,
			profilesService,
			challengesService,
			salonsService,
			billingService,
			instagramService,
			notificationsService,
			stripeClient,
			stripeWebhookService,
			stripeWebhookGuard,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
