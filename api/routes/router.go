package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danamoreau/strandly-backend/api/controllers"
	webhookcontrollers "github.com/danamoreau/strandly-backend/api/controllers/webhooks"
	"github.com/danamoreau/strandly-backend/api/middleware"
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
	"github.com/danamoreau/strandly-backend/pkg/enums"
	"github.com/danamoreau/strandly-backend/pkg/logger"
	"github.com/danamoreau/strandly-backend/pkg/redis"
	"github.com/danamoreau/strandly-backend/pkg/stripe"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	authService auth.Service,
	postsService posts.Service,
	streaksService streaks.Service,
	profilesService profiles.Service,
	challengesService challenges.Service,
	salonsService salons.Service,
	billingService billing.Service,
	instagramService instagram.Service,
	notificationsService notifications.Service,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Route("/api/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
	})

	// Anonymous-friendly surfaces: a missing or invalid token degrades to
	// the default two-month window instead of a 401.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, sessions, logg))
		r.Get("/api/posts", controllers.ListPosts(postsService, logg))
		r.Get("/api/calendar/{month}", controllers.CalendarMonth(postsService, logg))
		r.Get("/api/billing/access-status", controllers.AccessStatus(billingService, logg))
	})

	// Guest checkout runs before an account exists.
	r.Post("/api/stripe/guest-checkout", controllers.StartGuestCheckout(billingService, logg))
	r.Post("/api/stripe/complete-checkout", controllers.ConfirmGuestCheckout(billingService, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/streak", func(r chi.Router) {
			r.Get("/", controllers.GetStreak(streaksService, logg))
			r.Post("/log", controllers.LogStreak(streaksService, streaks.SourceWeb, logg))
		})
		r.Post("/mobile/streak/log", controllers.LogStreak(streaksService, streaks.SourceMobile, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(profilesService, logg))
			r.Put("/", controllers.UpdateProfile(profilesService, logg))
		})

		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", controllers.ListChallenges(challengesService, logg))
			r.Post("/{id}/join", controllers.JoinChallenge(challengesService, logg))
			r.Post("/{id}/progress", controllers.ChallengeProgress(challengesService, logg))
			r.Post("/{id}/abandon", controllers.AbandonChallenge(challengesService, logg))
		})
		r.Get("/user/challenges", controllers.ListUserChallenges(challengesService, logg))

		r.Route("/salon", func(r chi.Router) {
			r.Post("/", controllers.CreateSalon(salonsService, logg))
			r.Get("/team", controllers.GetTeam(salonsService, logg))
			r.Post("/invitations/accept", controllers.AcceptInvite(salonsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.SalonRoleOwner), logg))
				r.Post("/invitations", controllers.InviteMember(salonsService, logg))
				r.Delete("/members/{memberId}", controllers.RevokeInvite(salonsService, logg))
			})

			r.Route("/challenges", func(r chi.Router) {
				r.Get("/", controllers.ListTeamChallenges(salonsService, logg))
				r.Post("/{id}/progress", controllers.LogTeamProgress(salonsService, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(string(enums.SalonRoleOwner), logg))
					r.Post("/", controllers.CreateTeamChallenge(salonsService, logg))
					r.Put("/{id}", controllers.UpdateTeamChallenge(salonsService, logg))
					r.Delete("/{id}", controllers.DeleteTeamChallenge(salonsService, logg))
				})
			})
		})

		r.Post("/billing/portal", controllers.BillingPortal(billingService, logg))
		r.Post("/mobile/stripe/checkout", controllers.CreateCheckout(billingService, logg))

		r.Route("/instagram", func(r chi.Router) {
			r.Get("/status", controllers.InstagramStatus(instagramService, logg))
			r.Get("/auth-url", controllers.InstagramAuthURL(instagramService, logg))
			r.Post("/connect", controllers.InstagramConnect(instagramService, logg))
			r.Delete("/disconnect", controllers.InstagramDisconnect(instagramService, logg))
			r.Post("/sync", controllers.InstagramSync(instagramService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{id}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
