package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhoodstudio/studio-backend/api/controllers"
	"github.com/rhoodstudio/studio-backend/api/middleware"
	"github.com/rhoodstudio/studio-backend/api/responses"
	"github.com/rhoodstudio/studio-backend/internal/boosts"
	"github.com/rhoodstudio/studio-backend/internal/credits"
	"github.com/rhoodstudio/studio-backend/internal/leaderboard"
	"github.com/rhoodstudio/studio-backend/pkg/auth/session"
	"github.com/rhoodstudio/studio-backend/pkg/config"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"github.com/rhoodstudio/studio-backend/pkg/metrics"
	pkgredis "github.com/rhoodstudio/studio-backend/pkg/redis"
)

type sessionRevoker interface {
	session.RevocationChecker
	controllers.TokenRevoker
}

// RateLimiter is the fixed-window counter behind per-user throttling.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies carries everything the HTTP surface needs. Optional
// collaborators may be left nil: Idempotency and Limiter disable their
// middleware, Gatherer hides /metrics.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Sessions    sessionRevoker
	Resolver    middleware.CallerResolver
	Idempotency pkgredis.IdempotencyStore
	Limiter     RateLimiter
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Credits     credits.Service
	Boosts      boosts.Service
	Leaderboard leaderboard.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := middleware.Idempotency(deps.Idempotency, logg)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.FlatErrors(map[string]responses.StatusOverrides{
			"/api/credits/award-rating-credits": controllers.AwardErrorStatuses,
			"/api/credits/boost-opportunity":    controllers.BoostErrorStatuses,
		}))
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, deps.Resolver, logg))
		if deps.Limiter != nil {
			r.Use(middleware.RateLimit(cfg.RateLimit, deps.Limiter, logg))
		}

		r.Post("/auth/logout", controllers.AuthLogout(deps.Sessions, logg))

		r.Route("/credits", func(r chi.Router) {
			r.With(idempotent).Post("/award-rating-credits", controllers.CreditsAwardRating(deps.Credits, logg))
			r.With(idempotent).Post("/boost-opportunity", controllers.CreditsBoostOpportunity(deps.Credits, logg))
			r.Get("/balance", controllers.CreditsBalance(deps.Credits, logg))
			r.Get("/transactions", controllers.CreditsTransactions(deps.Credits, logg))
			r.Get("/boosts", controllers.CreditsBoosts(deps.Boosts, logg))
			r.Get("/leaderboard", controllers.Leaderboard(deps.Leaderboard, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.With(idempotent).Post("/credits/adjust", controllers.AdminAdjustCredits(deps.Credits, logg))
			r.With(idempotent).Post("/boosts/{boostId}/deactivate", controllers.AdminDeactivateBoost(deps.Boosts, logg))
		})
	})

	return r
}
