package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rhoodstudio/studio-backend/api/responses"
	"github.com/rhoodstudio/studio-backend/pkg/config"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
)

type fixedWindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimit applies a per-user fixed window to authenticated routes. It must
// run after Auth. Limiter failures let the request through and are logged.
func RateLimit(cfg config.RateLimitConfig, limiter fixedWindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || cfg.Window <= 0 || cfg.Requests <= 0 {
			return next
		}
		retryAfter := strconv.Itoa(int(math.Ceil(cfg.Window.Seconds())))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			scope := "user:" + userID.String()

			allowed, count, err := limiter.FixedWindowAllow(r.Context(), scope, int64(cfg.Requests), cfg.Window)
			if err != nil {
				logError(r.Context(), logg, "rate limit check failed", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", retryAfter)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithField(ctx, "window_count", count)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
