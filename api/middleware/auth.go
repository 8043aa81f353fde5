package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/api/responses"
	pkgAuth "github.com/rhoodstudio/studio-backend/pkg/auth"
	"github.com/rhoodstudio/studio-backend/pkg/auth/session"
	"github.com/rhoodstudio/studio-backend/pkg/config"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
	"gorm.io/gorm"
)

// CallerResolver loads the role of an authenticated user from storage.
// It returns gorm.ErrRecordNotFound when no profile exists.
type CallerResolver interface {
	RoleOf(ctx context.Context, userID uuid.UUID) (enums.UserRole, error)
}

// Auth verifies the bearer token, rejects revoked tokens and seeds the request
// context with the caller's id and stored role.
func Auth(cfg config.JWTConfig, revocations session.RevocationChecker, resolver CallerResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			userID, _ := claims.UserID()

			if revocations != nil {
				revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check token revocation"))
					return
				}
				if revoked {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token revoked"))
					return
				}
			}

			role, err := resolver.RoleOf(r.Context(), userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user profile not found"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve caller"))
				return
			}

			ctx := WithCaller(r.Context(), userID, role)
			var expiresAt int64
			if claims.ExpiresAt != nil {
				expiresAt = claims.ExpiresAt.Unix()
			}
			ctx = WithToken(ctx, TokenInfo{JTI: claims.ID, ExpiresAt: expiresAt})
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID.String())
				ctx = logg.WithActorRole(ctx, string(role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
