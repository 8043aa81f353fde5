package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rhoodstudio/studio-backend/api/middleware"
	"github.com/rhoodstudio/studio-backend/api/responses"
	pkgerrors "github.com/rhoodstudio/studio-backend/pkg/errors"
	"github.com/rhoodstudio/studio-backend/pkg/logger"
)

// TokenRevoker denylists an access token id until it would expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt, now time.Time) error
}

// AuthLogout revokes the bearer token that authenticated the request.
func AuthLogout(revoker TokenRevoker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, ok := middleware.TokenFromContext(r.Context())
		if !ok || info.JTI == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session"))
			return
		}
		if err := revoker.Revoke(r.Context(), info.JTI, time.Unix(info.ExpiresAt, 0), time.Now()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke token"))
			return
		}
		if logg != nil {
			logg.Info(r.Context(), "session revoked")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
