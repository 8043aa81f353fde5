package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxToken  contextKey = "access_token"
)

// TokenInfo is the presented access token's id and expiry, kept for logout.
type TokenInfo struct {
	JTI       string
	ExpiresAt int64
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.UserRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.UserRole); ok {
		return v
	}
	return ""
}

func TokenFromContext(ctx context.Context) (TokenInfo, bool) {
	if ctx == nil {
		return TokenInfo{}, false
	}
	v, ok := ctx.Value(ctxToken).(TokenInfo)
	return v, ok
}

// WithCaller injects the authenticated user. Used by Auth and by handler tests.
func WithCaller(ctx context.Context, userID uuid.UUID, role enums.UserRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}

// WithToken records the presented access token on the context.
func WithToken(ctx context.Context, info TokenInfo) context.Context {
	return context.WithValue(ctx, ctxToken, info)
}
