package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/rhoodstudio/studio-backend/pkg/redis"
)

type revocationStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type revocationKeyer interface {
	RevokedTokenKey(jti string) string
}

// RevocationChecker exposes the read-only surface needed by middleware.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Revocations is a Redis denylist of access token ids. Entries live until the
// token would have expired anyway.
type Revocations struct {
	store revocationStore
	keyer revocationKeyer
}

// NewRevocations constructs a denylist backed by Redis.
func NewRevocations(client *redisclient.Client) (*Revocations, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Revocations{store: client, keyer: client}, nil
}

// Revoke denylists jti until expiresAt. Already-expired tokens are ignored.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt, now time.Time) error {
	if strings.TrimSpace(jti) == "" {
		return fmt.Errorf("token id is required")
	}
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, r.keyer.RevokedTokenKey(jti), "1", ttl)
}

// IsRevoked reports whether jti was revoked.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, fmt.Errorf("token id is required")
	}
	return r.store.Exists(ctx, r.keyer.RevokedTokenKey(jti))
}
