package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/instance"
	"github.com/rhoodstudio/studio-backend/pkg/redis"
)

const defaultLockTTL = 10 * time.Minute

// Lock guarantees a named job runs on at most one worker at a time.
type Lock interface {
	Acquire(ctx context.Context, name string) (bool, error)
	Release(ctx context.Context, name string) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(name string) string
}

// RedisLock holds one SETNX key per job name. The stored value is the
// instance id plus a random token so an instance never deletes a lock it no
// longer holds.
type RedisLock struct {
	store lockStore
	ttl   time.Duration

	mu     sync.Mutex
	owners map[string]string
}

func NewRedisLock(store lockStore, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, ttl: ttl, owners: map[string]string{}}, nil
}

func (l *RedisLock) Acquire(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, errors.New("lock name is required")
	}
	owner := instance.ID() + ":" + uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.store.LockKey(name), owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", name, err)
	}
	if ok {
		l.mu.Lock()
		l.owners[name] = owner
		l.mu.Unlock()
	}
	return ok, nil
}

func (l *RedisLock) Release(ctx context.Context, name string) error {
	l.mu.Lock()
	owner, held := l.owners[name]
	delete(l.owners, name)
	l.mu.Unlock()
	if !held {
		return nil
	}

	key := l.store.LockKey(name)
	value, err := l.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != owner {
		// expired and taken over by another worker
		return nil
	}
	if err := l.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	return nil
}
