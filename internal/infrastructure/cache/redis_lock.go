package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// lockStore is the subset of Redis operations RedisLocker needs
type lockStore interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}

type redisLockStore struct {
	client redis.UniversalClient
}

func (s *redisLockStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *redisLockStore) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	n, err := releaseScript.Run(ctx, s.client, []string{key}, value).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return n > 0, nil
}

// RedisLocker implements Locker with SET NX PX and a token-checked release
type RedisLocker struct {
	store     lockStore
	keyPrefix string
	ttl       time.Duration
}

// NewRedisLocker creates a locker on an existing Redis client
func NewRedisLocker(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisLocker {
	return newRedisLocker(&redisLockStore{client: client}, keyPrefix, ttl)
}

func newRedisLocker(store lockStore, keyPrefix string, ttl time.Duration) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "eshop:lock:"
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{store: store, keyPrefix: keyPrefix, ttl: ttl}
}

// TryLock implements Locker
func (l *RedisLocker) TryLock(ctx context.Context, key string) (Unlock, error) {
	fullKey := l.keyPrefix + key
	token := uuid.NewString()

	ok, err := l.store.SetNX(ctx, fullKey, token, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	var released atomic.Bool
	return func(ctx context.Context) error {
		if !released.CompareAndSwap(false, true) {
			return nil
		}
		if _, err := l.store.CompareAndDelete(ctx, fullKey, token); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}, nil
}

var _ Locker = (*RedisLocker)(nil)
