package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sisl/eshop/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LockerFactory creates lockers based on configuration
type LockerFactory struct {
	lockConfig            config.LockConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory locker when
// Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(lockCfg config.LockConfig, redisCfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		lockConfig:            lockCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured locker and a close function for its resources.
// With backend "redis" an unreachable server falls back to the in-memory locker
// unless fallback was disabled.
func (f *LockerFactory) Create(ctx context.Context) (Locker, func() error, error) {
	noop := func() error { return nil }
	if f.lockConfig.Backend != "redis" {
		f.logger.Info("Using in-memory confirmation lock")
		return NewMemoryLocker(f.lockConfig.TTL), noop, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if !f.allowInMemoryFallback {
			return nil, nil, fmt.Errorf("redis required for confirmation lock but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory confirmation lock. "+
			"Confirmations are only serialized within this instance.",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err),
		)
		return NewMemoryLocker(f.lockConfig.TTL), noop, nil
	}

	f.logger.Info("Using Redis confirmation lock", zap.String("addr", f.redisConfig.Addr()))
	return NewRedisLocker(client, "eshop:lock:", f.lockConfig.TTL), client.Close, nil
}
