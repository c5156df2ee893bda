package cache

import (
	"context"
	"fmt"

	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory creates idempotency stores based on configuration
type IdempotencyStoreFactory struct {
	idempotency config.IdempotencyConfig
	redis       config.RedisConfig
	logger      *zap.Logger
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(idem config.IdempotencyConfig, redisCfg config.RedisConfig, logger *zap.Logger) *IdempotencyStoreFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotencyStoreFactory{
		idempotency: idem,
		redis:       redisCfg,
		logger:      logger,
	}
}

// CreateStore returns the configured store. A redis backend that cannot be
// reached is an error; the in-memory store is only used when configured,
// since it does not share keys between instances.
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	switch f.idempotency.Backend {
	case "redis":
		store, err := NewRedisIdempotencyStore(ctx, RedisConfig{
			Addr:     f.redis.Addr(),
			Password: f.redis.Password,
			DB:       f.redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create Redis idempotency store: %w", err)
		}
		f.logger.Info("using Redis idempotency store", zap.String("addr", f.redis.Addr()))
		return store, nil
	case "", "memory":
		f.logger.Warn("using in-memory idempotency store; keys are not shared between instances")
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", f.idempotency.Backend)
	}
}

// GuardConfig converts the settings into the domain's idempotency config
func (f *IdempotencyStoreFactory) GuardConfig() shared.IdempotencyConfig {
	cfg := shared.DefaultIdempotencyConfig()
	cfg.Enabled = f.idempotency.Enabled
	if f.idempotency.TTL > 0 {
		cfg.TTL = f.idempotency.TTL
	}
	return cfg
}
