package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rentalcore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIdempotencyStoreFactory_CreateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(config.IdempotencyConfig{Backend: "memory"}, config.RedisConfig{}, zap.NewNop())
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("unreachable redis is an error", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(
			config.IdempotencyConfig{Backend: "redis"},
			config.RedisConfig{Host: "127.0.0.1", Port: 1},
			nil,
		)
		_, err := f.CreateStore(ctx)
		require.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(config.IdempotencyConfig{Backend: "etcd"}, config.RedisConfig{}, nil)
		_, err := f.CreateStore(ctx)
		require.Error(t, err)
	})
}

func TestIdempotencyStoreFactory_GuardConfig(t *testing.T) {
	f := NewIdempotencyStoreFactory(config.IdempotencyConfig{Enabled: true, TTL: time.Hour}, config.RedisConfig{}, nil)
	cfg := f.GuardConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Hour, cfg.TTL)

	f = NewIdempotencyStoreFactory(config.IdempotencyConfig{}, config.RedisConfig{}, nil)
	cfg = f.GuardConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.TTL)
}
