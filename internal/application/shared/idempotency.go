package shared

import (
	"context"
	"encoding/hex"
	"fmt"

	domain "github.com/rentalcore/backend/internal/domain/shared"
	"golang.org/x/crypto/blake2b"
)

// IdempotencyGuard deduplicates non-idempotent operations by a client key.
// The key is marked before the operation runs and released again when the
// operation fails, so only successful requests block a repeat.
type IdempotencyGuard struct {
	store  domain.IdempotencyStore
	config domain.IdempotencyConfig
}

// NewIdempotencyGuard creates a guard over store. A nil store disables it.
func NewIdempotencyGuard(store domain.IdempotencyStore, config domain.IdempotencyConfig) *IdempotencyGuard {
	return &IdempotencyGuard{store: store, config: config}
}

// Fingerprint scopes a client key to one operation and resource and hashes
// it to a fixed-length store key.
func Fingerprint(operation, resource, key string) string {
	sum := blake2b.Sum256([]byte(operation + "\x00" + resource + "\x00" + key))
	return "idem:" + operation + ":" + hex.EncodeToString(sum[:16])
}

// Run executes fn at most once per (operation, resource, key). An empty key
// runs fn unguarded.
func (g *IdempotencyGuard) Run(ctx context.Context, operation, resource, key string, fn func() error) error {
	if g == nil || g.store == nil || !g.config.Enabled || key == "" {
		return fn()
	}
	storeKey := Fingerprint(operation, resource, key)
	fresh, err := g.store.MarkProcessed(ctx, storeKey, g.config.TTL)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if !fresh {
		return domain.ErrDuplicateRequest
	}
	if err := fn(); err != nil {
		_ = g.store.Release(context.WithoutCancel(ctx), storeKey)
		return err
	}
	return nil
}
