package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)
	repo := store.Repositories().Stock()
	stamp := shared.StampAt("tester", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))

	level, err := inventory.NewStockLevel(NewTestUUID("item"), TestLocationID(), stamp)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, level))

	t.Run("accepts several changes on one load", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, level.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.AdjustQuantity(3, "count", stamp))
		require.NoError(t, loaded.Reserve(1, stamp))
		require.NoError(t, repo.SaveWithLock(ctx, loaded))
	})

	t.Run("rejects a stale copy", func(t *testing.T) {
		first, err := repo.FindByID(ctx, level.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, level.ID)
		require.NoError(t, err)

		require.NoError(t, first.AdjustQuantity(1, "a", stamp))
		require.NoError(t, repo.SaveWithLock(ctx, first))

		require.NoError(t, second.AdjustQuantity(1, "b", stamp))
		err = repo.SaveWithLock(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("stored copies carry no pending audit", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, level.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.PendingAudit())
		assert.Empty(t, loaded.GetDomainEvents())
		assert.Equal(t, int64(4), loaded.QuantityOnHand.Int64())
	})
}

func TestMemoryStore_NumberSequence(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(func() time.Time { return time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC) })
	numbers := store.Repositories().Numbers()

	first, err := numbers.Next(ctx, "RNT")
	require.NoError(t, err)
	second, err := numbers.Next(ctx, "RNT")
	require.NoError(t, err)
	other, err := numbers.Next(ctx, "RET")
	require.NoError(t, err)

	assert.Equal(t, "RNT-20240704-0001", first)
	assert.Equal(t, "RNT-20240704-0002", second)
	assert.Equal(t, "RET-20240704-0001", other)
}

func TestRecordingPublisher(t *testing.T) {
	p := NewRecordingPublisher()
	require.NoError(t, p.Publish(context.Background(), NewTestEvent("A"), NewTestEvent("B")))
	assert.Equal(t, []string{"A", "B"}, p.Types())
	p.Reset()
	assert.Empty(t, p.Events())
}

func TestWaitForCondition(t *testing.T) {
	count := 0
	ok := WaitForCondition(t, func() bool {
		count++
		return count >= 3
	}, time.Second, time.Millisecond)
	assert.True(t, ok)
	assert.False(t, WaitForCondition(t, func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond))
}
