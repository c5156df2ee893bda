package inventory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStockLevel(t *testing.T, onHand int64) *StockLevel {
	t.Helper()
	level, err := NewStockLevel(uuid.New(), uuid.New(), testStamp)
	require.NoError(t, err)
	if onHand > 0 {
		require.NoError(t, level.AdjustQuantity(onHand, "initial", testStamp))
	}
	return level
}

func assertStockIdentity(t *testing.T, l *StockLevel) {
	t.Helper()
	assert.Equal(t, l.QuantityOnHand.Int64()-l.QuantityReserved.Int64(), l.QuantityAvailable.Int64())
	assert.GreaterOrEqual(t, l.QuantityAvailable.Int64(), int64(0))
	assert.GreaterOrEqual(t, l.QuantityReserved.Int64(), int64(0))
}

func TestStockLevel_Reserve(t *testing.T) {
	level := newTestStockLevel(t, 10)

	require.NoError(t, level.Reserve(4, testStamp))
	assert.Equal(t, int64(6), level.QuantityAvailable.Int64())
	assert.Equal(t, int64(4), level.QuantityReserved.Int64())

	t.Run("over-reserve fails and leaves state unchanged", func(t *testing.T) {
		version := level.Version
		err := level.Reserve(7, testStamp)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Equal(t, int64(6), level.QuantityAvailable.Int64())
		assert.Equal(t, int64(4), level.QuantityReserved.Int64())
		assert.Equal(t, version, level.Version)
	})

	t.Run("negative reserve fails", func(t *testing.T) {
		assert.Error(t, level.Reserve(-1, testStamp))
	})

	assertStockIdentity(t, level)
}

func TestStockLevel_ReserveReleaseRoundTrip(t *testing.T) {
	for _, qty := range []int64{0, 1, 5, 10} {
		level := newTestStockLevel(t, 10)
		require.NoError(t, level.Reserve(2, testStamp))
		beforeAvailable, beforeReserved := level.QuantityAvailable, level.QuantityReserved

		if qty > beforeAvailable.Int64() {
			assert.Error(t, level.Reserve(qty, testStamp))
			continue
		}
		require.NoError(t, level.Reserve(qty, testStamp))
		require.NoError(t, level.ReleaseReservation(qty, testStamp))
		assert.Equal(t, beforeAvailable, level.QuantityAvailable)
		assert.Equal(t, beforeReserved, level.QuantityReserved)
		assertStockIdentity(t, level)
	}
}

func TestStockLevel_ReleaseReservation(t *testing.T) {
	level := newTestStockLevel(t, 5)
	require.NoError(t, level.Reserve(3, testStamp))

	assert.Error(t, level.ReleaseReservation(4, testStamp))
	assert.Error(t, level.ReleaseReservation(-1, testStamp))
	require.NoError(t, level.ReleaseReservation(3, testStamp))
	assert.Equal(t, int64(5), level.QuantityAvailable.Int64())
	assertStockIdentity(t, level)
}

func TestStockLevel_AdjustQuantity(t *testing.T) {
	t.Run("rejects deltas that drive on hand negative", func(t *testing.T) {
		level := newTestStockLevel(t, 3)
		err := level.AdjustQuantity(-4, "shrinkage", testStamp)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Equal(t, int64(3), level.QuantityOnHand.Int64())
		assertStockIdentity(t, level)
	})

	t.Run("rejects deltas that would drop below reserved", func(t *testing.T) {
		level := newTestStockLevel(t, 5)
		require.NoError(t, level.Reserve(4, testStamp))
		assert.Error(t, level.AdjustQuantity(-2, "count", testStamp))
		require.NoError(t, level.AdjustQuantity(-1, "count", testStamp))
		assert.Equal(t, int64(0), level.QuantityAvailable.Int64())
		assertStockIdentity(t, level)
	})

	t.Run("zero is a no-op", func(t *testing.T) {
		level := newTestStockLevel(t, 3)
		level.ClearDomainEvents()
		version := level.Version

		require.NoError(t, level.AdjustQuantity(0, "recount", testStamp))
		assert.Equal(t, int64(3), level.QuantityOnHand.Int64())
		assert.Equal(t, int64(3), level.QuantityAvailable.Int64())
		assert.Equal(t, version, level.Version)
		assert.Empty(t, level.GetDomainEvents())
		assertStockIdentity(t, level)
	})
}

func TestStockLevel_Predicates(t *testing.T) {
	level := newTestStockLevel(t, 4)
	maxLevel := int64(10)
	require.NoError(t, level.UpdateLevels(5, &maxLevel, 4, testStamp))

	assert.True(t, level.IsBelowMinimum())
	assert.False(t, level.IsAboveMaximum())
	assert.True(t, level.NeedsReorder())

	require.NoError(t, level.AdjustQuantity(8, "receipt", testStamp))
	assert.False(t, level.IsBelowMinimum())
	assert.True(t, level.IsAboveMaximum())
	assert.False(t, level.NeedsReorder())

	badMax := int64(1)
	assert.Error(t, level.UpdateLevels(5, &badMax, 0, testStamp))
}

func TestStockLevel_ThresholdEvent(t *testing.T) {
	level := newTestStockLevel(t, 10)
	require.NoError(t, level.UpdateLevels(0, nil, 5, testStamp))
	level.ClearDomainEvents()

	require.NoError(t, level.AdjustQuantity(-5, "sale", testStamp))
	var types []string
	for _, e := range level.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, EventTypeStockBelowThreshold)
}

func TestStockLevel_Deactivate(t *testing.T) {
	level := newTestStockLevel(t, 2)
	require.NoError(t, level.Reserve(1, testStamp))
	assert.Error(t, level.Deactivate(testStamp))
	require.NoError(t, level.ReleaseReservation(1, testStamp))
	require.NoError(t, level.Deactivate(testStamp))
	assert.Error(t, level.AdjustQuantity(1, "", testStamp))
}
