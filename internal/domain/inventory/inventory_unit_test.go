package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUnit(t *testing.T) *InventoryUnit {
	t.Helper()
	unit, err := NewInventoryUnit(NewInventoryUnitInput{
		Code:         "u-001",
		SerialNumber: "SN-1",
		ItemID:       uuid.New(),
		LocationID:   uuid.New(),
	}, testStamp)
	require.NoError(t, err)
	return unit
}

func TestNewInventoryUnit(t *testing.T) {
	t.Run("defaults to available and new", func(t *testing.T) {
		unit := newTestUnit(t)
		assert.Equal(t, "U-001", unit.Code)
		assert.Equal(t, UnitStatusAvailable, unit.Status)
		assert.Equal(t, ConditionNew, unit.Condition)
		require.NotNil(t, unit.SerialNumber)
		assert.Equal(t, "SN-1", *unit.SerialNumber)
	})

	t.Run("requires item and location", func(t *testing.T) {
		_, err := NewInventoryUnit(NewInventoryUnitInput{Code: "X", LocationID: uuid.New()}, testStamp)
		assert.Error(t, err)
		_, err = NewInventoryUnit(NewInventoryUnitInput{Code: "X", ItemID: uuid.New()}, testStamp)
		assert.Error(t, err)
	})
}

func TestUnitTransitionTable(t *testing.T) {
	legal := map[UnitStatus][]UnitStatus{
		UnitStatusAvailable:   {UnitStatusRented, UnitStatusSold, UnitStatusMaintenance, UnitStatusDamaged, UnitStatusRetired},
		UnitStatusRented:      {UnitStatusAvailable, UnitStatusMaintenance, UnitStatusDamaged},
		UnitStatusSold:        {},
		UnitStatusMaintenance: {UnitStatusAvailable, UnitStatusDamaged, UnitStatusRetired},
		UnitStatusDamaged:     {UnitStatusMaintenance, UnitStatusRetired},
		UnitStatusRetired:     {},
	}

	for _, from := range AllUnitStatuses {
		for _, to := range AllUnitStatuses {
			expected := false
			for _, l := range legal[from] {
				if l == to {
					expected = true
				}
			}
			got, err := TransitionUnitStatus(from, to)
			if expected {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, got)
			} else {
				assert.True(t, errors.Is(err, shared.ErrInvalidTransition), "%s -> %s", from, to)
				assert.Equal(t, from, got)
			}
		}
	}
}

func TestInventoryUnit_RentalRoundTrip(t *testing.T) {
	unit := newTestUnit(t)

	require.NoError(t, unit.RentOut(testStamp))
	assert.Equal(t, UnitStatusRented, unit.Status)
	assert.Equal(t, 1, unit.RentalCount)

	t.Run("cannot rent twice", func(t *testing.T) {
		err := unit.RentOut(testStamp)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.True(t, domainErr.IsInvalidTransition())
		assert.Equal(t, "RENTED", domainErr.Current)
	})

	good := ConditionGood
	returnStamp := shared.StampAt("clerk", testStamp.At.Add(72*time.Hour))
	require.NoError(t, unit.ReturnFromRent(&good, returnStamp))
	assert.Equal(t, UnitStatusAvailable, unit.Status)
	assert.Equal(t, ConditionGood, unit.Condition)
	assert.Equal(t, 4, unit.CumulativeRentalDays)
	assert.Equal(t, "clerk", unit.UpdatedBy)
}

func TestInventoryUnit_Helpers(t *testing.T) {
	t.Run("sold is terminal", func(t *testing.T) {
		unit := newTestUnit(t)
		require.NoError(t, unit.MarkAsSold(testStamp))
		assert.Error(t, unit.SendForMaintenance("check", testStamp))
		assert.Error(t, unit.Retire("old", testStamp))
		assert.Equal(t, UnitStatusSold, unit.Status)
	})

	t.Run("maintenance stamps date", func(t *testing.T) {
		unit := newTestUnit(t)
		require.NoError(t, unit.SendForMaintenance("service", testStamp))
		require.NotNil(t, unit.LastMaintenanceDate)
		assert.Equal(t, testStamp.At, *unit.LastMaintenanceDate)
		require.NoError(t, unit.ReturnFromMaintenance(nil, nil, testStamp))
		assert.Equal(t, UnitStatusAvailable, unit.Status)
	})

	t.Run("damage then retire", func(t *testing.T) {
		unit := newTestUnit(t)
		require.NoError(t, unit.RentOut(testStamp))
		require.NoError(t, unit.MarkAsDamaged("cracked pole", testStamp))
		assert.Equal(t, ConditionDamaged, unit.Condition)
		assert.Error(t, unit.ReturnFromRent(nil, testStamp))
		require.NoError(t, unit.Retire("beyond repair", testStamp))
		require.NoError(t, unit.Deactivate(testStamp))
		assert.False(t, unit.IsActive)
	})

	t.Run("deactivate requires terminal status", func(t *testing.T) {
		unit := newTestUnit(t)
		assert.Error(t, unit.Deactivate(testStamp))
	})

	t.Run("move only when available or in maintenance", func(t *testing.T) {
		unit := newTestUnit(t)
		to := uuid.New()
		require.NoError(t, unit.MoveLocation(to, testStamp))
		assert.Equal(t, to, unit.LocationID)
		require.NoError(t, unit.RentOut(testStamp))
		assert.Error(t, unit.MoveLocation(uuid.New(), testStamp))
	})
}

func TestStockDelta(t *testing.T) {
	assert.Equal(t, int64(-1), StockDelta(UnitStatusAvailable, UnitStatusRented))
	assert.Equal(t, int64(1), StockDelta(UnitStatusRented, UnitStatusAvailable))
	assert.Equal(t, int64(0), StockDelta(UnitStatusRented, UnitStatusDamaged))
	assert.Equal(t, int64(1), StockDelta(UnitStatusMaintenance, UnitStatusAvailable))
}
