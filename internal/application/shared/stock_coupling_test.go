package shared_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type couplingFixture struct {
	ctx   context.Context
	repos *appshared.Repositories
	unit  *inventory.InventoryUnit
}

// newCouplingFixture stores one AVAILABLE unit counted on hand at the test
// location.
func newCouplingFixture(t *testing.T) *couplingFixture {
	t.Helper()
	store := testutil.NewMemoryStore(func() time.Time { return now })
	repos := store.Repositories()
	ctx := context.Background()
	unit, err := inventory.NewInventoryUnit(inventory.NewInventoryUnitInput{
		Code:          "TENT-A",
		ItemID:        uuid.New(),
		LocationID:    testutil.TestLocationID(),
		PurchasePrice: valueobject.MustMoney("300.00"),
	}, stamp())
	require.NoError(t, err)
	require.NoError(t, repos.UnitRepo.Save(ctx, unit))
	level, err := inventory.NewStockLevel(unit.ItemID, unit.LocationID, stamp())
	require.NoError(t, err)
	require.NoError(t, level.AdjustQuantity(1, "received", stamp()))
	require.NoError(t, repos.StockRepo.Save(ctx, level))
	return &couplingFixture{ctx: ctx, repos: repos, unit: unit}
}

func (f *couplingFixture) onHand(t *testing.T, locationID uuid.UUID) int64 {
	t.Helper()
	level, err := f.repos.StockRepo.FindByItemAndLocation(f.ctx, f.unit.ItemID, locationID)
	require.NoError(t, err)
	return level.QuantityOnHand.Int64()
}

func TestApplyUnitStatusChange(t *testing.T) {
	f := newCouplingFixture(t)

	require.NoError(t, f.unit.RentOut(stamp()))
	level, err := appshared.ApplyUnitStatusChange(f.ctx, f.repos, f.unit, inventory.UnitStatusAvailable, stamp())
	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, int64(0), f.onHand(t, testutil.TestLocationID()))

	require.NoError(t, f.unit.MarkAsDamaged("dropped", stamp()))
	level, err = appshared.ApplyUnitStatusChange(f.ctx, f.repos, f.unit, inventory.UnitStatusRented, stamp())
	require.NoError(t, err)
	assert.Nil(t, level, "moving between uncounted statuses leaves stock alone")
	assert.Equal(t, int64(0), f.onHand(t, testutil.TestLocationID()))
}

func TestApplyUnitStatusChange_CreatesLevelOnArrival(t *testing.T) {
	f := newCouplingFixture(t)
	require.NoError(t, f.unit.RentOut(stamp()))
	_, err := appshared.ApplyUnitStatusChange(f.ctx, f.repos, f.unit, inventory.UnitStatusAvailable, stamp())
	require.NoError(t, err)

	depot := uuid.New()
	require.NoError(t, f.unit.ReturnFromRent(nil, stamp()))
	require.NoError(t, f.unit.MoveLocation(depot, stamp()))
	level, err := appshared.ApplyUnitStatusChange(f.ctx, f.repos, f.unit, inventory.UnitStatusRented, stamp())
	require.NoError(t, err)
	require.NotNil(t, level)
	assert.Equal(t, depot, level.LocationID)
	assert.Equal(t, int64(1), f.onHand(t, depot))
	assert.Equal(t, int64(0), f.onHand(t, testutil.TestLocationID()))
}

func TestApplyUnitStatusChange_MissingLevel(t *testing.T) {
	f := newCouplingFixture(t)
	f.unit.LocationID = uuid.New()
	require.NoError(t, f.unit.RentOut(stamp()))

	_, err := appshared.ApplyUnitStatusChange(f.ctx, f.repos, f.unit, inventory.UnitStatusAvailable, stamp())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestApplyUnitMove(t *testing.T) {
	f := newCouplingFixture(t)
	store := uuid.New()

	levels, err := appshared.ApplyUnitMove(f.ctx, f.repos, f.unit, f.unit.LocationID, stamp())
	require.NoError(t, err)
	assert.Nil(t, levels)

	require.NoError(t, f.unit.MoveLocation(store, stamp()))
	levels, err = appshared.ApplyUnitMove(f.ctx, f.repos, f.unit, testutil.TestLocationID(), stamp())
	require.NoError(t, err)
	assert.Len(t, levels, 2)
	assert.Equal(t, int64(0), f.onHand(t, testutil.TestLocationID()))
	assert.Equal(t, int64(1), f.onHand(t, store))
}
