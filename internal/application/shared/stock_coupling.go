package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	domain "github.com/rentalcore/backend/internal/domain/shared"
)

// LockStockLevel loads the (item, location) stock level under a row lock.
// With create set, a missing level is created empty instead of failing.
func LockStockLevel(ctx context.Context, repos TransactionalRepositories, itemID, locationID uuid.UUID, create bool, s domain.Stamp) (*inventory.StockLevel, error) {
	level, err := repos.Stock().FindByItemAndLocationForUpdate(ctx, itemID, locationID)
	if err == nil {
		return level, nil
	}
	if !create || !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	level, err = inventory.NewStockLevel(itemID, locationID, s)
	if err != nil {
		return nil, err
	}
	if err := repos.Stock().Save(ctx, level); err != nil {
		return nil, fmt.Errorf("create stock level: %w", err)
	}
	return level, nil
}

// ApplyUnitStatusChange keeps the on-hand count of the unit's stock level
// equal to its AVAILABLE units: leaving AVAILABLE is -1, entering it +1.
// The changed level is returned for tracking, nil when nothing moved.
func ApplyUnitStatusChange(ctx context.Context, repos TransactionalRepositories, unit *inventory.InventoryUnit, from inventory.UnitStatus, s domain.Stamp) (*inventory.StockLevel, error) {
	delta := inventory.StockDelta(from, unit.Status)
	if delta == 0 {
		return nil, nil
	}
	return adjustFor(ctx, repos, unit.ItemID, unit.LocationID, delta,
		fmt.Sprintf("unit %s %s -> %s", unit.Code, from, unit.Status), s)
}

// ApplyUnitMove moves one on-hand unit between locations when an AVAILABLE
// unit changes location.
func ApplyUnitMove(ctx context.Context, repos TransactionalRepositories, unit *inventory.InventoryUnit, fromLocation uuid.UUID, s domain.Stamp) ([]*inventory.StockLevel, error) {
	if unit.Status != inventory.UnitStatusAvailable || fromLocation == unit.LocationID {
		return nil, nil
	}
	reason := "unit " + unit.Code + " moved"
	out, err := adjustFor(ctx, repos, unit.ItemID, fromLocation, -1, reason, s)
	if err != nil {
		return nil, err
	}
	in, err := adjustFor(ctx, repos, unit.ItemID, unit.LocationID, 1, reason, s)
	if err != nil {
		return nil, err
	}
	return []*inventory.StockLevel{out, in}, nil
}

func adjustFor(ctx context.Context, repos TransactionalRepositories, itemID, locationID uuid.UUID, delta int64, reason string, s domain.Stamp) (*inventory.StockLevel, error) {
	level, err := LockStockLevel(ctx, repos, itemID, locationID, delta > 0, s)
	if err != nil {
		return nil, err
	}
	if err := level.AdjustQuantity(delta, reason, s); err != nil {
		return nil, err
	}
	if err := repos.Stock().SaveWithLock(ctx, level); err != nil {
		return nil, err
	}
	return level, nil
}
