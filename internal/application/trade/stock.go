package trade

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
)

// stockWork bundles what the helpers below need inside one unit of work
type stockWork struct {
	ctx   context.Context
	repos appshared.TransactionalRepositories
	t     *appshared.Tracker
	stamp shared.Stamp
}

func (w stockWork) level(itemID, locationID uuid.UUID, fn func(*inventory.StockLevel) error) error {
	level, err := appshared.LockStockLevel(w.ctx, w.repos, itemID, locationID, false, w.stamp)
	if err != nil {
		return err
	}
	if err := fn(level); err != nil {
		return err
	}
	if err := w.repos.Stock().SaveWithLock(w.ctx, level); err != nil {
		return err
	}
	w.t.Track(level)
	return nil
}

func (w stockWork) reserve(itemID, locationID uuid.UUID, qty int64) error {
	return w.level(itemID, locationID, func(l *inventory.StockLevel) error {
		return l.Reserve(qty, w.stamp)
	})
}

func (w stockWork) release(itemID, locationID uuid.UUID, qty int64) error {
	return w.level(itemID, locationID, func(l *inventory.StockLevel) error {
		return l.ReleaseReservation(qty, w.stamp)
	})
}

// unit applies fn to a locked unit and keeps its stock level in step
func (w stockWork) unit(id uuid.UUID, fn func(*inventory.InventoryUnit) error) (*inventory.InventoryUnit, error) {
	unit, err := w.repos.Units().FindByIDForUpdate(w.ctx, id)
	if err != nil {
		return nil, err
	}
	from := unit.Status
	if err := fn(unit); err != nil {
		return nil, err
	}
	if err := w.repos.Units().SaveWithLock(w.ctx, unit); err != nil {
		return nil, err
	}
	w.t.Track(unit)
	level, err := appshared.ApplyUnitStatusChange(w.ctx, w.repos, unit, from, w.stamp)
	if err != nil {
		return nil, err
	}
	if level != nil {
		w.t.Track(level)
	}
	return unit, nil
}

// releaseLine gives back the stock a line holds and clears its marker
func (w stockWork) releaseLine(h *trade.TransactionHeader, line *trade.TransactionLine) error {
	if !line.Reserved || line.ItemID == nil {
		return nil
	}
	if err := w.release(*line.ItemID, h.LocationID, line.Quantity.Int64()); err != nil {
		return err
	}
	_, err := h.ReleaseLineReservation(line.ID, w.stamp)
	return err
}

// assignUnits picks qty bookable units of an item at a location, or checks
// the explicitly requested ones. Units already booked on open transactions
// or earlier in the same request are never handed out twice.
func (w stockWork) assignUnits(itemID, locationID uuid.UUID, qty int64, explicit []uuid.UUID, taken map[uuid.UUID]bool) ([]inventory.InventoryUnit, error) {
	booked, err := w.repos.Transactions().FindOpenUnitAssignments(w.ctx, itemID)
	if err != nil {
		return nil, err
	}
	blocked := make(map[uuid.UUID]bool, len(booked)+len(taken))
	for _, id := range booked {
		blocked[id] = true
	}
	for id := range taken {
		blocked[id] = true
	}

	if len(explicit) > 0 {
		units, err := w.repos.Units().FindByIDs(w.ctx, explicit)
		if err != nil {
			return nil, err
		}
		found := make(map[uuid.UUID]bool, len(units))
		for _, u := range units {
			found[u.ID] = true
			if u.ItemID != itemID {
				return nil, shared.NewValidationError("UNIT_ITEM_MISMATCH", "Unit "+u.Code+" belongs to another item")
			}
			if u.LocationID != locationID {
				return nil, shared.NewValidationError("UNIT_LOCATION_MISMATCH", "Unit "+u.Code+" is at another location")
			}
			if u.Status != inventory.UnitStatusAvailable {
				return nil, shared.NewValidationError("UNIT_NOT_AVAILABLE", "Unit "+u.Code+" is "+string(u.Status))
			}
			if blocked[u.ID] {
				return nil, shared.NewConflictError("UNIT_ALREADY_BOOKED", "Unit "+u.Code+" is already booked")
			}
		}
		for _, id := range explicit {
			if !found[id] {
				return nil, shared.NewNotFoundError("INVENTORY_UNIT", id)
			}
		}
		for _, u := range units {
			taken[u.ID] = true
		}
		return units, nil
	}

	exclude := make([]uuid.UUID, 0, len(blocked))
	for id := range blocked {
		exclude = append(exclude, id)
	}
	units, err := w.repos.Units().FindAvailable(w.ctx, itemID, locationID, exclude, int(qty))
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		taken[u.ID] = true
	}
	return units, nil
}

func uniqueIDs(ids []uuid.UUID) bool {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}
