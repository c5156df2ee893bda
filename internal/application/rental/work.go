package rental

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
)

// work bundles what a return operation needs inside one unit of work
type work struct {
	ctx   context.Context
	repos appshared.TransactionalRepositories
	t     *appshared.Tracker
	stamp shared.Stamp
}

// unit applies fn to a locked unit and keeps stock levels in step. A unit
// that becomes AVAILABLE counts at whatever location fn left it at.
func (w work) unit(id uuid.UUID, fn func(*inventory.InventoryUnit) error) (*inventory.InventoryUnit, error) {
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

// header loads the rental transaction of a return under lock
func (w work) header(id uuid.UUID) (*trade.TransactionHeader, error) {
	return w.repos.Transactions().FindByIDForUpdate(w.ctx, id)
}

func (w work) saveHeader(h *trade.TransactionHeader) error {
	if err := w.repos.Transactions().SaveWithLock(w.ctx, h); err != nil {
		return err
	}
	w.t.Track(h)
	return nil
}

// dailyRates caches item daily rates for one operation
type dailyRates struct {
	ctx   context.Context
	items inventory.ItemRepository
	cache map[uuid.UUID]*inventory.Item
}

func newDailyRates(ctx context.Context, items inventory.ItemRepository) *dailyRates {
	return &dailyRates{ctx: ctx, items: items, cache: make(map[uuid.UUID]*inventory.Item)}
}

func (d *dailyRates) item(id uuid.UUID) (*inventory.Item, error) {
	if item, ok := d.cache[id]; ok {
		return item, nil
	}
	item, err := d.items.FindByID(d.ctx, id)
	if err != nil {
		return nil, err
	}
	d.cache[id] = item
	return item, nil
}

// returnLineInput maps a unit request onto the rental line it was booked on
func returnLineInput(h *trade.TransactionHeader, req ReturnUnitRequest, rates *dailyRates) (rental.ReturnLineInput, error) {
	tl, err := h.LineForUnit(req.InventoryUnitID)
	if err != nil {
		return rental.ReturnLineInput{}, err
	}
	if tl.ItemID == nil || !tl.IsRentalProduct() {
		return rental.ReturnLineInput{}, shared.NewValidationError("NOT_A_RENTAL_LINE", "Unit is not on a rental line")
	}
	remaining := tl.RemainingQuantity()
	if remaining == 0 {
		return rental.ReturnLineInput{}, shared.NewValidationError("UNIT_ALREADY_RETURNED", "Unit was already returned")
	}
	qty := req.ReturnedQuantity
	if qty == 0 {
		qty = remaining
	}
	if qty > remaining {
		return rental.ReturnLineInput{}, shared.NewValidationError("RETURN_EXCEEDS_REMAINING", "Returned quantity exceeds the quantity still out")
	}
	item, err := rates.item(*tl.ItemID)
	if err != nil {
		return rental.ReturnLineInput{}, err
	}
	lineID := tl.ID
	return rental.ReturnLineInput{
		InventoryUnitID:   req.InventoryUnitID,
		TransactionLineID: &lineID,
		ItemID:            *tl.ItemID,
		OriginalQuantity:  remaining,
		ReturnedQuantity:  qty,
		Condition:         conditionPtr(req.Condition),
		DamageLevel:       rental.DamageLevel(req.DamageLevel),
		DamageDescription: req.DamageDescription,
		DailyRate:         item.DailyRate(),
		LateFeeWaived:     req.LateFeeWaived,
		Notes:             req.Notes,
	}, nil
}
