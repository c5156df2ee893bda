package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// AuditEntityStock names stock levels in the audit log
const AuditEntityStock = "STOCK_LEVEL"

// StockLevel holds the quantity counters of one item at one location.
// QuantityAvailable always equals QuantityOnHand - QuantityReserved; every
// mutator maintains it and rejects changes that would break it.
type StockLevel struct {
	shared.BaseAggregateRoot
	ItemID            uuid.UUID
	LocationID        uuid.UUID
	QuantityOnHand    valueobject.Quantity
	QuantityAvailable valueobject.Quantity
	QuantityReserved  valueobject.Quantity
	QuantityOnOrder   valueobject.Quantity
	MinimumLevel      valueobject.Quantity
	MaximumLevel      *valueobject.Quantity
	ReorderPoint      valueobject.Quantity
	IsActive          bool
}

// NewStockLevel creates an empty stock level for an (item, location) pair
func NewStockLevel(itemID, locationID uuid.UUID, s shared.Stamp) (*StockLevel, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	return &StockLevel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(s),
		ItemID:            itemID,
		LocationID:        locationID,
		IsActive:          true,
	}, nil
}

func (l *StockLevel) ensureActive() error {
	if !l.IsActive {
		return shared.NewValidationError("STOCK_LEVEL_INACTIVE", "Stock level is deactivated")
	}
	return nil
}

// AdjustQuantity changes on-hand by delta. It fails when on-hand would go
// negative or below the reserved quantity; state is unchanged on failure.
// A zero delta changes nothing and raises no event.
func (l *StockLevel) AdjustQuantity(delta int64, reason string, s shared.Stamp) error {
	if err := l.ensureActive(); err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}
	onHand, err := l.QuantityOnHand.Add(delta)
	if err != nil {
		return shared.NewValidationError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Adjustment of %d would make on-hand quantity negative (on hand %s)", delta, l.QuantityOnHand))
	}
	available, err := onHand.Sub(l.QuantityReserved.Int64())
	if err != nil {
		return shared.NewValidationError("RESERVED_STOCK",
			fmt.Sprintf("Adjustment of %d would leave on-hand below reserved quantity %s", delta, l.QuantityReserved))
	}
	l.QuantityOnHand = onHand
	l.QuantityAvailable = available
	l.Mutated(AuditEntityStock, "QUANTITY_ADJUSTED", fmt.Sprintf("%+d %s", delta, reason), s)
	l.AddDomainEvent(NewStockAdjustedEvent(l, delta, reason, s))
	l.checkThreshold(s)
	return nil
}

// Reserve moves qty from available to reserved
func (l *StockLevel) Reserve(qty int64, s shared.Stamp) error {
	if err := l.ensureActive(); err != nil {
		return err
	}
	if qty < 0 {
		return shared.NewValidationError("INVALID_QUANTITY", "Reservation quantity cannot be negative")
	}
	available, err := l.QuantityAvailable.Sub(qty)
	if err != nil {
		return shared.NewValidationError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Cannot reserve %d; only %s available", qty, l.QuantityAvailable))
	}
	reserved, err := l.QuantityReserved.Add(qty)
	if err != nil {
		return shared.NewValidationError("INVALID_QUANTITY", err.Error())
	}
	l.QuantityAvailable = available
	l.QuantityReserved = reserved
	l.Mutated(AuditEntityStock, "RESERVED", fmt.Sprintf("%d", qty), s)
	l.AddDomainEvent(NewStockReservedEvent(l, qty, s))
	return nil
}

// ReleaseReservation reverses Reserve
func (l *StockLevel) ReleaseReservation(qty int64, s shared.Stamp) error {
	if err := l.ensureActive(); err != nil {
		return err
	}
	if qty < 0 {
		return shared.NewValidationError("INVALID_QUANTITY", "Release quantity cannot be negative")
	}
	reserved, err := l.QuantityReserved.Sub(qty)
	if err != nil {
		return shared.NewValidationError("OVER_RELEASE",
			fmt.Sprintf("Cannot release %d; only %s reserved", qty, l.QuantityReserved))
	}
	available, err := l.QuantityAvailable.Add(qty)
	if err != nil {
		return shared.NewValidationError("INVALID_QUANTITY", err.Error())
	}
	l.QuantityReserved = reserved
	l.QuantityAvailable = available
	l.Mutated(AuditEntityStock, "RESERVATION_RELEASED", fmt.Sprintf("%d", qty), s)
	l.AddDomainEvent(NewStockReleasedEvent(l, qty, s))
	return nil
}

// RecordOnOrder changes the on-order counter by delta
func (l *StockLevel) RecordOnOrder(delta int64, s shared.Stamp) error {
	if err := l.ensureActive(); err != nil {
		return err
	}
	onOrder, err := l.QuantityOnOrder.Add(delta)
	if err != nil {
		return shared.NewValidationError("INVALID_QUANTITY", "On-order quantity cannot be negative")
	}
	l.QuantityOnOrder = onOrder
	l.Mutated(AuditEntityStock, "ON_ORDER_CHANGED", fmt.Sprintf("%+d", delta), s)
	return nil
}

// UpdateLevels replaces the thresholds
func (l *StockLevel) UpdateLevels(minimum int64, maximum *int64, reorderPoint int64, s shared.Stamp) error {
	if err := l.ensureActive(); err != nil {
		return err
	}
	minQ, err := valueobject.NewQuantity(minimum)
	if err != nil {
		return shared.NewValidationError("INVALID_LEVEL", "Minimum level cannot be negative")
	}
	reorder, err := valueobject.NewQuantity(reorderPoint)
	if err != nil {
		return shared.NewValidationError("INVALID_LEVEL", "Reorder point cannot be negative")
	}
	var maxQ *valueobject.Quantity
	if maximum != nil {
		q, err := valueobject.NewQuantity(*maximum)
		if err != nil {
			return shared.NewValidationError("INVALID_LEVEL", "Maximum level cannot be negative")
		}
		if q.Int64() < minimum {
			return shared.NewValidationError("INVALID_LEVEL", "Maximum level must be greater than or equal to minimum level")
		}
		maxQ = &q
	}
	l.MinimumLevel = minQ
	l.MaximumLevel = maxQ
	l.ReorderPoint = reorder
	l.Mutated(AuditEntityStock, "LEVELS_UPDATED", "", s)
	return nil
}

// Deactivate soft-deactivates the level; it is never hard-deleted
func (l *StockLevel) Deactivate(s shared.Stamp) error {
	if err := l.ensureActive(); err != nil {
		return err
	}
	if !l.QuantityReserved.IsZero() {
		return shared.NewValidationError("RESERVED_STOCK", "Cannot deactivate a stock level with reservations")
	}
	l.IsActive = false
	l.Mutated(AuditEntityStock, "DEACTIVATED", "", s)
	return nil
}

// IsBelowMinimum compares on-hand to the minimum level
func (l *StockLevel) IsBelowMinimum() bool {
	return l.QuantityOnHand.LessThan(l.MinimumLevel.Int64())
}

// IsAboveMaximum compares on-hand to the maximum level, when one is set
func (l *StockLevel) IsAboveMaximum() bool {
	return l.MaximumLevel != nil && l.QuantityOnHand.Int64() > l.MaximumLevel.Int64()
}

// NeedsReorder reports on-hand at or below the reorder point
func (l *StockLevel) NeedsReorder() bool {
	return !l.ReorderPoint.IsZero() && l.QuantityOnHand.Int64() <= l.ReorderPoint.Int64()
}

func (l *StockLevel) checkThreshold(s shared.Stamp) {
	if l.NeedsReorder() || l.IsBelowMinimum() {
		l.AddDomainEvent(NewStockBelowThresholdEvent(l, s))
	}
}
