package inventory

import (
	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeItem          = "Item"
	AggregateTypeInventoryUnit = "InventoryUnit"
	AggregateTypeStockLevel    = "StockLevel"
)

// Event type constants
const (
	EventTypeItemCreated         = "ItemCreated"
	EventTypeItemStatusChanged   = "ItemStatusChanged"
	EventTypeUnitReceived        = "UnitReceived"
	EventTypeUnitStatusChanged   = "UnitStatusChanged"
	EventTypeStockAdjusted       = "StockAdjusted"
	EventTypeStockReserved       = "StockReserved"
	EventTypeStockReleased       = "StockReleased"
	EventTypeStockBelowThreshold = "StockBelowThreshold"
)

// ItemCreatedEvent is raised when a catalog item is created
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	Code string   `json:"code"`
	Type ItemType `json:"item_type"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *Item, s shared.Stamp) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID, s),
		Code:            item.Code,
		Type:            item.Type,
	}
}

// ItemStatusChangedEvent is raised when an item moves along its lifecycle
type ItemStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus ItemStatus `json:"old_status"`
	NewStatus ItemStatus `json:"new_status"`
}

// NewItemStatusChangedEvent creates a new ItemStatusChangedEvent
func NewItemStatusChangedEvent(item *Item, old ItemStatus, s shared.Stamp) *ItemStatusChangedEvent {
	return &ItemStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemStatusChanged, AggregateTypeItem, item.ID, s),
		OldStatus:       old,
		NewStatus:       item.Status,
	}
}

// UnitReceivedEvent is raised when a unit enters inventory
type UnitReceivedEvent struct {
	shared.BaseDomainEvent
	ItemID     uuid.UUID `json:"item_id"`
	LocationID uuid.UUID `json:"location_id"`
	Code       string    `json:"code"`
}

// NewUnitReceivedEvent creates a new UnitReceivedEvent
func NewUnitReceivedEvent(u *InventoryUnit, s shared.Stamp) *UnitReceivedEvent {
	return &UnitReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitReceived, AggregateTypeInventoryUnit, u.ID, s),
		ItemID:          u.ItemID,
		LocationID:      u.LocationID,
		Code:            u.Code,
	}
}

// UnitStatusChangedEvent is raised on every unit status transition
type UnitStatusChangedEvent struct {
	shared.BaseDomainEvent
	ItemID     uuid.UUID  `json:"item_id"`
	LocationID uuid.UUID  `json:"location_id"`
	OldStatus  UnitStatus `json:"old_status"`
	NewStatus  UnitStatus `json:"new_status"`
	Reason     string     `json:"reason,omitempty"`
}

// NewUnitStatusChangedEvent creates a new UnitStatusChangedEvent
func NewUnitStatusChangedEvent(u *InventoryUnit, old UnitStatus, reason string, s shared.Stamp) *UnitStatusChangedEvent {
	return &UnitStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitStatusChanged, AggregateTypeInventoryUnit, u.ID, s),
		ItemID:          u.ItemID,
		LocationID:      u.LocationID,
		OldStatus:       old,
		NewStatus:       u.Status,
		Reason:          reason,
	}
}

// StockAdjustedEvent is raised when on-hand quantity changes
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ItemID     uuid.UUID `json:"item_id"`
	LocationID uuid.UUID `json:"location_id"`
	Delta      int64     `json:"delta"`
	OnHand     int64     `json:"on_hand"`
	Reason     string    `json:"reason,omitempty"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(l *StockLevel, delta int64, reason string, s shared.Stamp) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStockLevel, l.ID, s),
		ItemID:          l.ItemID,
		LocationID:      l.LocationID,
		Delta:           delta,
		OnHand:          l.QuantityOnHand.Int64(),
		Reason:          reason,
	}
}

// StockReservedEvent is raised when quantity is reserved
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ItemID     uuid.UUID `json:"item_id"`
	LocationID uuid.UUID `json:"location_id"`
	Quantity   int64     `json:"quantity"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(l *StockLevel, qty int64, s shared.Stamp) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStockLevel, l.ID, s),
		ItemID:          l.ItemID,
		LocationID:      l.LocationID,
		Quantity:        qty,
	}
}

// StockReleasedEvent is raised when a reservation is released
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	ItemID     uuid.UUID `json:"item_id"`
	LocationID uuid.UUID `json:"location_id"`
	Quantity   int64     `json:"quantity"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(l *StockLevel, qty int64, s shared.Stamp) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, AggregateTypeStockLevel, l.ID, s),
		ItemID:          l.ItemID,
		LocationID:      l.LocationID,
		Quantity:        qty,
	}
}

// StockBelowThresholdEvent is raised when on-hand reaches the reorder point
// or drops below the minimum level
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ItemID       uuid.UUID `json:"item_id"`
	LocationID   uuid.UUID `json:"location_id"`
	OnHand       int64     `json:"on_hand"`
	MinimumLevel int64     `json:"minimum_level"`
	ReorderPoint int64     `json:"reorder_point"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(l *StockLevel, s shared.Stamp) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeStockLevel, l.ID, s),
		ItemID:          l.ItemID,
		LocationID:      l.LocationID,
		OnHand:          l.QuantityOnHand.Int64(),
		MinimumLevel:    l.MinimumLevel.Int64(),
		ReorderPoint:    l.ReorderPoint.Int64(),
	}
}
