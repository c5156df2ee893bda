package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// AuditEntityItem names items in the audit log
const AuditEntityItem = "ITEM"

// ItemType determines whether an item can be rented, sold or both
type ItemType string

const (
	ItemTypeRental ItemType = "RENTAL"
	ItemTypeSale   ItemType = "SALE"
	ItemTypeBoth   ItemType = "BOTH"
)

// IsValid checks if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeRental, ItemTypeSale, ItemTypeBoth:
		return true
	}
	return false
}

// String returns the string representation
func (t ItemType) String() string {
	return string(t)
}

// ItemStatus is the catalog lifecycle of an item
type ItemStatus string

const (
	ItemStatusActive       ItemStatus = "ACTIVE"
	ItemStatusInactive     ItemStatus = "INACTIVE"
	ItemStatusDiscontinued ItemStatus = "DISCONTINUED"
)

var itemStatusTransitions = shared.TransitionTable[ItemStatus]{
	ItemStatusActive:   {ItemStatusInactive, ItemStatusDiscontinued},
	ItemStatusInactive: {ItemStatusActive, ItemStatusDiscontinued},
}

// IsValid checks if the status is valid
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusActive, ItemStatusInactive, ItemStatusDiscontinued:
		return true
	}
	return false
}

// String returns the string representation
func (s ItemStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the item status may move to target
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	return itemStatusTransitions.Allows(s, target)
}

const maxItemCodeLength = 50

// ItemPricing groups the money fields that depend on the item type.
type ItemPricing struct {
	PurchasePrice      valueobject.Money
	RentalRatePerDay   *valueobject.Money
	RentalRatePerWeek  *valueobject.Money
	RentalRatePerMonth *valueobject.Money
	SalePrice          *valueobject.Money
	SecurityDeposit    valueobject.Money
}

// Item is a catalog entry. It owns inventory units and stock levels by
// reference (ItemID on those aggregates).
type Item struct {
	shared.BaseAggregateRoot
	Code                 string
	Name                 string
	Description          string
	Category             string
	Brand                string
	Type                 ItemType
	Status               ItemStatus
	Pricing              ItemPricing
	MinRentalDays        int
	MaxRentalDays        *int
	SerialNumberRequired bool
	WarrantyDays         int
	ReorderLevel         int64
	ReorderQuantity      int64
	IsActive             bool
}

// NewItemInput carries the fields needed to create an item
type NewItemInput struct {
	Code                 string
	Name                 string
	Description          string
	Category             string
	Brand                string
	Type                 ItemType
	Pricing              ItemPricing
	MinRentalDays        int
	MaxRentalDays        *int
	SerialNumberRequired bool
	WarrantyDays         int
	ReorderLevel         int64
	ReorderQuantity      int64
}

// NewItem validates the input and creates an ACTIVE item
func NewItem(in NewItemInput, s shared.Stamp) (*Item, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, shared.NewValidationError("INVALID_ITEM_CODE", "Item code cannot be empty")
	}
	if len(code) > maxItemCodeLength {
		return nil, shared.NewValidationError("INVALID_ITEM_CODE", "Item code cannot exceed 50 characters")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, shared.NewValidationError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if !in.Type.IsValid() {
		return nil, shared.NewValidationError("INVALID_ITEM_TYPE", "Item type must be RENTAL, SALE or BOTH")
	}
	if err := validatePricing(in.Type, in.Pricing); err != nil {
		return nil, err
	}
	if err := validateRentalTerms(in.MinRentalDays, in.MaxRentalDays); err != nil {
		return nil, err
	}
	if in.WarrantyDays < 0 || in.ReorderLevel < 0 || in.ReorderQuantity < 0 {
		return nil, shared.NewValidationError("INVALID_ITEM_SETTINGS", "Warranty days and reorder settings cannot be negative")
	}

	item := &Item{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(s),
		Code:                 code,
		Name:                 strings.TrimSpace(in.Name),
		Description:          in.Description,
		Category:             in.Category,
		Brand:                in.Brand,
		Type:                 in.Type,
		Status:               ItemStatusActive,
		Pricing:              in.Pricing,
		MinRentalDays:        in.MinRentalDays,
		MaxRentalDays:        in.MaxRentalDays,
		SerialNumberRequired: in.SerialNumberRequired,
		WarrantyDays:         in.WarrantyDays,
		ReorderLevel:         in.ReorderLevel,
		ReorderQuantity:      in.ReorderQuantity,
		IsActive:             true,
	}
	if item.MinRentalDays == 0 {
		item.MinRentalDays = 1
	}
	item.RecordAudit(AuditEntityItem, "CREATED", item.Code, s)
	item.AddDomainEvent(NewItemCreatedEvent(item, s))
	return item, nil
}

func validatePricing(t ItemType, p ItemPricing) error {
	nonNegative := func(m *valueobject.Money) bool { return m == nil || !m.IsNegative() }
	if p.PurchasePrice.IsNegative() || p.SecurityDeposit.IsNegative() ||
		!nonNegative(p.RentalRatePerDay) || !nonNegative(p.RentalRatePerWeek) ||
		!nonNegative(p.RentalRatePerMonth) || !nonNegative(p.SalePrice) {
		return shared.NewValidationError("NEGATIVE_PRICE", "Prices and deposits cannot be negative")
	}
	if (t == ItemTypeRental || t == ItemTypeBoth) && p.RentalRatePerDay == nil {
		return shared.NewValidationError("RENTAL_RATE_REQUIRED", "Rental items require a daily rental rate")
	}
	if (t == ItemTypeSale || t == ItemTypeBoth) && p.SalePrice == nil {
		return shared.NewValidationError("SALE_PRICE_REQUIRED", "Sale items require a sale price")
	}
	return nil
}

func validateRentalTerms(minDays int, maxDays *int) error {
	if minDays < 0 {
		return shared.NewValidationError("INVALID_RENTAL_DAYS", "Minimum rental days cannot be negative")
	}
	if maxDays != nil {
		if *maxDays < 1 {
			return shared.NewValidationError("INVALID_RENTAL_DAYS", "Maximum rental days must be at least 1")
		}
		if minDays > 0 && *maxDays < minDays {
			return shared.NewValidationError("INVALID_RENTAL_DAYS", "Maximum rental days must be greater than or equal to minimum rental days")
		}
	}
	return nil
}

// IsRentable reports whether new rentals may be booked for this item
func (i *Item) IsRentable() bool {
	return i.IsActive && i.Status == ItemStatusActive && (i.Type == ItemTypeRental || i.Type == ItemTypeBoth)
}

// IsSaleable reports whether the item may be sold
func (i *Item) IsSaleable() bool {
	return i.IsActive && i.Status == ItemStatusActive && (i.Type == ItemTypeSale || i.Type == ItemTypeBoth)
}

// AllowsRentalDays checks a rental length against the item's terms
func (i *Item) AllowsRentalDays(days int) error {
	if days < i.MinRentalDays {
		return shared.NewValidationError("RENTAL_TOO_SHORT", "Item "+i.Code+" requires a longer rental period")
	}
	if i.MaxRentalDays != nil && days > *i.MaxRentalDays {
		return shared.NewValidationError("RENTAL_TOO_LONG", "Item "+i.Code+" does not allow a rental period this long")
	}
	return nil
}

// DailyRate returns the daily rental rate, or zero when the item is not rentable
func (i *Item) DailyRate() valueobject.Money {
	if i.Pricing.RentalRatePerDay == nil {
		return valueobject.Zero()
	}
	return *i.Pricing.RentalRatePerDay
}

// UpdatePricing replaces the pricing after re-validating it against the type
func (i *Item) UpdatePricing(p ItemPricing, s shared.Stamp) error {
	if err := i.ensureMutable(); err != nil {
		return err
	}
	if err := validatePricing(i.Type, p); err != nil {
		return err
	}
	i.Pricing = p
	i.Mutated(AuditEntityItem, "PRICING_UPDATED", "", s)
	return nil
}

// UpdateRentalTerms changes min/max rental days
func (i *Item) UpdateRentalTerms(minDays int, maxDays *int, s shared.Stamp) error {
	if err := i.ensureMutable(); err != nil {
		return err
	}
	if err := validateRentalTerms(minDays, maxDays); err != nil {
		return err
	}
	i.MinRentalDays = minDays
	i.MaxRentalDays = maxDays
	i.Mutated(AuditEntityItem, "RENTAL_TERMS_UPDATED", "", s)
	return nil
}

// ChangeStatus moves the item along its catalog lifecycle
func (i *Item) ChangeStatus(target ItemStatus, s shared.Stamp) error {
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_ITEM_STATUS", "Unknown item status: "+string(target))
	}
	next, err := itemStatusTransitions.Transition("ITEM", i.Status, target)
	if err != nil {
		return err
	}
	old := i.Status
	i.Status = next
	i.Mutated(AuditEntityItem, "STATUS_CHANGED", string(old)+" -> "+string(next), s)
	i.AddDomainEvent(NewItemStatusChangedEvent(i, old, s))
	return nil
}

// Deactivate soft-deletes the item
func (i *Item) Deactivate(s shared.Stamp) error {
	if !i.IsActive {
		return shared.NewValidationError("ITEM_INACTIVE", "Item is already deactivated")
	}
	i.IsActive = false
	i.Mutated(AuditEntityItem, "DEACTIVATED", "", s)
	return nil
}

func (i *Item) ensureMutable() error {
	if !i.IsActive {
		return shared.NewValidationError("ITEM_INACTIVE", "Item "+i.Code+" is deactivated")
	}
	return nil
}

// ItemSnapshot is the subset of item data other aggregates copy.
type ItemSnapshot struct {
	ID        uuid.UUID
	Code      string
	Name      string
	DailyRate valueobject.Money
	Deposit   valueobject.Money
}

// Snapshot returns the fields rentals and returns copy at booking time
func (i *Item) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		ID:        i.ID,
		Code:      i.Code,
		Name:      i.Name,
		DailyRate: i.DailyRate(),
		Deposit:   i.Pricing.SecurityDeposit,
	}
}
