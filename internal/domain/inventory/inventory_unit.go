package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// AuditEntityUnit names inventory units in the audit log
const AuditEntityUnit = "INVENTORY_UNIT"

// UnitStatus is the lifecycle state of a single tracked unit
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "AVAILABLE"
	UnitStatusRented      UnitStatus = "RENTED"
	UnitStatusSold        UnitStatus = "SOLD"
	UnitStatusMaintenance UnitStatus = "MAINTENANCE"
	UnitStatusDamaged     UnitStatus = "DAMAGED"
	UnitStatusRetired     UnitStatus = "RETIRED"
)

// UnitTransitions is the legal-transition table for inventory units.
// SOLD and RETIRED are terminal.
var UnitTransitions = shared.TransitionTable[UnitStatus]{
	UnitStatusAvailable:   {UnitStatusRented, UnitStatusSold, UnitStatusMaintenance, UnitStatusDamaged, UnitStatusRetired},
	UnitStatusRented:      {UnitStatusAvailable, UnitStatusMaintenance, UnitStatusDamaged},
	UnitStatusMaintenance: {UnitStatusAvailable, UnitStatusDamaged, UnitStatusRetired},
	UnitStatusDamaged:     {UnitStatusMaintenance, UnitStatusRetired},
}

// AllUnitStatuses lists every unit status
var AllUnitStatuses = []UnitStatus{
	UnitStatusAvailable, UnitStatusRented, UnitStatusSold,
	UnitStatusMaintenance, UnitStatusDamaged, UnitStatusRetired,
}

// IsValid checks if the status is valid
func (s UnitStatus) IsValid() bool {
	for _, v := range AllUnitStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// String returns the string representation
func (s UnitStatus) String() string {
	return string(s)
}

// CanTransitionTo checks the transition table
func (s UnitStatus) CanTransitionTo(target UnitStatus) bool {
	return UnitTransitions.Allows(s, target)
}

// IsTerminal reports SOLD and RETIRED
func (s UnitStatus) IsTerminal() bool {
	return UnitTransitions.IsTerminal(s)
}

// TransitionUnitStatus validates current -> target against the table.
func TransitionUnitStatus(current, target UnitStatus) (UnitStatus, error) {
	return UnitTransitions.Transition("UNIT", current, target)
}

// StockDelta is the change a transition makes to the on-hand counter of the
// unit's stock level, which counts AVAILABLE units.
func StockDelta(from, to UnitStatus) int64 {
	var delta int64
	if from == UnitStatusAvailable {
		delta--
	}
	if to == UnitStatusAvailable {
		delta++
	}
	return delta
}

// UnitCondition describes the physical state of a unit
type UnitCondition string

const (
	ConditionNew       UnitCondition = "NEW"
	ConditionExcellent UnitCondition = "EXCELLENT"
	ConditionGood      UnitCondition = "GOOD"
	ConditionFair      UnitCondition = "FAIR"
	ConditionPoor      UnitCondition = "POOR"
	ConditionDamaged   UnitCondition = "DAMAGED"
)

// IsValid checks if the condition is valid
func (c UnitCondition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged:
		return true
	}
	return false
}

// String returns the string representation
func (c UnitCondition) String() string {
	return string(c)
}

// InventoryUnit is one physically trackable instance of an item.
type InventoryUnit struct {
	shared.BaseAggregateRoot
	Code                 string
	SerialNumber         *string
	ItemID               uuid.UUID
	LocationID           uuid.UUID
	Status               UnitStatus
	Condition            UnitCondition
	PurchasePrice        valueobject.Money
	PurchaseDate         *time.Time
	WarrantyExpiry       *time.Time
	LastMaintenanceDate  *time.Time
	NextMaintenanceDate  *time.Time
	RentalCount          int
	CumulativeRentalDays int
	LastRentedAt         *time.Time
	IsActive             bool
}

// NewInventoryUnitInput carries the fields needed to create a unit
type NewInventoryUnitInput struct {
	Code           string
	SerialNumber   string
	ItemID         uuid.UUID
	LocationID     uuid.UUID
	Condition      UnitCondition
	PurchasePrice  valueobject.Money
	PurchaseDate   *time.Time
	WarrantyExpiry *time.Time
}

// NewInventoryUnit creates an AVAILABLE unit
func NewInventoryUnit(in NewInventoryUnitInput, s shared.Stamp) (*InventoryUnit, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, shared.NewValidationError("INVALID_UNIT_CODE", "Unit code cannot be empty")
	}
	if len(code) > maxItemCodeLength {
		return nil, shared.NewValidationError("INVALID_UNIT_CODE", "Unit code cannot exceed 50 characters")
	}
	if in.ItemID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if in.LocationID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if in.PurchasePrice.IsNegative() {
		return nil, shared.NewValidationError("NEGATIVE_PRICE", "Purchase price cannot be negative")
	}
	condition := in.Condition
	if condition == "" {
		condition = ConditionNew
	}
	if !condition.IsValid() {
		return nil, shared.NewValidationError("INVALID_CONDITION", "Unknown unit condition: "+string(condition))
	}

	unit := &InventoryUnit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(s),
		Code:              code,
		ItemID:            in.ItemID,
		LocationID:        in.LocationID,
		Status:            UnitStatusAvailable,
		Condition:         condition,
		PurchasePrice:     in.PurchasePrice,
		PurchaseDate:      in.PurchaseDate,
		WarrantyExpiry:    in.WarrantyExpiry,
		IsActive:          true,
	}
	if serial := strings.TrimSpace(in.SerialNumber); serial != "" {
		unit.SerialNumber = &serial
	}
	unit.RecordAudit(AuditEntityUnit, "RECEIVED", unit.Code, s)
	unit.AddDomainEvent(NewUnitReceivedEvent(unit, s))
	return unit, nil
}

// TransitionTo applies a raw status change through the table. Callers that
// need the helper semantics (rental statistics, maintenance date) should use
// the named operations instead.
func (u *InventoryUnit) TransitionTo(target UnitStatus, reason string, s shared.Stamp) error {
	if !u.IsActive {
		return shared.NewValidationError("UNIT_INACTIVE", "Unit "+u.Code+" is deactivated")
	}
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_UNIT_STATUS", "Unknown unit status: "+string(target))
	}
	next, err := TransitionUnitStatus(u.Status, target)
	if err != nil {
		return err
	}
	old := u.Status
	u.Status = next
	detail := string(old) + " -> " + string(next)
	if reason != "" {
		detail += " (" + reason + ")"
	}
	u.Mutated(AuditEntityUnit, "STATUS_CHANGED", detail, s)
	u.AddDomainEvent(NewUnitStatusChangedEvent(u, old, reason, s))
	return nil
}

func (u *InventoryUnit) requireStatus(op string, allowed ...UnitStatus) error {
	for _, st := range allowed {
		if u.Status == st {
			return nil
		}
	}
	return shared.NewInvalidTransitionError("UNIT", string(u.Status), op)
}

func (u *InventoryUnit) setCondition(c *UnitCondition) error {
	if c == nil {
		return nil
	}
	if !c.IsValid() {
		return shared.NewValidationError("INVALID_CONDITION", "Unknown unit condition: "+string(*c))
	}
	u.Condition = *c
	return nil
}

// RentOut moves an AVAILABLE unit to RENTED
func (u *InventoryUnit) RentOut(s shared.Stamp) error {
	if err := u.requireStatus("RENTED", UnitStatusAvailable); err != nil {
		return err
	}
	if err := u.TransitionTo(UnitStatusRented, "rented out", s); err != nil {
		return err
	}
	u.RentalCount++
	at := s.At
	u.LastRentedAt = &at
	return nil
}

// ReturnFromRent moves a RENTED unit back to AVAILABLE and records the
// rental length in the unit statistics.
func (u *InventoryUnit) ReturnFromRent(condition *UnitCondition, s shared.Stamp) error {
	if err := u.requireStatus("AVAILABLE", UnitStatusRented); err != nil {
		return err
	}
	if err := u.setCondition(condition); err != nil {
		return err
	}
	if u.LastRentedAt != nil {
		days := int(s.At.Sub(*u.LastRentedAt).Hours()/24) + 1
		if days > 0 {
			u.CumulativeRentalDays += days
		}
	}
	return u.TransitionTo(UnitStatusAvailable, "returned from rent", s)
}

// MarkAsSold moves an AVAILABLE unit to SOLD
func (u *InventoryUnit) MarkAsSold(s shared.Stamp) error {
	if err := u.requireStatus("SOLD", UnitStatusAvailable); err != nil {
		return err
	}
	return u.TransitionTo(UnitStatusSold, "sold", s)
}

// SendForMaintenance moves the unit to MAINTENANCE and stamps the
// maintenance date.
func (u *InventoryUnit) SendForMaintenance(reason string, s shared.Stamp) error {
	if err := u.requireStatus("MAINTENANCE", UnitStatusAvailable, UnitStatusRented, UnitStatusDamaged); err != nil {
		return err
	}
	if err := u.TransitionTo(UnitStatusMaintenance, reason, s); err != nil {
		return err
	}
	at := s.At
	u.LastMaintenanceDate = &at
	return nil
}

// ReturnFromMaintenance moves a MAINTENANCE unit back to AVAILABLE
func (u *InventoryUnit) ReturnFromMaintenance(condition *UnitCondition, nextMaintenance *time.Time, s shared.Stamp) error {
	if err := u.requireStatus("AVAILABLE", UnitStatusMaintenance); err != nil {
		return err
	}
	if err := u.setCondition(condition); err != nil {
		return err
	}
	u.NextMaintenanceDate = nextMaintenance
	return u.TransitionTo(UnitStatusAvailable, "maintenance complete", s)
}

// MarkAsDamaged records damage and sets the condition to DAMAGED
func (u *InventoryUnit) MarkAsDamaged(reason string, s shared.Stamp) error {
	if err := u.requireStatus("DAMAGED", UnitStatusAvailable, UnitStatusRented, UnitStatusMaintenance); err != nil {
		return err
	}
	if err := u.TransitionTo(UnitStatusDamaged, reason, s); err != nil {
		return err
	}
	u.Condition = ConditionDamaged
	return nil
}

// Retire takes the unit out of service permanently
func (u *InventoryUnit) Retire(reason string, s shared.Stamp) error {
	if err := u.requireStatus("RETIRED", UnitStatusAvailable, UnitStatusMaintenance, UnitStatusDamaged); err != nil {
		return err
	}
	return u.TransitionTo(UnitStatusRetired, reason, s)
}

// ChangeCondition updates the condition without a status change
func (u *InventoryUnit) ChangeCondition(c UnitCondition, s shared.Stamp) error {
	if err := u.setCondition(&c); err != nil {
		return err
	}
	u.Mutated(AuditEntityUnit, "CONDITION_CHANGED", string(c), s)
	return nil
}

// MoveLocation relocates an AVAILABLE or MAINTENANCE unit
func (u *InventoryUnit) MoveLocation(locationID uuid.UUID, s shared.Stamp) error {
	if locationID == uuid.Nil {
		return shared.NewValidationError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if u.Status != UnitStatusAvailable && u.Status != UnitStatusMaintenance {
		return shared.NewValidationError("UNIT_NOT_MOVABLE", "Only available or maintenance units can change location")
	}
	from := u.LocationID
	u.LocationID = locationID
	u.Mutated(AuditEntityUnit, "MOVED", from.String()+" -> "+locationID.String(), s)
	return nil
}

// Deactivate soft-deletes a unit that has left service
func (u *InventoryUnit) Deactivate(s shared.Stamp) error {
	if !u.Status.IsTerminal() {
		return shared.NewValidationError("UNIT_IN_SERVICE", "Only sold or retired units can be deactivated")
	}
	if !u.IsActive {
		return shared.NewValidationError("UNIT_INACTIVE", "Unit is already deactivated")
	}
	u.IsActive = false
	u.Mutated(AuditEntityUnit, "DEACTIVATED", "", s)
	return nil
}
