package rental

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// AuditEntityReturnLine names return lines in the audit log
const AuditEntityReturnLine = "RETURN_LINE"

// ReturnLine records one unit coming back on a rental return
type ReturnLine struct {
	shared.BaseEntity
	ReturnID          uuid.UUID
	LineNumber        int
	InventoryUnitID   uuid.UUID
	TransactionLineID *uuid.UUID
	ItemID            uuid.UUID
	OriginalQuantity  valueobject.Quantity
	ReturnedQuantity  valueobject.Quantity
	Condition         *inventory.UnitCondition
	DamageLevel       DamageLevel
	DamageDescription string
	Status            LineStatus
	// DailyRate is the item's rate when the return was opened.
	DailyRate      valueobject.Money
	LateFee        valueobject.Money
	LateFeeWaived  bool
	DamageFee      valueobject.Money
	CleaningFee    valueobject.Money
	ReplacementFee valueobject.Money
	IsProcessed    bool
	ProcessedAt    *time.Time
	ProcessedBy    *string
	Notes          string
}

// ReturnLineInput carries the fields of a new return line
type ReturnLineInput struct {
	InventoryUnitID   uuid.UUID
	TransactionLineID *uuid.UUID
	ItemID            uuid.UUID
	OriginalQuantity  int64
	ReturnedQuantity  int64
	Condition         *inventory.UnitCondition
	DamageLevel       DamageLevel
	DamageDescription string
	DailyRate         valueobject.Money
	LateFeeWaived     bool
	Notes             string
}

func newReturnLine(returnID uuid.UUID, lineNumber int, in ReturnLineInput, s shared.Stamp) (*ReturnLine, error) {
	if in.InventoryUnitID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_UNIT", "Return line requires an inventory unit")
	}
	original, err := valueobject.NewQuantity(in.OriginalQuantity)
	if err != nil || original.IsZero() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Original quantity must be positive")
	}
	returned, err := valueobject.NewQuantity(in.ReturnedQuantity)
	if err != nil || returned.IsZero() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Returned quantity must be positive")
	}
	if returned.Int64() > original.Int64() {
		return nil, shared.NewValidationError("RETURN_EXCEEDS_ORIGINAL", "Returned quantity cannot exceed original quantity")
	}
	if in.DailyRate.IsNegative() {
		return nil, shared.NewValidationError("NEGATIVE_PRICE", "Daily rate cannot be negative")
	}
	level := in.DamageLevel
	if level == "" {
		level = DamageNone
	}
	if err := validateDamage(level, in.DamageDescription); err != nil {
		return nil, err
	}
	if in.Condition != nil && !in.Condition.IsValid() {
		return nil, shared.NewValidationError("INVALID_CONDITION", "Unknown unit condition: "+string(*in.Condition))
	}
	return &ReturnLine{
		BaseEntity:        shared.NewBaseEntity(s),
		ReturnID:          returnID,
		LineNumber:        lineNumber,
		InventoryUnitID:   in.InventoryUnitID,
		TransactionLineID: in.TransactionLineID,
		ItemID:            in.ItemID,
		OriginalQuantity:  original,
		ReturnedQuantity:  returned,
		Condition:         in.Condition,
		DamageLevel:       level,
		DamageDescription: strings.TrimSpace(in.DamageDescription),
		Status:            LinePending,
		DailyRate:         in.DailyRate,
		LateFee:           valueobject.Zero(),
		LateFeeWaived:     in.LateFeeWaived,
		DamageFee:         SuggestDamageFee(level, nil, nil),
		CleaningFee:       valueobject.Zero(),
		ReplacementFee:    valueobject.Zero(),
		Notes:             in.Notes,
	}, nil
}

func validateDamage(level DamageLevel, description string) error {
	if !level.IsValid() {
		return shared.NewValidationError("INVALID_DAMAGE_LEVEL", "Unknown damage level: "+string(level))
	}
	if level.IsDamaged() && strings.TrimSpace(description) == "" {
		return shared.NewValidationError("DAMAGE_DESCRIPTION_REQUIRED", "Damage description is required when damage is reported")
	}
	return nil
}

func nonNegative(code string, m valueobject.Money) error {
	if m.IsNegative() {
		return shared.NewValidationError(code, "Fee cannot be negative")
	}
	return nil
}

// DamageAssessment is the outcome of inspecting a returned unit
type DamageAssessment struct {
	Level               DamageLevel
	Description         string
	RepairEstimate      *valueobject.Money
	ReplacementEstimate *valueobject.Money
	CleaningFee         *valueobject.Money
	Condition           *inventory.UnitCondition
}

func (l *ReturnLine) assessDamage(a DamageAssessment) error {
	if err := validateDamage(a.Level, a.Description); err != nil {
		return err
	}
	for _, est := range []*valueobject.Money{a.RepairEstimate, a.ReplacementEstimate, a.CleaningFee} {
		if est != nil {
			if err := nonNegative("INVALID_FEE", *est); err != nil {
				return err
			}
		}
	}
	if a.Condition != nil && !a.Condition.IsValid() {
		return shared.NewValidationError("INVALID_CONDITION", "Unknown unit condition: "+string(*a.Condition))
	}
	l.DamageLevel = a.Level
	l.DamageDescription = strings.TrimSpace(a.Description)
	l.DamageFee = SuggestDamageFee(a.Level, a.RepairEstimate, a.ReplacementEstimate)
	if a.CleaningFee != nil {
		l.CleaningFee = *a.CleaningFee
	}
	if a.Condition != nil {
		l.Condition = a.Condition
	}
	return nil
}

func (l *ReturnLine) calculateLateFee(daysLate int) {
	l.LateFee = CalculateLateFee(l.ReturnedQuantity.Int64(), l.DailyRate, daysLate, l.LateFeeWaived)
}

func (l *ReturnLine) transition(target LineStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_LINE_STATUS", "Unknown return line status: "+string(target))
	}
	next, err := LineTransitions.Transition("RETURN_LINE", l.Status, target)
	if err != nil {
		return err
	}
	l.Status = next
	return nil
}

func (l *ReturnLine) appendNote(entry shared.AuditEntry) {
	if l.Notes == "" {
		l.Notes = entry.Render()
		return
	}
	l.Notes += "\n" + entry.Render()
}

// DamageCharges is damage + cleaning + replacement
func (l *ReturnLine) DamageCharges() valueobject.Money {
	return valueobject.Sum(l.DamageFee, l.CleaningFee, l.ReplacementFee)
}

// TotalCharges is every fee on the line
func (l *ReturnLine) TotalCharges() valueobject.Money {
	return l.DamageCharges().Add(l.LateFee)
}

// CanProcess reports whether the line is ready to be processed
func (l *ReturnLine) CanProcess() bool {
	return l.Status == LinePending || l.Status == LineInspected || l.Status == LineResolved
}

// UnitOutcome is the inventory status a processed unit should end in
func (l *ReturnLine) UnitOutcome() inventory.UnitStatus {
	switch l.DamageLevel {
	case DamageModerate, DamageMajor:
		return inventory.UnitStatusDamaged
	case DamageTotalLoss:
		return inventory.UnitStatusRetired
	}
	return inventory.UnitStatusAvailable
}
