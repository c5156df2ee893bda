package rental

import (
	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// Aggregate type constants
const (
	AggregateTypeReturn     = "RentalReturn"
	AggregateTypeInspection = "InspectionReport"
)

// Event type constants
const (
	EventTypeReturnOpened        = "ReturnOpened"
	EventTypeReturnStatusChanged = "ReturnStatusChanged"
	EventTypeReturnLineProcessed = "ReturnLineProcessed"
	EventTypeReturnFinalized     = "ReturnFinalized"
	EventTypeDepositReleased     = "DepositReleased"
	EventTypeInspectionCompleted = "InspectionCompleted"
)

// ReturnOpenedEvent is raised when a return is created
type ReturnOpenedEvent struct {
	shared.BaseDomainEvent
	Number        string     `json:"number"`
	TransactionID uuid.UUID  `json:"transaction_id"`
	Type          ReturnType `json:"return_type"`
	IsLate        bool       `json:"is_late"`
}

// NewReturnOpenedEvent creates a new ReturnOpenedEvent
func NewReturnOpenedEvent(r *RentalReturn, s shared.Stamp) *ReturnOpenedEvent {
	return &ReturnOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnOpened, AggregateTypeReturn, r.ID, s),
		Number:          r.Number,
		TransactionID:   r.TransactionID,
		Type:            r.Type,
		IsLate:          r.IsLate(),
	}
}

// ReturnStatusChangedEvent is raised on every return status change
type ReturnStatusChangedEvent struct {
	shared.BaseDomainEvent
	Number    string       `json:"number"`
	OldStatus ReturnStatus `json:"old_status"`
	NewStatus ReturnStatus `json:"new_status"`
}

// NewReturnStatusChangedEvent creates a new ReturnStatusChangedEvent
func NewReturnStatusChangedEvent(r *RentalReturn, old ReturnStatus, s shared.Stamp) *ReturnStatusChangedEvent {
	return &ReturnStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnStatusChanged, AggregateTypeReturn, r.ID, s),
		Number:          r.Number,
		OldStatus:       old,
		NewStatus:       r.Status,
	}
}

// ReturnLineProcessedEvent is raised when a returned unit is settled
type ReturnLineProcessedEvent struct {
	shared.BaseDomainEvent
	LineID          uuid.UUID         `json:"line_id"`
	InventoryUnitID uuid.UUID         `json:"inventory_unit_id"`
	DamageLevel     DamageLevel       `json:"damage_level"`
	LateFee         valueobject.Money `json:"late_fee"`
	DamageCharges   valueobject.Money `json:"damage_charges"`
}

// NewReturnLineProcessedEvent creates a new ReturnLineProcessedEvent
func NewReturnLineProcessedEvent(r *RentalReturn, l *ReturnLine, s shared.Stamp) *ReturnLineProcessedEvent {
	return &ReturnLineProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnLineProcessed, AggregateTypeReturn, r.ID, s),
		LineID:          l.ID,
		InventoryUnitID: l.InventoryUnitID,
		DamageLevel:     l.DamageLevel,
		LateFee:         l.LateFee,
		DamageCharges:   l.DamageCharges(),
	}
}

// ReturnFinalizedEvent is raised when a return is completed
type ReturnFinalizedEvent struct {
	shared.BaseDomainEvent
	Number         string            `json:"number"`
	TotalLateFee   valueobject.Money `json:"total_late_fee"`
	TotalDamageFee valueobject.Money `json:"total_damage_fee"`
	RefundAmount   valueobject.Money `json:"refund_amount"`
}

// NewReturnFinalizedEvent creates a new ReturnFinalizedEvent
func NewReturnFinalizedEvent(r *RentalReturn, s shared.Stamp) *ReturnFinalizedEvent {
	return &ReturnFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnFinalized, AggregateTypeReturn, r.ID, s),
		Number:          r.Number,
		TotalLateFee:    r.TotalLateFee,
		TotalDamageFee:  r.TotalDamageFee,
		RefundAmount:    r.TotalRefundAmount,
	}
}

// DepositReleasedEvent is raised when the deposit outcome is settled
type DepositReleasedEvent struct {
	shared.BaseDomainEvent
	Number   string            `json:"number"`
	Refund   valueobject.Money `json:"refund"`
	Withheld valueobject.Money `json:"withheld"`
}

// NewDepositReleasedEvent creates a new DepositReleasedEvent
func NewDepositReleasedEvent(r *RentalReturn, s shared.Stamp) *DepositReleasedEvent {
	return &DepositReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepositReleased, AggregateTypeReturn, r.ID, s),
		Number:          r.Number,
		Refund:          r.TotalRefundAmount,
		Withheld:        r.DepositWithheld,
	}
}

// InspectionCompletedEvent is raised when an inspection is closed
type InspectionCompletedEvent struct {
	shared.BaseDomainEvent
	ReturnID        uuid.UUID         `json:"return_id"`
	InventoryUnitID uuid.UUID         `json:"inventory_unit_id"`
	DamageLevel     DamageLevel       `json:"damage_level"`
	SuggestedFee    valueobject.Money `json:"suggested_fee"`
}

// NewInspectionCompletedEvent creates a new InspectionCompletedEvent
func NewInspectionCompletedEvent(r *InspectionReport, s shared.Stamp) *InspectionCompletedEvent {
	return &InspectionCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInspectionCompleted, AggregateTypeInspection, r.ID, s),
		ReturnID:        r.ReturnID,
		InventoryUnitID: r.InventoryUnitID,
		DamageLevel:     r.DamageLevel,
		SuggestedFee:    r.SuggestedDamageFee(),
	}
}
