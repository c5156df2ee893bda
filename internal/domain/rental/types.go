package rental

import "github.com/rentalcore/backend/internal/domain/shared"

// ReturnStatus is the lifecycle state of a rental return
type ReturnStatus string

const (
	ReturnPending            ReturnStatus = "PENDING"
	ReturnInitiated          ReturnStatus = "INITIATED"
	ReturnInInspection       ReturnStatus = "IN_INSPECTION"
	ReturnPartiallyCompleted ReturnStatus = "PARTIALLY_COMPLETED"
	ReturnCompleted          ReturnStatus = "COMPLETED"
	ReturnCancelled          ReturnStatus = "CANCELLED"
)

// ReturnTransitions is the legal-transition table for rental returns
var ReturnTransitions = shared.TransitionTable[ReturnStatus]{
	ReturnPending:            {ReturnInitiated, ReturnCancelled},
	ReturnInitiated:          {ReturnInInspection, ReturnCancelled},
	ReturnInInspection:       {ReturnPartiallyCompleted, ReturnCompleted, ReturnCancelled},
	ReturnPartiallyCompleted: {ReturnInInspection, ReturnCompleted, ReturnCancelled},
}

// AllReturnStatuses lists every return status
var AllReturnStatuses = []ReturnStatus{
	ReturnPending, ReturnInitiated, ReturnInInspection,
	ReturnPartiallyCompleted, ReturnCompleted, ReturnCancelled,
}

// IsValid checks if the return status is valid
func (s ReturnStatus) IsValid() bool {
	for _, v := range AllReturnStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports COMPLETED and CANCELLED
func (s ReturnStatus) IsTerminal() bool {
	return ReturnTransitions.IsTerminal(s)
}

// ReturnType tells whether every rented unit came back
type ReturnType string

const (
	ReturnTypeFull    ReturnType = "FULL"
	ReturnTypePartial ReturnType = "PARTIAL"
)

// DamageLevel grades the damage found on a returned unit
type DamageLevel string

const (
	DamageNone      DamageLevel = "NONE"
	DamageMinor     DamageLevel = "MINOR"
	DamageModerate  DamageLevel = "MODERATE"
	DamageMajor     DamageLevel = "MAJOR"
	DamageTotalLoss DamageLevel = "TOTAL_LOSS"
)

// IsValid checks if the damage level is valid
func (d DamageLevel) IsValid() bool {
	switch d {
	case DamageNone, DamageMinor, DamageModerate, DamageMajor, DamageTotalLoss:
		return true
	}
	return false
}

// IsDamaged reports any level above NONE
func (d DamageLevel) IsDamaged() bool {
	return d != DamageNone && d != ""
}

// LineStatus is the processing state of a return line
type LineStatus string

const (
	LinePending   LineStatus = "PENDING"
	LineInspected LineStatus = "INSPECTED"
	LineProcessed LineStatus = "PROCESSED"
	LineDisputed  LineStatus = "DISPUTED"
	LineResolved  LineStatus = "RESOLVED"
)

// LineTransitions is the legal-transition table for return lines
var LineTransitions = shared.TransitionTable[LineStatus]{
	LinePending:   {LineInspected, LineDisputed},
	LineInspected: {LineProcessed, LineDisputed},
	LineDisputed:  {LineResolved},
	LineResolved:  {LineProcessed},
}

// AllLineStatuses lists every return line status
var AllLineStatuses = []LineStatus{LinePending, LineInspected, LineProcessed, LineDisputed, LineResolved}

// IsValid checks if the line status is valid
func (s LineStatus) IsValid() bool {
	for _, v := range AllLineStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// InspectionStatus is the lifecycle state of an inspection report
type InspectionStatus string

const (
	InspectionPending    InspectionStatus = "PENDING"
	InspectionInProgress InspectionStatus = "IN_PROGRESS"
	InspectionCompleted  InspectionStatus = "COMPLETED"
	InspectionFailed     InspectionStatus = "FAILED"
)

// InspectionTransitions is the legal-transition table for inspections.
// A failed inspection may be restarted, completed or failed again.
var InspectionTransitions = shared.TransitionTable[InspectionStatus]{
	InspectionPending:    {InspectionInProgress, InspectionCompleted, InspectionFailed},
	InspectionInProgress: {InspectionCompleted, InspectionFailed},
	InspectionFailed:     {InspectionInProgress, InspectionCompleted, InspectionFailed},
}

// AllInspectionStatuses lists every inspection status
var AllInspectionStatuses = []InspectionStatus{
	InspectionPending, InspectionInProgress, InspectionCompleted, InspectionFailed,
}

// InspectionType distinguishes check-out and check-in inspections
type InspectionType string

const (
	InspectionPreRental InspectionType = "PRE_RENTAL"
	InspectionReturn    InspectionType = "RETURN"
)

// IsValid checks if the inspection type is valid
func (t InspectionType) IsValid() bool {
	return t == InspectionPreRental || t == InspectionReturn
}
