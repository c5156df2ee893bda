package rental

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// AuditEntityInspection names inspection reports in the audit log
const AuditEntityInspection = "INSPECTION"

const maxEvidenceKeys = 20

// InspectionReport is a condition inspection of one unit, tied to a return
type InspectionReport struct {
	shared.BaseAggregateRoot
	ReturnID            uuid.UUID
	InventoryUnitID     uuid.UUID
	InspectorID         string
	Type                InspectionType
	InspectionDate      time.Time
	Status              InspectionStatus
	DamageLevel         DamageLevel
	DamageDescription   string
	RepairEstimate      *valueobject.Money
	ReplacementEstimate *valueobject.Money
	Condition           *inventory.UnitCondition
	ChecklistNotes      string
	EvidenceKeys        []string
	CompletedAt         *time.Time
}

// NewInspectionInput carries the fields of a new inspection
type NewInspectionInput struct {
	ReturnID        uuid.UUID
	InventoryUnitID uuid.UUID
	InspectorID     string
	Type            InspectionType
	InspectionDate  time.Time
}

// NewInspectionReport creates a PENDING inspection with no findings
func NewInspectionReport(in NewInspectionInput, s shared.Stamp) (*InspectionReport, error) {
	if in.ReturnID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_RETURN", "Inspection requires a rental return")
	}
	if in.InventoryUnitID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_UNIT", "Inspection requires an inventory unit")
	}
	inspector := strings.TrimSpace(in.InspectorID)
	if inspector == "" {
		inspector = s.Actor
	}
	t := in.Type
	if t == "" {
		t = InspectionReturn
	}
	if !t.IsValid() {
		return nil, shared.NewValidationError("INVALID_INSPECTION_TYPE", "Unknown inspection type: "+string(t))
	}
	date := in.InspectionDate
	if date.IsZero() {
		date = s.At
	}
	r := &InspectionReport{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(s),
		ReturnID:          in.ReturnID,
		InventoryUnitID:   in.InventoryUnitID,
		InspectorID:       inspector,
		Type:              t,
		InspectionDate:    date,
		Status:            InspectionPending,
		DamageLevel:       DamageNone,
		EvidenceKeys:      make([]string, 0),
	}
	r.RecordAudit(AuditEntityInspection, "CREATED", string(t)+" by "+inspector, s)
	return r, nil
}

func (r *InspectionReport) transition(target InspectionStatus, detail string, s shared.Stamp) error {
	next, err := InspectionTransitions.Transition("INSPECTION", r.Status, target)
	if err != nil {
		return err
	}
	old := r.Status
	r.Status = next
	msg := string(old) + " -> " + string(next)
	if detail != "" {
		msg += ": " + detail
	}
	r.Mutated(AuditEntityInspection, "STATUS_CHANGED", msg, s)
	return nil
}

// Start moves the inspection to IN_PROGRESS
func (r *InspectionReport) Start(s shared.Stamp) error {
	return r.transition(InspectionInProgress, "", s)
}

// Findings is what an inspector records
type Findings struct {
	DamageLevel         DamageLevel
	DamageDescription   string
	RepairEstimate      *valueobject.Money
	ReplacementEstimate *valueobject.Money
	Condition           *inventory.UnitCondition
	ChecklistNotes      *string
}

// UpdateFindings replaces the recorded findings of an unfinished inspection
func (r *InspectionReport) UpdateFindings(f Findings, s shared.Stamp) error {
	if r.Status == InspectionCompleted {
		return shared.NewValidationError("INSPECTION_COMPLETED", "A completed inspection cannot be changed")
	}
	level := f.DamageLevel
	if level == "" {
		level = DamageNone
	}
	if err := validateDamage(level, f.DamageDescription); err != nil {
		return err
	}
	for _, est := range []*valueobject.Money{f.RepairEstimate, f.ReplacementEstimate} {
		if est != nil && est.IsNegative() {
			return shared.NewValidationError("INVALID_ESTIMATE", "Cost estimates cannot be negative")
		}
	}
	if f.Condition != nil && !f.Condition.IsValid() {
		return shared.NewValidationError("INVALID_CONDITION", "Unknown unit condition: "+string(*f.Condition))
	}
	r.DamageLevel = level
	r.DamageDescription = strings.TrimSpace(f.DamageDescription)
	r.RepairEstimate = f.RepairEstimate
	r.ReplacementEstimate = f.ReplacementEstimate
	r.Condition = f.Condition
	if f.ChecklistNotes != nil {
		r.ChecklistNotes = *f.ChecklistNotes
	}
	r.Mutated(AuditEntityInspection, "FINDINGS_UPDATED", string(level), s)
	return nil
}

// AttachEvidence records the storage key of a photo or document
func (r *InspectionReport) AttachEvidence(key string, s shared.Stamp) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return shared.NewValidationError("INVALID_EVIDENCE_KEY", "Evidence key cannot be empty")
	}
	if r.Status == InspectionCompleted {
		return shared.NewValidationError("INSPECTION_COMPLETED", "A completed inspection cannot be changed")
	}
	if len(r.EvidenceKeys) >= maxEvidenceKeys {
		return shared.NewValidationError("TOO_MUCH_EVIDENCE", fmt.Sprintf("At most %d evidence files per inspection", maxEvidenceKeys))
	}
	for _, k := range r.EvidenceKeys {
		if k == key {
			return nil
		}
	}
	r.EvidenceKeys = append(r.EvidenceKeys, key)
	r.Mutated(AuditEntityInspection, "EVIDENCE_ATTACHED", key, s)
	return nil
}

// HasEvidence reports whether key belongs to this inspection
func (r *InspectionReport) HasEvidence(key string) bool {
	for _, k := range r.EvidenceKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Complete closes the inspection
func (r *InspectionReport) Complete(s shared.Stamp) error {
	if r.Status == InspectionCompleted {
		return shared.NewInvalidTransitionError("INSPECTION", string(r.Status), string(InspectionCompleted))
	}
	if err := validateDamage(r.DamageLevel, r.DamageDescription); err != nil {
		return err
	}
	if err := r.transition(InspectionCompleted, "", s); err != nil {
		return err
	}
	at := s.At
	r.CompletedAt = &at
	r.AddDomainEvent(NewInspectionCompletedEvent(r, s))
	return nil
}

// Fail marks the inspection as failed with a reason
func (r *InspectionReport) Fail(reason string, s shared.Stamp) error {
	if r.Status == InspectionCompleted {
		return shared.NewInvalidTransitionError("INSPECTION", string(r.Status), string(InspectionFailed))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("REASON_REQUIRED", "A failure reason is required")
	}
	return r.transition(InspectionFailed, reason, s)
}

// SuggestedDamageFee prices the findings with the tier table
func (r *InspectionReport) SuggestedDamageFee() valueobject.Money {
	return SuggestDamageFee(r.DamageLevel, r.RepairEstimate, r.ReplacementEstimate)
}

// Assessment converts the findings into a return line assessment
func (r *InspectionReport) Assessment() DamageAssessment {
	return DamageAssessment{
		Level:               r.DamageLevel,
		Description:         r.DamageDescription,
		RepairEstimate:      r.RepairEstimate,
		ReplacementEstimate: r.ReplacementEstimate,
		Condition:           r.Condition,
	}
}
