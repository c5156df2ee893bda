package rental

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// ReturnUnitRequest is one unit coming back
type ReturnUnitRequest struct {
	InventoryUnitID   uuid.UUID `json:"inventory_unit_id" binding:"required"`
	ReturnedQuantity  int64     `json:"returned_quantity" binding:"omitempty,min=1"`
	Condition         *string   `json:"condition" binding:"omitempty,oneof=NEW EXCELLENT GOOD FAIR POOR DAMAGED"`
	DamageLevel       string    `json:"damage_level" binding:"omitempty,oneof=NONE MINOR MODERATE MAJOR TOTAL_LOSS"`
	DamageDescription string    `json:"damage_description" binding:"max=2000"`
	LateFeeWaived     bool      `json:"late_fee_waived"`
	Notes             string    `json:"notes" binding:"max=2000"`
}

// CreateReturnRequest opens a return against a rental transaction
type CreateReturnRequest struct {
	TransactionID uuid.UUID           `json:"transaction_id" binding:"required"`
	ReturnDate    *time.Time          `json:"return_date"`
	LocationID    *uuid.UUID          `json:"return_location_id"`
	Units         []ReturnUnitRequest `json:"units" binding:"required,min=1,dive"`
}

// UpdateReturnRequest edits an open return
type UpdateReturnRequest struct {
	ReturnDate *time.Time `json:"return_date"`
	LocationID *uuid.UUID `json:"return_location_id"`
	Notes      string     `json:"notes" binding:"max=2000"`
}

// ChangeReturnStatusRequest moves a return through its status table
type ChangeReturnStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING INITIATED IN_INSPECTION PARTIALLY_COMPLETED COMPLETED CANCELLED"`
}

// CancelReturnRequest carries the cancellation reason
type CancelReturnRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdateReturnLineRequest edits an unprocessed return line
type UpdateReturnLineRequest struct {
	ReturnedQuantity *int64             `json:"returned_quantity" binding:"omitempty,min=1"`
	LateFeeWaived    *bool              `json:"late_fee_waived"`
	ReplacementFee   *valueobject.Money `json:"replacement_fee" binding:"omitempty,money"`
	CleaningFee      *valueobject.Money `json:"cleaning_fee" binding:"omitempty,money"`
	Notes            string             `json:"notes" binding:"max=2000"`
}

// ReturnLineStatusRequest moves a line through its status table
type ReturnLineStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING INSPECTED PROCESSED DISPUTED RESOLVED"`
	Reason string `json:"reason" binding:"max=500"`
}

// DamageAssessmentRequest records damage on a line
type DamageAssessmentRequest struct {
	DamageLevel         string             `json:"damage_level" binding:"required,oneof=NONE MINOR MODERATE MAJOR TOTAL_LOSS"`
	DamageDescription   string             `json:"damage_description" binding:"max=2000"`
	RepairEstimate      *valueobject.Money `json:"repair_estimate" binding:"omitempty,money"`
	ReplacementEstimate *valueobject.Money `json:"replacement_estimate" binding:"omitempty,money"`
	CleaningFee         *valueobject.Money `json:"cleaning_fee" binding:"omitempty,money"`
	Condition           *string            `json:"condition" binding:"omitempty,oneof=NEW EXCELLENT GOOD FAIR POOR DAMAGED"`
}

func (r DamageAssessmentRequest) toAssessment() rental.DamageAssessment {
	return rental.DamageAssessment{
		Level:               rental.DamageLevel(r.DamageLevel),
		Description:         r.DamageDescription,
		RepairEstimate:      r.RepairEstimate,
		ReplacementEstimate: r.ReplacementEstimate,
		CleaningFee:         r.CleaningFee,
		Condition:           conditionPtr(r.Condition),
	}
}

// ReleaseDepositRequest optionally overrides the released deposit
type ReleaseDepositRequest struct {
	Amount *valueobject.Money `json:"amount" binding:"omitempty,money"`
}

// EstimateUnit is one unit in a cost preview
type EstimateUnit struct {
	InventoryUnitID     uuid.UUID          `json:"inventory_unit_id" binding:"required"`
	DamageLevel         string             `json:"damage_level" binding:"omitempty,oneof=NONE MINOR MODERATE MAJOR TOTAL_LOSS"`
	RepairEstimate      *valueobject.Money `json:"repair_estimate" binding:"omitempty,money"`
	ReplacementEstimate *valueobject.Money `json:"replacement_estimate" binding:"omitempty,money"`
}

// EstimateRequest previews the costs of returning a rental on a date.
// Without units every outstanding unit is assumed back undamaged.
type EstimateRequest struct {
	TransactionID uuid.UUID      `json:"transaction_id" binding:"required"`
	ReturnDate    *time.Time     `json:"return_date"`
	Units         []EstimateUnit `json:"units" binding:"dive"`
}

// EstimateLine is the preview for one unit
type EstimateLine struct {
	InventoryUnitID uuid.UUID         `json:"inventory_unit_id"`
	Quantity        int64             `json:"quantity"`
	DailyRate       valueobject.Money `json:"daily_rate"`
	DamageLevel     string            `json:"damage_level"`
	LateFee         valueobject.Money `json:"late_fee"`
	DamageFee       valueobject.Money `json:"damage_fee"`
}

// EstimateResponse is a read-only cost preview
type EstimateResponse struct {
	TransactionID      uuid.UUID         `json:"transaction_id"`
	ReturnDate         time.Time         `json:"return_date"`
	ExpectedReturnDate time.Time         `json:"expected_return_date"`
	DaysLate           int               `json:"days_late"`
	TotalLateFee       valueobject.Money `json:"total_late_fee"`
	TotalDamageFee     valueobject.Money `json:"total_damage_fee"`
	DepositAmount      valueobject.Money `json:"deposit_amount"`
	EstimatedRefund    valueobject.Money `json:"estimated_refund"`
	Lines              []EstimateLine    `json:"lines"`
}

// BulkStatusRequest moves several returns to one status
type BulkStatusRequest struct {
	ReturnIDs []uuid.UUID `json:"return_ids" binding:"required,min=1,max=100"`
	Status    string      `json:"status" binding:"required,oneof=PENDING INITIATED IN_INSPECTION PARTIALLY_COMPLETED COMPLETED CANCELLED"`
}

// BulkLineRef names one line of one return
type BulkLineRef struct {
	ReturnID uuid.UUID `json:"return_id" binding:"required"`
	LineID   uuid.UUID `json:"line_id" binding:"required"`
}

// BulkProcessRequest processes several return lines
type BulkProcessRequest struct {
	Lines []BulkLineRef `json:"lines" binding:"required,min=1,max=100,dive"`
}

// BulkResult reports the outcome of one bulk entry
type BulkResult struct {
	ReturnID uuid.UUID  `json:"return_id"`
	LineID   *uuid.UUID `json:"line_id,omitempty"`
	Success  bool       `json:"success"`
	Code     string     `json:"code,omitempty"`
	Message  string     `json:"message,omitempty"`
}

// BulkResponse summarises a bulk operation
type BulkResponse struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []BulkResult `json:"results"`
}

// ReturnListFilter narrows return listings
type ReturnListFilter struct {
	Status        string     `form:"status"`
	TransactionID *uuid.UUID `form:"-"`
	CustomerID    *uuid.UUID `form:"-"`
	LocationID    *uuid.UUID `form:"-"`
	DamagedOnly   bool       `form:"damaged_only"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir"`
}

// ReturnLineResponse is the API view of a return line
type ReturnLineResponse struct {
	ID                uuid.UUID         `json:"id"`
	LineNumber        int               `json:"line_number"`
	InventoryUnitID   uuid.UUID         `json:"inventory_unit_id"`
	TransactionLineID *uuid.UUID        `json:"transaction_line_id,omitempty"`
	ItemID            uuid.UUID         `json:"item_id"`
	OriginalQuantity  int64             `json:"original_quantity"`
	ReturnedQuantity  int64             `json:"returned_quantity"`
	Condition         *string           `json:"condition,omitempty"`
	DamageLevel       string            `json:"damage_level"`
	DamageDescription string            `json:"damage_description,omitempty"`
	Status            string            `json:"status"`
	DailyRate         valueobject.Money `json:"daily_rate"`
	LateFee           valueobject.Money `json:"late_fee"`
	LateFeeWaived     bool              `json:"late_fee_waived"`
	DamageFee         valueobject.Money `json:"damage_fee"`
	CleaningFee       valueobject.Money `json:"cleaning_fee"`
	ReplacementFee    valueobject.Money `json:"replacement_fee"`
	TotalCharges      valueobject.Money `json:"total_charges"`
	IsProcessed       bool              `json:"is_processed"`
	ProcessedAt       *time.Time        `json:"processed_at,omitempty"`
	ProcessedBy       *string           `json:"processed_by,omitempty"`
	Notes             string            `json:"notes,omitempty"`
}

// ReturnResponse is the API view of a return
type ReturnResponse struct {
	ID                 uuid.UUID            `json:"id"`
	Number             string               `json:"return_number"`
	TransactionID      uuid.UUID            `json:"transaction_id"`
	CustomerID         uuid.UUID            `json:"customer_id"`
	LocationID         uuid.UUID            `json:"return_location_id"`
	ReturnDate         time.Time            `json:"return_date"`
	ExpectedReturnDate time.Time            `json:"expected_return_date"`
	IsLate             bool                 `json:"is_late"`
	DaysLate           int                  `json:"days_late"`
	Type               string               `json:"return_type"`
	Status             string               `json:"status"`
	AllowedTransitions []string             `json:"allowed_transitions"`
	ProcessedBy        *string              `json:"processed_by,omitempty"`
	TotalLateFee       valueobject.Money    `json:"total_late_fee"`
	TotalDamageFee     valueobject.Money    `json:"total_damage_fee"`
	DepositAmount      valueobject.Money    `json:"deposit_amount"`
	DepositRelease     valueobject.Money    `json:"deposit_release"`
	DepositWithheld    valueobject.Money    `json:"deposit_withheld"`
	TotalRefundAmount  valueobject.Money    `json:"total_refund_amount"`
	DepositReleasedAt  *time.Time           `json:"deposit_released_at,omitempty"`
	Lines              []ReturnLineResponse `json:"lines"`
	Version            int                  `json:"version"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// PendingLineResponse is a return line waiting to be processed
type PendingLineResponse struct {
	ReturnID     uuid.UUID          `json:"return_id"`
	ReturnNumber string             `json:"return_number"`
	Line         ReturnLineResponse `json:"line"`
}

// ToReturnLineResponse converts a return line
func ToReturnLineResponse(l *rental.ReturnLine) ReturnLineResponse {
	resp := ReturnLineResponse{
		ID:                l.ID,
		LineNumber:        l.LineNumber,
		InventoryUnitID:   l.InventoryUnitID,
		TransactionLineID: l.TransactionLineID,
		ItemID:            l.ItemID,
		OriginalQuantity:  l.OriginalQuantity.Int64(),
		ReturnedQuantity:  l.ReturnedQuantity.Int64(),
		DamageLevel:       string(l.DamageLevel),
		DamageDescription: l.DamageDescription,
		Status:            string(l.Status),
		DailyRate:         l.DailyRate,
		LateFee:           l.LateFee,
		LateFeeWaived:     l.LateFeeWaived,
		DamageFee:         l.DamageFee,
		CleaningFee:       l.CleaningFee,
		ReplacementFee:    l.ReplacementFee,
		TotalCharges:      l.TotalCharges(),
		IsProcessed:       l.IsProcessed,
		ProcessedAt:       l.ProcessedAt,
		ProcessedBy:       l.ProcessedBy,
		Notes:             l.Notes,
	}
	if l.Condition != nil {
		c := string(*l.Condition)
		resp.Condition = &c
	}
	return resp
}

// ToReturnResponse converts a return with its lines
func ToReturnResponse(r *rental.RentalReturn) ReturnResponse {
	lines := make([]ReturnLineResponse, 0, len(r.Lines))
	for i := range r.Lines {
		lines = append(lines, ToReturnLineResponse(&r.Lines[i]))
	}
	allowed := make([]string, 0)
	for _, s := range rental.ReturnTransitions.Targets(r.Status) {
		allowed = append(allowed, string(s))
	}
	return ReturnResponse{
		ID:                 r.ID,
		Number:             r.Number,
		TransactionID:      r.TransactionID,
		CustomerID:         r.CustomerID,
		LocationID:         r.LocationID,
		ReturnDate:         r.ReturnDate,
		ExpectedReturnDate: r.ExpectedReturnDate,
		IsLate:             r.IsLate(),
		DaysLate:           r.DaysLate(),
		Type:               string(r.Type),
		Status:             string(r.Status),
		AllowedTransitions: allowed,
		ProcessedBy:        r.ProcessedBy,
		TotalLateFee:       r.TotalLateFee,
		TotalDamageFee:     r.TotalDamageFee,
		DepositAmount:      r.DepositAmount,
		DepositRelease:     r.DepositRelease,
		DepositWithheld:    r.DepositWithheld,
		TotalRefundAmount:  r.TotalRefundAmount,
		DepositReleasedAt:  r.DepositReleasedAt,
		Lines:              lines,
		Version:            r.Version,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// ToReturnResponses converts a page of returns
func ToReturnResponses(returns []rental.RentalReturn) []ReturnResponse {
	out := make([]ReturnResponse, len(returns))
	for i := range returns {
		out[i] = ToReturnResponse(&returns[i])
	}
	return out
}

// CreateInspectionRequest opens an inspection of a returned unit
type CreateInspectionRequest struct {
	ReturnID        uuid.UUID  `json:"return_id" binding:"required"`
	InventoryUnitID uuid.UUID  `json:"inventory_unit_id" binding:"required"`
	InspectorID     string     `json:"inspector_id" binding:"max=100"`
	Type            string     `json:"inspection_type" binding:"omitempty,oneof=PRE_RENTAL RETURN"`
	InspectionDate  *time.Time `json:"inspection_date"`
}

// FindingsRequest replaces the findings of an inspection
type FindingsRequest struct {
	DamageLevel         string             `json:"damage_level" binding:"omitempty,oneof=NONE MINOR MODERATE MAJOR TOTAL_LOSS"`
	DamageDescription   string             `json:"damage_description" binding:"max=2000"`
	RepairEstimate      *valueobject.Money `json:"repair_estimate" binding:"omitempty,money"`
	ReplacementEstimate *valueobject.Money `json:"replacement_estimate" binding:"omitempty,money"`
	Condition           *string            `json:"condition" binding:"omitempty,oneof=NEW EXCELLENT GOOD FAIR POOR DAMAGED"`
	ChecklistNotes      *string            `json:"checklist_notes" binding:"omitempty,max=4000"`
}

// FailInspectionRequest carries the failure reason
type FailInspectionRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// EvidenceUploadRequest asks for an upload slot for a photo or document
type EvidenceUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
}

// EvidenceURLResponse is a presigned URL for an evidence object
type EvidenceURLResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InspectionResponse is the API view of an inspection report
type InspectionResponse struct {
	ID                  uuid.UUID          `json:"id"`
	ReturnID            uuid.UUID          `json:"return_id"`
	InventoryUnitID     uuid.UUID          `json:"inventory_unit_id"`
	InspectorID         string             `json:"inspector_id"`
	Type                string             `json:"inspection_type"`
	InspectionDate      time.Time          `json:"inspection_date"`
	Status              string             `json:"status"`
	DamageLevel         string             `json:"damage_level"`
	DamageDescription   string             `json:"damage_description,omitempty"`
	RepairEstimate      *valueobject.Money `json:"repair_estimate,omitempty"`
	ReplacementEstimate *valueobject.Money `json:"replacement_estimate,omitempty"`
	SuggestedDamageFee  valueobject.Money  `json:"suggested_damage_fee"`
	Condition           *string            `json:"condition,omitempty"`
	ChecklistNotes      string             `json:"checklist_notes,omitempty"`
	EvidenceKeys        []string           `json:"evidence_keys"`
	CompletedAt         *time.Time         `json:"completed_at,omitempty"`
	Version             int                `json:"version"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// ToInspectionResponse converts an inspection report
func ToInspectionResponse(r *rental.InspectionReport) InspectionResponse {
	resp := InspectionResponse{
		ID:                  r.ID,
		ReturnID:            r.ReturnID,
		InventoryUnitID:     r.InventoryUnitID,
		InspectorID:         r.InspectorID,
		Type:                string(r.Type),
		InspectionDate:      r.InspectionDate,
		Status:              string(r.Status),
		DamageLevel:         string(r.DamageLevel),
		DamageDescription:   r.DamageDescription,
		RepairEstimate:      r.RepairEstimate,
		ReplacementEstimate: r.ReplacementEstimate,
		SuggestedDamageFee:  r.SuggestedDamageFee(),
		ChecklistNotes:      r.ChecklistNotes,
		EvidenceKeys:        append([]string{}, r.EvidenceKeys...),
		CompletedAt:         r.CompletedAt,
		Version:             r.Version,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if r.Condition != nil {
		c := string(*r.Condition)
		resp.Condition = &c
	}
	return resp
}

func conditionPtr(s *string) *inventory.UnitCondition {
	if s == nil || *s == "" {
		return nil
	}
	c := inventory.UnitCondition(*s)
	return &c
}
