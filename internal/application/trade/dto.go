package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// LineRequest describes one transaction line
type LineRequest struct {
	Type               string             `json:"line_type" binding:"required,oneof=PRODUCT SERVICE FEE DISCOUNT TAX DEPOSIT LATE_FEE DAMAGE_FEE REFUND"`
	ItemID             *uuid.UUID         `json:"item_id"`
	InventoryUnitID    *uuid.UUID         `json:"inventory_unit_id"`
	Description        string             `json:"description" binding:"required,max=500"`
	Quantity           int64              `json:"quantity" binding:"min=0"`
	UnitPrice          valueobject.Money  `json:"unit_price"`
	DiscountPercentage *decimal.Decimal   `json:"discount_percentage"`
	DiscountAmount     *valueobject.Money `json:"discount_amount" binding:"omitempty,money"`
	TaxRate            *decimal.Decimal   `json:"tax_rate"`
	RentalPeriodValue  *int               `json:"rental_period_value" binding:"omitempty,min=1"`
	RentalPeriodUnit   *string            `json:"rental_period_unit" binding:"omitempty,oneof=HOUR DAY WEEK MONTH YEAR"`
	RentalStartDate    *time.Time         `json:"rental_start_date"`
	RentalEndDate      *time.Time         `json:"rental_end_date"`
	Notes              string             `json:"notes" binding:"max=2000"`
}

func (r LineRequest) toInput() trade.LineInput {
	in := trade.LineInput{
		Type:              trade.LineType(r.Type),
		ItemID:            r.ItemID,
		InventoryUnitID:   r.InventoryUnitID,
		Description:       r.Description,
		Quantity:          r.Quantity,
		UnitPrice:         r.UnitPrice,
		RentalPeriodValue: r.RentalPeriodValue,
		RentalStartDate:   r.RentalStartDate,
		RentalEndDate:     r.RentalEndDate,
		Notes:             r.Notes,
	}
	if r.DiscountPercentage != nil {
		in.DiscountPercentage = *r.DiscountPercentage
	}
	if r.DiscountAmount != nil {
		in.DiscountAmount = *r.DiscountAmount
	}
	if r.TaxRate != nil {
		in.TaxRate = *r.TaxRate
	}
	if r.RentalPeriodUnit != nil {
		unit := trade.RentalPeriodUnit(*r.RentalPeriodUnit)
		in.RentalPeriodUnit = &unit
	}
	return in
}

// CreateTransactionRequest opens a transaction with optional initial lines.
// Lines created this way hold no stock reservation; rentals and sales that
// should reserve stock use the booking and sale endpoints.
type CreateTransactionRequest struct {
	Type                   string           `json:"transaction_type" binding:"required,oneof=SALE RENTAL RETURN EXCHANGE REFUND ADJUSTMENT PURCHASE"`
	CustomerID             uuid.UUID        `json:"customer_id" binding:"required"`
	LocationID             uuid.UUID        `json:"location_id" binding:"required"`
	SalesPersonID          *uuid.UUID       `json:"sales_person_id"`
	ReferenceTransactionID *uuid.UUID       `json:"reference_transaction_id"`
	TaxRate                *decimal.Decimal `json:"tax_rate"`
	RentalStartDate        *time.Time       `json:"rental_start_date"`
	RentalEndDate          *time.Time       `json:"rental_end_date"`
	Lines                  []LineRequest    `json:"lines" binding:"dive"`
}

// UpdateTransactionRequest edits header details of an open transaction
type UpdateTransactionRequest struct {
	SalesPersonID          *uuid.UUID `json:"sales_person_id"`
	ReferenceTransactionID *uuid.UUID `json:"reference_transaction_id"`
	RentalStartDate        *time.Time `json:"rental_start_date"`
	RentalEndDate          *time.Time `json:"rental_end_date"`
	Notes                  string     `json:"notes" binding:"max=2000"`
}

// ChangeStatusRequest moves a header through its status table
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT PENDING CONFIRMED IN_PROGRESS COMPLETED CANCELLED REFUNDED"`
}

// PaymentRequest applies a payment
type PaymentRequest struct {
	Amount    valueobject.Money `json:"amount" binding:"money"`
	Method    string            `json:"payment_method" binding:"required,oneof=CASH CREDIT_CARD DEBIT_CARD BANK_TRANSFER CHECK STORE_CREDIT DEPOSIT OTHER"`
	Reference string            `json:"payment_reference" binding:"max=100"`
}

// RefundRequest refunds part of a completed transaction
type RefundRequest struct {
	Amount valueobject.Money `json:"amount" binding:"money"`
	Reason string            `json:"reason" binding:"required,max=500"`
}

// CancelRequest carries a cancellation reason
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// LineDiscountRequest applies a percentage or a fixed discount
type LineDiscountRequest struct {
	Percentage *decimal.Decimal   `json:"discount_percentage"`
	Amount     *valueobject.Money `json:"discount_amount" binding:"omitempty,money"`
}

// LineReturnRequest records returned quantity on a line
type LineReturnRequest struct {
	Quantity   int64      `json:"quantity" binding:"required,min=1"`
	ReturnDate *time.Time `json:"return_date"`
	Reason     string     `json:"reason" binding:"max=500"`
}

// RentalPeriodRequest moves a rental end date
type RentalPeriodRequest struct {
	RentalEndDate time.Time `json:"rental_end_date" binding:"required"`
}

// CompleteRentalReturnRequest closes an in-progress rental
type CompleteRentalReturnRequest struct {
	ActualReturnDate *time.Time `json:"actual_return_date"`
}

// BookingItem is one item requested on a rental booking. Either Quantity
// units are assigned automatically or UnitIDs names them explicitly.
type BookingItem struct {
	ItemID             uuid.UUID          `json:"item_id" binding:"required"`
	Quantity           int64              `json:"quantity" binding:"min=0"`
	UnitIDs            []uuid.UUID        `json:"unit_ids"`
	CustomDailyRate    *valueobject.Money `json:"custom_daily_rate" binding:"omitempty,money"`
	DiscountPercentage *decimal.Decimal   `json:"discount_percentage"`
}

// CreateBookingRequest books rental units for a period
type CreateBookingRequest struct {
	CustomerID      uuid.UUID        `json:"customer_id" binding:"required"`
	LocationID      uuid.UUID        `json:"location_id" binding:"required"`
	SalesPersonID   *uuid.UUID       `json:"sales_person_id"`
	RentalStartDate time.Time        `json:"rental_start_date" binding:"required"`
	RentalEndDate   time.Time        `json:"rental_end_date" binding:"required"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	// WaiveDeposit books without DEPOSIT lines
	WaiveDeposit bool          `json:"waive_deposit"`
	Items        []BookingItem `json:"items" binding:"required,min=1,dive"`
}

// ExtendRentalRequest moves the end of an in-progress rental, optionally
// paying toward the extended balance
type ExtendRentalRequest struct {
	NewEndDate time.Time       `json:"new_end_date" binding:"required"`
	Payment    *PaymentRequest `json:"payment"`
}

// SaleItem is one item requested on a sale
type SaleItem struct {
	ItemID             uuid.UUID          `json:"item_id" binding:"required"`
	Quantity           int64              `json:"quantity" binding:"min=0"`
	UnitIDs            []uuid.UUID        `json:"unit_ids"`
	CustomPrice        *valueobject.Money `json:"custom_price" binding:"omitempty,money"`
	DiscountPercentage *decimal.Decimal   `json:"discount_percentage"`
}

// CreateSaleRequest sells items from a location
type CreateSaleRequest struct {
	CustomerID    uuid.UUID        `json:"customer_id" binding:"required"`
	LocationID    uuid.UUID        `json:"location_id" binding:"required"`
	SalesPersonID *uuid.UUID       `json:"sales_person_id"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
	Items         []SaleItem       `json:"items" binding:"required,min=1,dive"`
}

// TransactionListFilter represents filter options for transaction lists
type TransactionListFilter struct {
	Type          string             `form:"transaction_type" binding:"omitempty,oneof=SALE RENTAL RETURN EXCHANGE REFUND ADJUSTMENT PURCHASE"`
	Status        string             `form:"status" binding:"omitempty,oneof=DRAFT PENDING CONFIRMED IN_PROGRESS COMPLETED CANCELLED REFUNDED"`
	PaymentStatus string             `form:"payment_status" binding:"omitempty,oneof=PENDING PAID PARTIALLY_PAID OVERDUE REFUNDED CANCELLED"`
	CustomerID    *uuid.UUID         `form:"-"`
	LocationID    *uuid.UUID         `form:"-"`
	SalesPersonID *uuid.UUID         `form:"-"`
	DateFrom      *time.Time         `form:"date_from" time_format:"2006-01-02"`
	DateTo        *time.Time         `form:"date_to" time_format:"2006-01-02"`
	MinAmount     *valueobject.Money `form:"min_amount"`
	MaxAmount     *valueobject.Money `form:"max_amount"`
	Page          int                `form:"page" binding:"omitempty,min=1"`
	PageSize      int                `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string             `form:"order_by"`
	OrderDir      string             `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OverdueFilter pages the overdue rental listing
type OverdueFilter struct {
	AsOf     *time.Time `form:"as_of" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TransactionLineResponse represents a line in API responses
type TransactionLineResponse struct {
	ID                 uuid.UUID         `json:"id"`
	LineNumber         int               `json:"line_number"`
	Type               string            `json:"line_type"`
	ItemID             *uuid.UUID        `json:"item_id,omitempty"`
	InventoryUnitID    *uuid.UUID        `json:"inventory_unit_id,omitempty"`
	Reserved           bool              `json:"reserved"`
	Description        string            `json:"description"`
	Quantity           int64             `json:"quantity"`
	UnitPrice          valueobject.Money `json:"unit_price"`
	DiscountPercentage decimal.Decimal   `json:"discount_percentage"`
	DiscountAmount     valueobject.Money `json:"discount_amount"`
	TaxRate            decimal.Decimal   `json:"tax_rate"`
	TaxAmount          valueobject.Money `json:"tax_amount"`
	LineTotal          valueobject.Money `json:"line_total"`
	RentalPeriodValue  *int              `json:"rental_period_value,omitempty"`
	RentalPeriodUnit   *string           `json:"rental_period_unit,omitempty"`
	RentalStartDate    *time.Time        `json:"rental_start_date,omitempty"`
	RentalEndDate      *time.Time        `json:"rental_end_date,omitempty"`
	RentalDays         int               `json:"rental_days,omitempty"`
	ReturnedQuantity   int64             `json:"returned_quantity"`
	RemainingQuantity  int64             `json:"remaining_quantity"`
	ReturnDate         *time.Time        `json:"return_date,omitempty"`
	Notes              string            `json:"notes,omitempty"`
}

// TransactionResponse represents a transaction with its lines
type TransactionResponse struct {
	ID                     uuid.UUID                 `json:"id"`
	Number                 string                    `json:"transaction_number"`
	Type                   string                    `json:"transaction_type"`
	Status                 string                    `json:"status"`
	PaymentStatus          string                    `json:"payment_status"`
	TransactionDate        time.Time                 `json:"transaction_date"`
	CustomerID             uuid.UUID                 `json:"customer_id"`
	LocationID             uuid.UUID                 `json:"location_id"`
	SalesPersonID          *uuid.UUID                `json:"sales_person_id,omitempty"`
	ReferenceTransactionID *uuid.UUID                `json:"reference_transaction_id,omitempty"`
	Subtotal               valueobject.Money         `json:"subtotal"`
	DiscountAmount         valueobject.Money         `json:"discount_amount"`
	TaxAmount              valueobject.Money         `json:"tax_amount"`
	TotalAmount            valueobject.Money         `json:"total_amount"`
	PaidAmount             valueobject.Money         `json:"paid_amount"`
	BalanceDue             valueobject.Money         `json:"balance_due"`
	DepositAmount          valueobject.Money         `json:"deposit_amount"`
	TaxRate                decimal.Decimal           `json:"tax_rate"`
	PaymentMethod          *string                   `json:"payment_method,omitempty"`
	PaymentReference       string                    `json:"payment_reference,omitempty"`
	RentalStartDate        *time.Time                `json:"rental_start_date,omitempty"`
	RentalEndDate          *time.Time                `json:"rental_end_date,omitempty"`
	ActualReturnDate       *time.Time                `json:"actual_return_date,omitempty"`
	RentalDays             int                       `json:"rental_days,omitempty"`
	AllowedTransitions     []string                  `json:"allowed_transitions"`
	Lines                  []TransactionLineResponse `json:"lines"`
	Notes                  string                    `json:"notes,omitempty"`
	CreatedAt              time.Time                 `json:"created_at"`
	UpdatedAt              time.Time                 `json:"updated_at"`
	CreatedBy              string                    `json:"created_by,omitempty"`
	UpdatedBy              string                    `json:"updated_by,omitempty"`
	Version                int                       `json:"version"`
}

// ToTransactionLineResponse converts a domain line
func ToTransactionLineResponse(l *trade.TransactionLine) TransactionLineResponse {
	resp := TransactionLineResponse{
		ID:                 l.ID,
		LineNumber:         l.LineNumber,
		Type:               string(l.Type),
		ItemID:             l.ItemID,
		InventoryUnitID:    l.InventoryUnitID,
		Reserved:           l.Reserved,
		Description:        l.Description,
		Quantity:           l.Quantity.Int64(),
		UnitPrice:          l.UnitPrice,
		DiscountPercentage: l.DiscountPercentage,
		DiscountAmount:     l.DiscountAmount,
		TaxRate:            l.TaxRate,
		TaxAmount:          l.TaxAmount,
		LineTotal:          l.LineTotal,
		RentalPeriodValue:  l.RentalPeriodValue,
		RentalStartDate:    l.RentalStartDate,
		RentalEndDate:      l.RentalEndDate,
		RentalDays:         l.RentalDays(),
		ReturnedQuantity:   l.ReturnedQuantity.Int64(),
		RemainingQuantity:  l.RemainingQuantity(),
		ReturnDate:         l.ReturnDate,
		Notes:              l.Notes,
	}
	if l.RentalPeriodUnit != nil {
		unit := string(*l.RentalPeriodUnit)
		resp.RentalPeriodUnit = &unit
	}
	return resp
}

// ToTransactionResponse converts a domain header with its lines
func ToTransactionResponse(h *trade.TransactionHeader) TransactionResponse {
	h.SortLines()
	lines := make([]TransactionLineResponse, len(h.Lines))
	for i := range h.Lines {
		lines[i] = ToTransactionLineResponse(&h.Lines[i])
	}
	targets := trade.StatusTransitions.Targets(h.Status)
	allowed := make([]string, len(targets))
	for i, t := range targets {
		allowed[i] = string(t)
	}
	resp := TransactionResponse{
		ID:                     h.ID,
		Number:                 h.Number,
		Type:                   string(h.Type),
		Status:                 string(h.Status),
		PaymentStatus:          string(h.PaymentStatus),
		TransactionDate:        h.TransactionDate,
		CustomerID:             h.CustomerID,
		LocationID:             h.LocationID,
		SalesPersonID:          h.SalesPersonID,
		ReferenceTransactionID: h.ReferenceTransactionID,
		Subtotal:               h.Subtotal,
		DiscountAmount:         h.DiscountAmount,
		TaxAmount:              h.TaxAmount,
		TotalAmount:            h.TotalAmount,
		PaidAmount:             h.PaidAmount,
		BalanceDue:             h.BalanceDue(),
		DepositAmount:          h.DepositAmount,
		TaxRate:                h.TaxRate,
		PaymentReference:       h.PaymentReference,
		RentalStartDate:        h.RentalStartDate,
		RentalEndDate:          h.RentalEndDate,
		ActualReturnDate:       h.ActualReturnDate,
		RentalDays:             h.RentalDays(),
		AllowedTransitions:     allowed,
		Lines:                  lines,
		Notes:                  h.Notes,
		CreatedAt:              h.CreatedAt,
		UpdatedAt:              h.UpdatedAt,
		CreatedBy:              h.CreatedBy,
		UpdatedBy:              h.UpdatedBy,
		Version:                h.Version,
	}
	if h.PaymentMethod != nil {
		method := string(*h.PaymentMethod)
		resp.PaymentMethod = &method
	}
	return resp
}

// ToTransactionResponses converts a slice of headers
func ToTransactionResponses(headers []trade.TransactionHeader) []TransactionResponse {
	out := make([]TransactionResponse, len(headers))
	for i := range headers {
		out[i] = ToTransactionResponse(&headers[i])
	}
	return out
}
