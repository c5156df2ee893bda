package trade

import (
	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// AggregateTypeTransaction is the aggregate type for transaction events
const AggregateTypeTransaction = "Transaction"

// Event type constants
const (
	EventTypeTransactionCreated       = "TransactionCreated"
	EventTypeTransactionLinesChanged  = "TransactionLinesChanged"
	EventTypeTransactionStatusChanged = "TransactionStatusChanged"
	EventTypeTransactionCancelled     = "TransactionCancelled"
	EventTypePaymentApplied           = "PaymentApplied"
	EventTypeRefundProcessed          = "RefundProcessed"
)

// TransactionCreatedEvent is raised when a header is opened
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	Number     string          `json:"number"`
	Type       TransactionType `json:"transaction_type"`
	CustomerID uuid.UUID       `json:"customer_id"`
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(h *TransactionHeader, s shared.Stamp) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, h.ID, s),
		Number:          h.Number,
		Type:            h.Type,
		CustomerID:      h.CustomerID,
	}
}

// TransactionLinesChangedEvent carries the recomputed totals after a line change
type TransactionLinesChangedEvent struct {
	shared.BaseDomainEvent
	Number      string            `json:"number"`
	LineCount   int               `json:"line_count"`
	TotalAmount valueobject.Money `json:"total_amount"`
}

// NewTransactionLinesChangedEvent creates a new TransactionLinesChangedEvent
func NewTransactionLinesChangedEvent(h *TransactionHeader, s shared.Stamp) *TransactionLinesChangedEvent {
	return &TransactionLinesChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionLinesChanged, AggregateTypeTransaction, h.ID, s),
		Number:          h.Number,
		LineCount:       len(h.Lines),
		TotalAmount:     h.TotalAmount,
	}
}

// TransactionStatusChangedEvent is raised on every header status change
type TransactionStatusChangedEvent struct {
	shared.BaseDomainEvent
	Number    string            `json:"number"`
	Type      TransactionType   `json:"transaction_type"`
	OldStatus TransactionStatus `json:"old_status"`
	NewStatus TransactionStatus `json:"new_status"`
}

// NewTransactionStatusChangedEvent creates a new TransactionStatusChangedEvent
func NewTransactionStatusChangedEvent(h *TransactionHeader, old TransactionStatus, s shared.Stamp) *TransactionStatusChangedEvent {
	return &TransactionStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionStatusChanged, AggregateTypeTransaction, h.ID, s),
		Number:          h.Number,
		Type:            h.Type,
		OldStatus:       old,
		NewStatus:       h.Status,
	}
}

// TransactionCancelledEvent is raised when a header is cancelled
type TransactionCancelledEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// NewTransactionCancelledEvent creates a new TransactionCancelledEvent
func NewTransactionCancelledEvent(h *TransactionHeader, reason string, s shared.Stamp) *TransactionCancelledEvent {
	return &TransactionCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCancelled, AggregateTypeTransaction, h.ID, s),
		Number:          h.Number,
		Reason:          reason,
	}
}

// PaymentAppliedEvent is raised when a payment is recorded
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	Number        string            `json:"number"`
	Amount        valueobject.Money `json:"amount"`
	Method        PaymentMethod     `json:"method"`
	PaidAmount    valueobject.Money `json:"paid_amount"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(h *TransactionHeader, amount valueobject.Money, method PaymentMethod, s shared.Stamp) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeTransaction, h.ID, s),
		Number:          h.Number,
		Amount:          amount,
		Method:          method,
		PaidAmount:      h.PaidAmount,
		PaymentStatus:   h.PaymentStatus,
	}
}

// RefundProcessedEvent is raised when money is returned to the customer
type RefundProcessedEvent struct {
	shared.BaseDomainEvent
	Number string            `json:"number"`
	Amount valueobject.Money `json:"amount"`
	Reason string            `json:"reason"`
}

// NewRefundProcessedEvent creates a new RefundProcessedEvent
func NewRefundProcessedEvent(h *TransactionHeader, amount valueobject.Money, reason string, s shared.Stamp) *RefundProcessedEvent {
	return &RefundProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundProcessed, AggregateTypeTransaction, h.ID, s),
		Number:          h.Number,
		Amount:          amount,
		Reason:          reason,
	}
}
