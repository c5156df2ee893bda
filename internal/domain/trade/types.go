package trade

import "github.com/rentalcore/backend/internal/domain/shared"

// TransactionType classifies a commercial event
type TransactionType string

const (
	TransactionTypeSale       TransactionType = "SALE"
	TransactionTypeRental     TransactionType = "RENTAL"
	TransactionTypeReturn     TransactionType = "RETURN"
	TransactionTypeExchange   TransactionType = "EXCHANGE"
	TransactionTypeRefund     TransactionType = "REFUND"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	TransactionTypePurchase   TransactionType = "PURCHASE"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypeRental, TransactionTypeReturn, TransactionTypeExchange,
		TransactionTypeRefund, TransactionTypeAdjustment, TransactionTypePurchase:
		return true
	}
	return false
}

// NumberPrefix is used when generating transaction numbers
func (t TransactionType) NumberPrefix() string {
	switch t {
	case TransactionTypeSale:
		return "SAL"
	case TransactionTypeRental:
		return "RNT"
	case TransactionTypeReturn:
		return "RTN"
	case TransactionTypeExchange:
		return "EXC"
	case TransactionTypeRefund:
		return "REF"
	case TransactionTypeAdjustment:
		return "ADJ"
	case TransactionTypePurchase:
		return "PUR"
	}
	return "TXN"
}

// TransactionStatus is the header lifecycle state
type TransactionStatus string

const (
	StatusDraft      TransactionStatus = "DRAFT"
	StatusPending    TransactionStatus = "PENDING"
	StatusConfirmed  TransactionStatus = "CONFIRMED"
	StatusInProgress TransactionStatus = "IN_PROGRESS"
	StatusCompleted  TransactionStatus = "COMPLETED"
	StatusCancelled  TransactionStatus = "CANCELLED"
	StatusRefunded   TransactionStatus = "REFUNDED"
)

// StatusTransitions is the legal-transition table for transaction headers
var StatusTransitions = shared.TransitionTable[TransactionStatus]{
	StatusDraft:      {StatusPending, StatusCancelled},
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusRefunded},
}

// AllTransactionStatuses lists every header status
var AllTransactionStatuses = []TransactionStatus{
	StatusDraft, StatusPending, StatusConfirmed, StatusInProgress,
	StatusCompleted, StatusCancelled, StatusRefunded,
}

// IsValid checks if the status is valid
func (s TransactionStatus) IsValid() bool {
	for _, v := range AllTransactionStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// String returns the string representation
func (s TransactionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks the transition table
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	return StatusTransitions.Allows(s, target)
}

// IsClosed reports statuses in which the header can no longer be edited
func (s TransactionStatus) IsClosed() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRefunded
}

// TransitionStatus validates current -> target against the table
func TransitionStatus(current, target TransactionStatus) (TransactionStatus, error) {
	return StatusTransitions.Transition("TRANSACTION", current, target)
}

// PaymentStatus tracks settlement of a header
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "PENDING"
	PaymentPaid          PaymentStatus = "PAID"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentOverdue       PaymentStatus = "OVERDUE"
	PaymentRefunded      PaymentStatus = "REFUNDED"
	PaymentCancelled     PaymentStatus = "CANCELLED"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentPartiallyPaid, PaymentOverdue, PaymentRefunded, PaymentCancelled:
		return true
	}
	return false
}

// PaymentMethod is how money was received
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodStoreCredit  PaymentMethod = "STORE_CREDIT"
	PaymentMethodDeposit      PaymentMethod = "DEPOSIT"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodBankTransfer,
		PaymentMethodCheck, PaymentMethodStoreCredit, PaymentMethodDeposit, PaymentMethodOther:
		return true
	}
	return false
}

// LineType classifies a transaction line
type LineType string

const (
	LineTypeProduct   LineType = "PRODUCT"
	LineTypeService   LineType = "SERVICE"
	LineTypeFee       LineType = "FEE"
	LineTypeDiscount  LineType = "DISCOUNT"
	LineTypeTax       LineType = "TAX"
	LineTypeDeposit   LineType = "DEPOSIT"
	LineTypeLateFee   LineType = "LATE_FEE"
	LineTypeDamageFee LineType = "DAMAGE_FEE"
	LineTypeRefund    LineType = "REFUND"
)

// IsValid checks if the line type is valid
func (t LineType) IsValid() bool {
	switch t {
	case LineTypeProduct, LineTypeService, LineTypeFee, LineTypeDiscount, LineTypeTax,
		LineTypeDeposit, LineTypeLateFee, LineTypeDamageFee, LineTypeRefund:
		return true
	}
	return false
}

// RequiresItem reports line types that must reference an item
func (t LineType) RequiresItem() bool {
	return t == LineTypeProduct || t == LineTypeService
}

// RentalPeriodUnit is the unit of a line's rental period
type RentalPeriodUnit string

const (
	PeriodHour  RentalPeriodUnit = "HOUR"
	PeriodDay   RentalPeriodUnit = "DAY"
	PeriodWeek  RentalPeriodUnit = "WEEK"
	PeriodMonth RentalPeriodUnit = "MONTH"
	PeriodYear  RentalPeriodUnit = "YEAR"
)

// IsValid checks if the period unit is valid
func (u RentalPeriodUnit) IsValid() bool {
	switch u {
	case PeriodHour, PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}
