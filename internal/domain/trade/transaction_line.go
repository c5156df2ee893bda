package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AuditEntityLine names transaction lines in the audit log
const AuditEntityLine = "TRANSACTION_LINE"

const maxDescriptionLength = 500

var hundred = decimal.NewFromInt(100)

// TransactionLine is one priced line of a transaction header. It is only
// mutated through its header so totals stay consistent.
type TransactionLine struct {
	shared.BaseEntity
	TransactionID      uuid.UUID
	LineNumber         int
	Type               LineType
	ItemID             *uuid.UUID
	InventoryUnitID    *uuid.UUID
	// Reserved is set while the line's quantity is held as a stock
	// reservation (booked but not yet picked up or fulfilled).
	Reserved           bool
	Description        string
	Quantity           valueobject.Quantity
	UnitPrice          valueobject.Money
	DiscountPercentage decimal.Decimal
	DiscountAmount     valueobject.Money
	TaxRate            decimal.Decimal
	TaxAmount          valueobject.Money
	LineTotal          valueobject.Money
	RentalPeriodValue  *int
	RentalPeriodUnit   *RentalPeriodUnit
	RentalStartDate    *time.Time
	RentalEndDate      *time.Time
	ReturnedQuantity   valueobject.Quantity
	ReturnDate         *time.Time
	Notes              string
}

// LineInput carries the caller-supplied fields of a line
type LineInput struct {
	Type               LineType
	ItemID             *uuid.UUID
	InventoryUnitID    *uuid.UUID
	Reserved           bool
	Description        string
	Quantity           int64
	UnitPrice          valueobject.Money
	DiscountPercentage decimal.Decimal
	DiscountAmount     valueobject.Money
	TaxRate            decimal.Decimal
	RentalPeriodValue  *int
	RentalPeriodUnit   *RentalPeriodUnit
	RentalStartDate    *time.Time
	RentalEndDate      *time.Time
	Notes              string
}

func newTransactionLine(transactionID uuid.UUID, lineNumber int, in LineInput, s shared.Stamp) (*TransactionLine, error) {
	if lineNumber < 1 {
		return nil, shared.NewValidationError("INVALID_LINE_NUMBER", "Line number must be at least 1")
	}
	qty, err := valueobject.NewQuantity(in.Quantity)
	if err != nil {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Line quantity cannot be negative")
	}
	line := &TransactionLine{
		BaseEntity:         shared.NewBaseEntity(s),
		TransactionID:      transactionID,
		LineNumber:         lineNumber,
		Type:               in.Type,
		ItemID:             in.ItemID,
		InventoryUnitID:    in.InventoryUnitID,
		Reserved:           in.Reserved,
		Description:        strings.TrimSpace(in.Description),
		Quantity:           qty,
		UnitPrice:          in.UnitPrice,
		DiscountPercentage: in.DiscountPercentage,
		DiscountAmount:     in.DiscountAmount,
		TaxRate:            in.TaxRate,
		RentalPeriodValue:  in.RentalPeriodValue,
		RentalPeriodUnit:   in.RentalPeriodUnit,
		RentalStartDate:    dayPtr(in.RentalStartDate),
		RentalEndDate:      dayPtr(in.RentalEndDate),
		Notes:              in.Notes,
	}
	if err := line.validate(); err != nil {
		return nil, err
	}
	line.CalculateLineTotal()
	return line, nil
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := shared.Day(*t)
	return &d
}

func (l *TransactionLine) validate() error {
	if !l.Type.IsValid() {
		return shared.NewValidationError("INVALID_LINE_TYPE", "Unknown line type: "+string(l.Type))
	}
	if l.Description == "" {
		return shared.NewValidationError("INVALID_DESCRIPTION", "Line description cannot be empty")
	}
	if len(l.Description) > maxDescriptionLength {
		return shared.NewValidationError("INVALID_DESCRIPTION", "Line description cannot exceed 500 characters")
	}
	if l.Type.RequiresItem() && (l.ItemID == nil || *l.ItemID == uuid.Nil) {
		return shared.NewValidationError("ITEM_REQUIRED", string(l.Type)+" lines require an item")
	}
	if l.UnitPrice.IsNegative() && l.Type != LineTypeDiscount {
		return shared.NewValidationError("NEGATIVE_PRICE", "Unit price cannot be negative")
	}
	if err := validateDiscount(l.DiscountPercentage, l.DiscountAmount); err != nil {
		return err
	}
	if l.TaxRate.IsNegative() {
		return shared.NewValidationError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	if l.RentalPeriodValue != nil {
		if *l.RentalPeriodValue < 1 {
			return shared.NewValidationError("INVALID_RENTAL_PERIOD", "Rental period must be at least 1")
		}
		if l.RentalPeriodUnit == nil {
			return shared.NewValidationError("INVALID_RENTAL_PERIOD", "Rental period unit is required with a period value")
		}
	}
	if l.RentalPeriodUnit != nil && !l.RentalPeriodUnit.IsValid() {
		return shared.NewValidationError("INVALID_RENTAL_PERIOD", "Unknown rental period unit: "+string(*l.RentalPeriodUnit))
	}
	if l.RentalStartDate != nil && l.RentalEndDate != nil && l.RentalEndDate.Before(*l.RentalStartDate) {
		return shared.NewValidationError("INVALID_RENTAL_DATES", "Rental end date must not be before start date")
	}
	if l.ReturnedQuantity.Int64() > l.Quantity.Int64() {
		return shared.NewValidationError("INVALID_RETURNED_QUANTITY", "Returned quantity cannot exceed quantity")
	}
	return nil
}

func validateDiscount(pct decimal.Decimal, amount valueobject.Money) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount percentage must be between 0 and 100")
	}
	if amount.IsNegative() {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount amount cannot be negative")
	}
	if pct.IsPositive() && amount.IsPositive() {
		return shared.NewValidationError("INVALID_DISCOUNT", "Use either a discount percentage or a discount amount, not both")
	}
	return nil
}

// CalculateLineTotal recomputes discount, tax and the line total from
// quantity, unit price, discount and tax rate. It is idempotent.
func (l *TransactionLine) CalculateLineTotal() {
	subtotal := l.UnitPrice.MulInt(l.Quantity.Int64())
	if l.DiscountPercentage.IsPositive() {
		l.DiscountAmount = subtotal.Percent(l.DiscountPercentage)
	}
	discounted := subtotal.Sub(l.DiscountAmount)
	if l.TaxRate.IsPositive() {
		l.TaxAmount = discounted.Percent(l.TaxRate)
	} else {
		l.TaxAmount = valueobject.Zero()
	}
	l.LineTotal = discounted.Add(l.TaxAmount)
	if l.Type == LineTypeDiscount {
		l.LineTotal = l.LineTotal.Abs().Neg()
	}
}

// applyDiscount sets either a percentage or a fixed amount, zeroing the other
func (l *TransactionLine) applyDiscount(pct *decimal.Decimal, amount *valueobject.Money) error {
	if pct != nil && amount != nil {
		return shared.NewValidationError("INVALID_DISCOUNT", "Cannot apply both a percentage and an amount discount")
	}
	if pct == nil && amount == nil {
		return shared.NewValidationError("INVALID_DISCOUNT", "A discount percentage or amount is required")
	}
	if pct != nil {
		if err := validateDiscount(*pct, valueobject.Zero()); err != nil {
			return err
		}
		l.DiscountPercentage = *pct
		l.DiscountAmount = valueobject.Zero()
	}
	if amount != nil {
		if err := validateDiscount(decimal.Zero, *amount); err != nil {
			return err
		}
		l.DiscountAmount = *amount
		l.DiscountPercentage = decimal.Zero
	}
	l.CalculateLineTotal()
	return nil
}

// processReturn records qty units coming back on this line
func (l *TransactionLine) processReturn(qty int64, date time.Time) error {
	if qty <= 0 {
		return shared.NewValidationError("INVALID_RETURN_QUANTITY", "Return quantity must be positive")
	}
	if qty > l.RemainingQuantity() {
		return shared.NewValidationError("RETURN_EXCEEDS_REMAINING",
			fmt.Sprintf("Return quantity %d exceeds remaining quantity %d", qty, l.RemainingQuantity()))
	}
	returned, err := l.ReturnedQuantity.Add(qty)
	if err != nil {
		return shared.NewValidationError("INVALID_RETURN_QUANTITY", err.Error())
	}
	l.ReturnedQuantity = returned
	d := shared.Day(date)
	l.ReturnDate = &d
	return nil
}

// updateRentalPeriod moves the rental end date and recomputes DAY periods
func (l *TransactionLine) updateRentalPeriod(newEnd time.Time) error {
	if l.RentalStartDate == nil {
		return shared.NewValidationError("NOT_A_RENTAL_LINE", "Cannot update rental period for a non-rental line")
	}
	end := shared.Day(newEnd)
	if end.Before(*l.RentalStartDate) {
		return shared.NewValidationError("INVALID_RENTAL_DATES", "Rental end date must not be before start date")
	}
	l.RentalEndDate = &end
	if l.RentalPeriodUnit != nil && *l.RentalPeriodUnit == PeriodDay {
		days := l.RentalDays()
		l.RentalPeriodValue = &days
	}
	return nil
}

func (l *TransactionLine) appendNote(entry shared.AuditEntry) {
	if l.Notes == "" {
		l.Notes = entry.Render()
		return
	}
	l.Notes += "\n" + entry.Render()
}

// RemainingQuantity is the quantity not yet returned
func (l *TransactionLine) RemainingQuantity() int64 {
	return l.Quantity.Int64() - l.ReturnedQuantity.Int64()
}

// IsFullyReturned reports whether every unit has come back
func (l *TransactionLine) IsFullyReturned() bool {
	return l.ReturnedQuantity.Int64() >= l.Quantity.Int64()
}

// IsPartiallyReturned reports 0 < returned < quantity
func (l *TransactionLine) IsPartiallyReturned() bool {
	r := l.ReturnedQuantity.Int64()
	return r > 0 && r < l.Quantity.Int64()
}

// RentalDays counts the inclusive days between the rental dates
func (l *TransactionLine) RentalDays() int {
	if l.RentalStartDate == nil || l.RentalEndDate == nil {
		return 0
	}
	return shared.DaysBetween(*l.RentalStartDate, *l.RentalEndDate) + 1
}

// EffectiveUnitPrice is the unit price after discount, before tax
func (l *TransactionLine) EffectiveUnitPrice() valueobject.Money {
	if l.Quantity.IsZero() {
		return valueobject.Zero()
	}
	discounted := l.UnitPrice.MulInt(l.Quantity.Int64()).Sub(l.DiscountAmount)
	return valueobject.NewMoney(discounted.Decimal().Div(decimal.NewFromInt(l.Quantity.Int64())))
}

// IsRentalProduct reports a PRODUCT line with a rental period
func (l *TransactionLine) IsRentalProduct() bool {
	return l.Type == LineTypeProduct && l.RentalStartDate != nil
}
