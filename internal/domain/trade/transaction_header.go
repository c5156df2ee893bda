package trade

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AuditEntityTransaction names transaction headers in the audit log
const AuditEntityTransaction = "TRANSACTION"

const (
	maxNumberLength    = 50
	maxReferenceLength = 100
)

// TransactionHeader is the aggregate root of a commercial transaction.
// It owns its lines; every line mutation recomputes totals eagerly.
type TransactionHeader struct {
	shared.BaseAggregateRoot
	Number                 string
	Type                   TransactionType
	Status                 TransactionStatus
	PaymentStatus          PaymentStatus
	TransactionDate        time.Time
	CustomerID             uuid.UUID
	LocationID             uuid.UUID
	SalesPersonID          *uuid.UUID
	ReferenceTransactionID *uuid.UUID
	Subtotal               valueobject.Money
	DiscountAmount         valueobject.Money
	TaxAmount              valueobject.Money
	TotalAmount            valueobject.Money
	PaidAmount             valueobject.Money
	DepositAmount          valueobject.Money
	// TaxRate is the rate used for generated TAX lines.
	TaxRate          decimal.Decimal
	PaymentMethod    *PaymentMethod
	PaymentReference string
	RentalStartDate  *time.Time
	RentalEndDate    *time.Time
	ActualReturnDate *time.Time
	Lines            []TransactionLine
}

// NewTransactionInput carries the fields needed to open a transaction
type NewTransactionInput struct {
	Number                 string
	Type                   TransactionType
	CustomerID             uuid.UUID
	LocationID             uuid.UUID
	SalesPersonID          *uuid.UUID
	ReferenceTransactionID *uuid.UUID
	TaxRate                decimal.Decimal
	RentalStartDate        *time.Time
	RentalEndDate          *time.Time
}

// NewTransaction creates a DRAFT header with PENDING payment status
func NewTransaction(in NewTransactionInput, s shared.Stamp) (*TransactionHeader, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_NUMBER", "Transaction number cannot be empty")
	}
	if len(number) > maxNumberLength {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_NUMBER", "Transaction number cannot exceed 50 characters")
	}
	if !in.Type.IsValid() {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_TYPE", "Unknown transaction type: "+string(in.Type))
	}
	if in.CustomerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if in.LocationID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if in.TaxRate.IsNegative() {
		return nil, shared.NewValidationError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	start, end := dayPtr(in.RentalStartDate), dayPtr(in.RentalEndDate)
	if err := validateRentalDates(in.Type, start, end); err != nil {
		return nil, err
	}

	h := &TransactionHeader{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(s),
		Number:                 number,
		Type:                   in.Type,
		Status:                 StatusDraft,
		PaymentStatus:          PaymentPending,
		TransactionDate:        s.At,
		CustomerID:             in.CustomerID,
		LocationID:             in.LocationID,
		SalesPersonID:          in.SalesPersonID,
		ReferenceTransactionID: in.ReferenceTransactionID,
		TaxRate:                in.TaxRate,
		RentalStartDate:        start,
		RentalEndDate:          end,
		Lines:                  make([]TransactionLine, 0),
	}
	h.CalculateTotals()
	h.RecordAudit(AuditEntityTransaction, "CREATED", string(h.Type)+" "+h.Number, s)
	h.AddDomainEvent(NewTransactionCreatedEvent(h, s))
	return h, nil
}

func validateRentalDates(t TransactionType, start, end *time.Time) error {
	if t == TransactionTypeRental && (start == nil || end == nil) {
		return shared.NewValidationError("RENTAL_DATES_REQUIRED", "Rental transactions require rental start and end dates")
	}
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewValidationError("INVALID_RENTAL_DATES", "Rental end date must not be before start date")
	}
	return nil
}

// ---- derived values ----

// BalanceDue is max(total - paid, 0)
func (h *TransactionHeader) BalanceDue() valueobject.Money {
	return h.TotalAmount.Sub(h.PaidAmount).ClampZero()
}

// IsPaidInFull reports paid >= total
func (h *TransactionHeader) IsPaidInFull() bool {
	return h.PaidAmount.GreaterThanOrEqual(h.TotalAmount)
}

// IsRental reports a RENTAL transaction
func (h *TransactionHeader) IsRental() bool {
	return h.Type == TransactionTypeRental
}

// IsSale reports a SALE transaction
func (h *TransactionHeader) IsSale() bool {
	return h.Type == TransactionTypeSale
}

// RentalDays is end - start + 1, or 0 without rental dates
func (h *TransactionHeader) RentalDays() int {
	if h.RentalStartDate == nil || h.RentalEndDate == nil {
		return 0
	}
	return shared.DaysBetween(*h.RentalStartDate, *h.RentalEndDate) + 1
}

// IsOverdueOn reports an in-progress rental whose end date is before day
func (h *TransactionHeader) IsOverdueOn(day time.Time) bool {
	return h.IsRental() && h.Status == StatusInProgress && h.RentalEndDate != nil &&
		h.RentalEndDate.Before(shared.Day(day))
}

// CalculateTotals rolls the lines up into the header amounts:
// subtotal over PRODUCT/SERVICE, discount over DISCOUNT (absolute), tax over
// TAX and deposit over DEPOSIT lines; total = subtotal - discount + tax.
func (h *TransactionHeader) CalculateTotals() {
	subtotal, discount, tax, deposit := valueobject.Zero(), valueobject.Zero(), valueobject.Zero(), valueobject.Zero()
	for i := range h.Lines {
		line := &h.Lines[i]
		switch line.Type {
		case LineTypeProduct, LineTypeService:
			subtotal = subtotal.Add(line.LineTotal)
		case LineTypeDiscount:
			discount = discount.Add(line.LineTotal)
		case LineTypeTax:
			tax = tax.Add(line.LineTotal)
		case LineTypeDeposit:
			deposit = deposit.Add(line.LineTotal)
		}
	}
	h.Subtotal = subtotal
	h.DiscountAmount = discount.Abs()
	h.TaxAmount = tax
	h.DepositAmount = deposit
	h.TotalAmount = subtotal.Sub(h.DiscountAmount).Add(tax)
}

// ---- lines ----

// Line returns the line with the given id
func (h *TransactionHeader) Line(lineID uuid.UUID) (*TransactionLine, error) {
	for i := range h.Lines {
		if h.Lines[i].ID == lineID {
			return &h.Lines[i], nil
		}
	}
	return nil, shared.NewNotFoundError("TRANSACTION_LINE", lineID)
}

func (h *TransactionHeader) ensureLinesEditable() error {
	switch h.Status {
	case StatusDraft, StatusPending, StatusConfirmed, StatusInProgress:
		return nil
	}
	return shared.NewValidationError("TRANSACTION_CLOSED",
		fmt.Sprintf("Lines cannot be changed on a %s transaction", h.Status))
}

func (h *TransactionHeader) nextLineNumber() int {
	n := 0
	for _, l := range h.Lines {
		if l.LineNumber > n {
			n = l.LineNumber
		}
	}
	return n + 1
}

// mutateLines applies fn and recomputes totals. If fn fails or the new
// total would fall below what has already been paid, lines and totals are
// restored.
func (h *TransactionHeader) mutateLines(fn func() error) error {
	saved := make([]TransactionLine, len(h.Lines))
	copy(saved, h.Lines)
	savedTotals := [5]valueobject.Money{h.Subtotal, h.DiscountAmount, h.TaxAmount, h.TotalAmount, h.DepositAmount}
	restore := func() {
		h.Lines = saved
		h.Subtotal, h.DiscountAmount, h.TaxAmount, h.TotalAmount, h.DepositAmount =
			savedTotals[0], savedTotals[1], savedTotals[2], savedTotals[3], savedTotals[4]
	}
	if err := fn(); err != nil {
		restore()
		return err
	}
	h.CalculateTotals()
	if h.TotalAmount.LessThan(h.PaidAmount) {
		restore()
		return shared.NewValidationError("TOTAL_BELOW_PAID", "Line change would reduce the total below the amount already paid")
	}
	return nil
}

// AddLine appends a line and recomputes totals
func (h *TransactionHeader) AddLine(in LineInput, s shared.Stamp) (*TransactionLine, error) {
	if err := h.ensureLinesEditable(); err != nil {
		return nil, err
	}
	var added *TransactionLine
	err := h.mutateLines(func() error {
		line, err := newTransactionLine(h.ID, h.nextLineNumber(), in, s)
		if err != nil {
			return err
		}
		h.Lines = append(h.Lines, *line)
		added = &h.Lines[len(h.Lines)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}
	entry := h.RecordChildAudit(AuditEntityLine, added.ID, "LINE_ADDED",
		fmt.Sprintf("#%d %s %s", added.LineNumber, added.Type, added.LineTotal), s)
	added.appendNote(entry)
	h.Mutated(AuditEntityTransaction, "", "", s)
	h.AddDomainEvent(NewTransactionLinesChangedEvent(h, s))
	return added, nil
}

// UpdateLine replaces the editable fields of a line
func (h *TransactionHeader) UpdateLine(lineID uuid.UUID, in LineInput, s shared.Stamp) (*TransactionLine, error) {
	if err := h.ensureLinesEditable(); err != nil {
		return nil, err
	}
	if _, err := h.Line(lineID); err != nil {
		return nil, err
	}
	err := h.mutateLines(func() error {
		line, _ := h.Line(lineID)
		if in.Quantity < line.ReturnedQuantity.Int64() {
			return shared.NewValidationError("INVALID_QUANTITY", "Quantity cannot be less than the returned quantity")
		}
		updated, err := newTransactionLine(h.ID, line.LineNumber, in, s)
		if err != nil {
			return err
		}
		updated.BaseEntity = line.BaseEntity
		updated.Touch(s)
		updated.ReturnedQuantity = line.ReturnedQuantity
		updated.Reserved = line.Reserved
		updated.ReturnDate = line.ReturnDate
		updated.Notes = line.Notes
		*line = *updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	line, _ := h.Line(lineID)
	line.appendNote(h.RecordChildAudit(AuditEntityLine, line.ID, "LINE_UPDATED", line.LineTotal.String(), s))
	h.Mutated(AuditEntityTransaction, "", "", s)
	h.AddDomainEvent(NewTransactionLinesChangedEvent(h, s))
	return line, nil
}

// RemoveLine deletes a line. Lines with returned quantity cannot be removed.
func (h *TransactionHeader) RemoveLine(lineID uuid.UUID, s shared.Stamp) error {
	if err := h.ensureLinesEditable(); err != nil {
		return err
	}
	line, err := h.Line(lineID)
	if err != nil {
		return err
	}
	if !line.ReturnedQuantity.IsZero() {
		return shared.NewValidationError("LINE_HAS_RETURNS", "Cannot remove a line with processed returns")
	}
	removed := *line
	err = h.mutateLines(func() error {
		kept := make([]TransactionLine, 0, len(h.Lines)-1)
		for _, l := range h.Lines {
			if l.ID != lineID {
				kept = append(kept, l)
			}
		}
		h.Lines = kept
		return nil
	})
	if err != nil {
		return err
	}
	h.RecordChildAudit(AuditEntityLine, removed.ID, "LINE_REMOVED", fmt.Sprintf("#%d", removed.LineNumber), s)
	h.Mutated(AuditEntityTransaction, "", "", s)
	h.AddDomainEvent(NewTransactionLinesChangedEvent(h, s))
	return nil
}

// ApplyLineDiscount applies a percentage or fixed discount to one line
func (h *TransactionHeader) ApplyLineDiscount(lineID uuid.UUID, pct *decimal.Decimal, amount *valueobject.Money, s shared.Stamp) (*TransactionLine, error) {
	if err := h.ensureLinesEditable(); err != nil {
		return nil, err
	}
	if _, err := h.Line(lineID); err != nil {
		return nil, err
	}
	err := h.mutateLines(func() error {
		line, _ := h.Line(lineID)
		return line.applyDiscount(pct, amount)
	})
	if err != nil {
		return nil, err
	}
	line, _ := h.Line(lineID)
	line.Touch(s)
	line.appendNote(h.RecordChildAudit(AuditEntityLine, line.ID, "DISCOUNT_APPLIED", line.DiscountAmount.String(), s))
	h.Mutated(AuditEntityTransaction, "", "", s)
	h.AddDomainEvent(NewTransactionLinesChangedEvent(h, s))
	return line, nil
}

// ProcessLineReturn records returned units on a line. Totals are unchanged;
// refunds are a separate operation.
func (h *TransactionHeader) ProcessLineReturn(lineID uuid.UUID, qty int64, date time.Time, reason string, s shared.Stamp) (*TransactionLine, error) {
	if h.Status == StatusCancelled || h.Status == StatusRefunded {
		return nil, shared.NewValidationError("TRANSACTION_CLOSED",
			fmt.Sprintf("Returns cannot be processed on a %s transaction", h.Status))
	}
	line, err := h.Line(lineID)
	if err != nil {
		return nil, err
	}
	if err := line.processReturn(qty, date); err != nil {
		return nil, err
	}
	line.Touch(s)
	detail := fmt.Sprintf("qty %d on %s", qty, shared.Day(date).Format(time.DateOnly))
	if reason != "" {
		detail += " - " + reason
	}
	line.appendNote(h.RecordChildAudit(AuditEntityLine, line.ID, "RETURN", detail, s))
	h.Mutated(AuditEntityTransaction, "", "", s)
	return line, nil
}

// ReleaseLineReservation records that the stock held for a line has been
// released or consumed.
func (h *TransactionHeader) ReleaseLineReservation(lineID uuid.UUID, s shared.Stamp) (*TransactionLine, error) {
	line, err := h.Line(lineID)
	if err != nil {
		return nil, err
	}
	if !line.Reserved {
		return nil, shared.NewValidationError("LINE_NOT_RESERVED", fmt.Sprintf("Line #%d holds no reservation", line.LineNumber))
	}
	line.Reserved = false
	line.Touch(s)
	h.Mutated(AuditEntityTransaction, "", "", s)
	return line, nil
}

// ReservedLines returns the lines still holding a stock reservation
func (h *TransactionHeader) ReservedLines() []*TransactionLine {
	out := make([]*TransactionLine, 0)
	for i := range h.Lines {
		if h.Lines[i].Reserved {
			out = append(out, &h.Lines[i])
		}
	}
	return out
}

// UpdateLineRentalPeriod moves one line's rental end date
func (h *TransactionHeader) UpdateLineRentalPeriod(lineID uuid.UUID, newEnd time.Time, s shared.Stamp) (*TransactionLine, error) {
	if err := h.ensureLinesEditable(); err != nil {
		return nil, err
	}
	line, err := h.Line(lineID)
	if err != nil {
		return nil, err
	}
	if err := line.updateRentalPeriod(newEnd); err != nil {
		return nil, err
	}
	line.Touch(s)
	line.appendNote(h.RecordChildAudit(AuditEntityLine, line.ID, "RENTAL_PERIOD_UPDATED",
		"end "+line.RentalEndDate.Format(time.DateOnly), s))
	h.Mutated(AuditEntityTransaction, "", "", s)
	return line, nil
}

// ExtendRental moves the header rental end date and every rental product
// line with it. newEnd must be after the current end.
func (h *TransactionHeader) ExtendRental(newEnd time.Time, s shared.Stamp) error {
	if !h.IsRental() {
		return shared.NewValidationError("NOT_A_RENTAL", "Only rental transactions can be extended")
	}
	if h.Status != StatusInProgress {
		return shared.NewValidationError("RENTAL_NOT_ACTIVE", "Only in-progress rentals can be extended")
	}
	end := shared.Day(newEnd)
	if h.RentalEndDate == nil || !end.After(*h.RentalEndDate) {
		return shared.NewValidationError("INVALID_RENTAL_DATES", "New end date must be after the current rental end date")
	}
	for i := range h.Lines {
		if h.Lines[i].IsRentalProduct() {
			if err := h.Lines[i].updateRentalPeriod(end); err != nil {
				return err
			}
			h.Lines[i].Touch(s)
		}
	}
	old := *h.RentalEndDate
	h.RentalEndDate = &end
	h.Mutated(AuditEntityTransaction, "RENTAL_EXTENDED",
		old.Format(time.DateOnly)+" -> "+end.Format(time.DateOnly), s)
	return nil
}

// SortLines orders lines by line number
func (h *TransactionHeader) SortLines() {
	sort.Slice(h.Lines, func(i, j int) bool { return h.Lines[i].LineNumber < h.Lines[j].LineNumber })
}

// ---- state machine ----

// TransitionTo moves the header through the status table
func (h *TransactionHeader) TransitionTo(target TransactionStatus, s shared.Stamp) error {
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_TRANSACTION_STATUS", "Unknown transaction status: "+string(target))
	}
	next, err := TransitionStatus(h.Status, target)
	if err != nil {
		return err
	}
	old := h.Status
	h.Status = next
	h.Mutated(AuditEntityTransaction, "STATUS_CHANGED", string(old)+" -> "+string(next), s)
	h.AddDomainEvent(NewTransactionStatusChangedEvent(h, old, s))
	return nil
}

// ApplyPayment records a payment against the balance due
func (h *TransactionHeader) ApplyPayment(amount valueobject.Money, method PaymentMethod, reference string, s shared.Stamp) error {
	if err := validatePayment(amount, method, reference); err != nil {
		return err
	}
	if h.Status != StatusPending && h.Status != StatusConfirmed {
		return shared.NewValidationError("PAYMENT_NOT_ALLOWED",
			fmt.Sprintf("Payments cannot be applied to a %s transaction", h.Status))
	}
	return h.recordPayment(amount, method, reference, s)
}

// CollectRentalBalance takes a payment on a rental that is out with the
// customer, typically the balance an extension added.
func (h *TransactionHeader) CollectRentalBalance(amount valueobject.Money, method PaymentMethod, reference string, s shared.Stamp) error {
	if err := validatePayment(amount, method, reference); err != nil {
		return err
	}
	if !h.IsRental() {
		return shared.NewValidationError("NOT_A_RENTAL", "Only rentals take payments while in progress")
	}
	if h.Status != StatusInProgress {
		return shared.NewValidationError("PAYMENT_NOT_ALLOWED",
			fmt.Sprintf("Rental balance cannot be collected on a %s transaction", h.Status))
	}
	return h.recordPayment(amount, method, reference, s)
}

func validatePayment(amount valueobject.Money, method PaymentMethod, reference string) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_PAYMENT_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return shared.NewValidationError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+string(method))
	}
	if len(reference) > maxReferenceLength {
		return shared.NewValidationError("INVALID_PAYMENT_REFERENCE", "Payment reference cannot exceed 100 characters")
	}
	return nil
}

// recordPayment books a validated payment, bounded by the balance due
func (h *TransactionHeader) recordPayment(amount valueobject.Money, method PaymentMethod, reference string, s shared.Stamp) error {
	due := h.BalanceDue()
	if amount.GreaterThan(due) {
		return shared.NewValidationError("PAYMENT_EXCEEDS_BALANCE",
			fmt.Sprintf("Payment %s exceeds balance due %s", amount, due))
	}

	h.PaidAmount = h.PaidAmount.Add(amount)
	h.PaymentMethod = &method
	h.PaymentReference = reference
	if h.IsPaidInFull() {
		h.PaymentStatus = PaymentPaid
	} else if h.PaidAmount.IsPositive() {
		h.PaymentStatus = PaymentPartiallyPaid
	}
	h.Mutated(AuditEntityTransaction, "PAYMENT_APPLIED", fmt.Sprintf("%s via %s", amount, method), s)
	h.AddDomainEvent(NewPaymentAppliedEvent(h, amount, method, s))
	return nil
}

// Cancel cancels the transaction and its payment status
func (h *TransactionHeader) Cancel(reason string, s shared.Stamp) error {
	switch h.Status {
	case StatusCompleted:
		return shared.NewInvalidTransitionError("TRANSACTION", string(h.Status), string(StatusCancelled))
	case StatusCancelled:
		return shared.NewValidationError("ALREADY_CANCELLED", "Transaction is already cancelled")
	}
	if err := h.TransitionTo(StatusCancelled, s); err != nil {
		return err
	}
	h.PaymentStatus = PaymentCancelled
	h.RecordAudit(AuditEntityTransaction, "CANCELLED", reason, s)
	h.AddDomainEvent(NewTransactionCancelledEvent(h, reason, s))
	return nil
}

// ProcessRefund refunds part or all of the paid amount of a completed
// transaction and moves it to REFUNDED.
func (h *TransactionHeader) ProcessRefund(amount valueobject.Money, reason string, s shared.Stamp) error {
	if h.Status != StatusCompleted {
		return shared.NewValidationError("REFUND_NOT_ALLOWED", "Only completed transactions can be refunded")
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_REFUND_AMOUNT", "Refund amount must be positive")
	}
	if amount.GreaterThan(h.PaidAmount) {
		return shared.NewValidationError("REFUND_EXCEEDS_PAID",
			fmt.Sprintf("Refund %s exceeds paid amount %s", amount, h.PaidAmount))
	}
	if err := h.TransitionTo(StatusRefunded, s); err != nil {
		return err
	}
	h.PaidAmount = h.PaidAmount.Sub(amount)
	h.PaymentStatus = PaymentRefunded
	h.RecordAudit(AuditEntityTransaction, "REFUNDED", fmt.Sprintf("%s %s", amount, reason), s)
	h.AddDomainEvent(NewRefundProcessedEvent(h, amount, reason, s))
	return nil
}

// MarkAsOverdue flags an unpaid transaction as overdue
func (h *TransactionHeader) MarkAsOverdue(s shared.Stamp) error {
	if h.PaymentStatus == PaymentPaid {
		return shared.NewValidationError("ALREADY_PAID", "Paid transactions cannot be overdue")
	}
	if h.Status == StatusCancelled {
		return shared.NewValidationError("TRANSACTION_CANCELLED", "Cancelled transactions cannot be overdue")
	}
	h.PaymentStatus = PaymentOverdue
	h.Mutated(AuditEntityTransaction, "MARKED_OVERDUE", "", s)
	return nil
}

// CompleteRentalReturn closes an in-progress rental
func (h *TransactionHeader) CompleteRentalReturn(actualReturn time.Time, s shared.Stamp) error {
	if !h.IsRental() {
		return shared.NewValidationError("NOT_A_RENTAL", "Only rental transactions can complete a rental return")
	}
	if h.Status != StatusInProgress {
		return shared.NewInvalidTransitionError("TRANSACTION", string(h.Status), string(StatusCompleted))
	}
	d := shared.Day(actualReturn)
	h.ActualReturnDate = &d
	return h.TransitionTo(StatusCompleted, s)
}

// DetailsUpdate holds the header fields editable while the transaction is open
type DetailsUpdate struct {
	SalesPersonID          *uuid.UUID
	ReferenceTransactionID *uuid.UUID
	RentalStartDate        *time.Time
	RentalEndDate          *time.Time
	Remark                 string
}

// UpdateDetails edits header details; blocked once the transaction is closed
func (h *TransactionHeader) UpdateDetails(u DetailsUpdate, s shared.Stamp) error {
	if h.Status.IsClosed() {
		return shared.NewValidationError("TRANSACTION_CLOSED",
			fmt.Sprintf("A %s transaction cannot be updated", h.Status))
	}
	start, end := h.RentalStartDate, h.RentalEndDate
	if u.RentalStartDate != nil {
		start = dayPtr(u.RentalStartDate)
	}
	if u.RentalEndDate != nil {
		end = dayPtr(u.RentalEndDate)
	}
	if err := validateRentalDates(h.Type, start, end); err != nil {
		return err
	}
	h.RentalStartDate, h.RentalEndDate = start, end
	if u.SalesPersonID != nil {
		h.SalesPersonID = u.SalesPersonID
	}
	if u.ReferenceTransactionID != nil {
		h.ReferenceTransactionID = u.ReferenceTransactionID
	}
	h.Mutated(AuditEntityTransaction, "UPDATED", u.Remark, s)
	return nil
}

// RentalProductLines returns the PRODUCT lines carrying a unit
func (h *TransactionHeader) RentalProductLines() []*TransactionLine {
	out := make([]*TransactionLine, 0, len(h.Lines))
	for i := range h.Lines {
		if h.Lines[i].Type == LineTypeProduct {
			out = append(out, &h.Lines[i])
		}
	}
	return out
}

// LineForUnit finds the product line an inventory unit was booked on
func (h *TransactionHeader) LineForUnit(unitID uuid.UUID) (*TransactionLine, error) {
	for i := range h.Lines {
		if h.Lines[i].InventoryUnitID != nil && *h.Lines[i].InventoryUnitID == unitID {
			return &h.Lines[i], nil
		}
	}
	return nil, shared.NewValidationError("UNIT_NOT_ON_TRANSACTION",
		fmt.Sprintf("Inventory unit %s is not part of transaction %s", unitID, h.Number))
}

// AllProductLinesReturned reports whether every product line is fully returned
func (h *TransactionHeader) AllProductLinesReturned() bool {
	for _, l := range h.RentalProductLines() {
		if !l.IsFullyReturned() {
			return false
		}
	}
	return true
}
