package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStamp = shared.StampAt("tester", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

func newTestSale(t *testing.T) *TransactionHeader {
	t.Helper()
	h, err := NewTransaction(NewTransactionInput{
		Number:     "SAL-20240601-0001",
		Type:       TransactionTypeSale,
		CustomerID: uuid.New(),
		LocationID: uuid.New(),
	}, testStamp)
	require.NoError(t, err)
	return h
}

func productLine(price string, qty int64) LineInput {
	itemID := uuid.New()
	return LineInput{
		Type:        LineTypeProduct,
		ItemID:      &itemID,
		Description: "Drill",
		Quantity:    qty,
		UnitPrice:   valueobject.MustMoney(price),
	}
}

func toPending(t *testing.T, h *TransactionHeader) {
	t.Helper()
	require.NoError(t, h.TransitionTo(StatusPending, testStamp))
}

func TestNewTransaction(t *testing.T) {
	h := newTestSale(t)
	assert.Equal(t, StatusDraft, h.Status)
	assert.Equal(t, PaymentPending, h.PaymentStatus)
	assert.True(t, h.TotalAmount.IsZero())
	assert.Len(t, h.PendingAudit(), 1)

	t.Run("rental requires dates", func(t *testing.T) {
		_, err := NewTransaction(NewTransactionInput{
			Number: "RNT-1", Type: TransactionTypeRental, CustomerID: uuid.New(), LocationID: uuid.New(),
		}, testStamp)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, -1)
		_, err := NewTransaction(NewTransactionInput{
			Number: "RNT-1", Type: TransactionTypeRental, CustomerID: uuid.New(), LocationID: uuid.New(),
			RentalStartDate: &start, RentalEndDate: &end,
		}, testStamp)
		assert.Error(t, err)
	})

	t.Run("empty number is rejected", func(t *testing.T) {
		_, err := NewTransaction(NewTransactionInput{Type: TransactionTypeSale, CustomerID: uuid.New(), LocationID: uuid.New()}, testStamp)
		assert.Error(t, err)
	})
}

func TestTransactionLine_CalculateLineTotal(t *testing.T) {
	t.Run("discount then tax", func(t *testing.T) {
		in := productLine("50", 2)
		in.DiscountPercentage = decimal.NewFromInt(10)
		in.TaxRate = decimal.NewFromInt(10)
		line, err := newTransactionLine(uuid.New(), 1, in, testStamp)
		require.NoError(t, err)
		assert.Equal(t, "10.00", line.DiscountAmount.String())
		assert.Equal(t, "9.00", line.TaxAmount.String())
		assert.Equal(t, "99.00", line.LineTotal.String())

		before := line.LineTotal
		line.CalculateLineTotal()
		assert.True(t, before.Equals(line.LineTotal))
	})

	t.Run("line-level tax on a single unit", func(t *testing.T) {
		in := productLine("100", 1)
		in.TaxRate = decimal.NewFromInt(10)
		line, err := newTransactionLine(uuid.New(), 1, in, testStamp)
		require.NoError(t, err)
		assert.Equal(t, "110.00", line.LineTotal.String())
	})

	t.Run("discount lines are negative", func(t *testing.T) {
		line, err := newTransactionLine(uuid.New(), 1, LineInput{
			Type: LineTypeDiscount, Description: "promo", Quantity: 1, UnitPrice: valueobject.MustMoney("15"),
		}, testStamp)
		require.NoError(t, err)
		assert.Equal(t, "-15.00", line.LineTotal.String())
	})

	t.Run("product lines need an item", func(t *testing.T) {
		in := productLine("10", 1)
		in.ItemID = nil
		_, err := newTransactionLine(uuid.New(), 1, in, testStamp)
		assert.Error(t, err)
	})

	t.Run("two units at 50.00 with 10 percent tax", func(t *testing.T) {
		in := productLine("50.00", 2)
		in.TaxRate = decimal.NewFromInt(10)
		line, err := newTransactionLine(uuid.New(), 1, in, testStamp)
		require.NoError(t, err)
		assert.True(t, line.DiscountAmount.IsZero())
		assert.Equal(t, "10.00", line.TaxAmount.String())
		assert.Equal(t, "110.00", line.LineTotal.String())
	})

	t.Run("discount over 100 percent is rejected", func(t *testing.T) {
		in := productLine("10", 1)
		in.DiscountPercentage = decimal.NewFromInt(101)
		_, err := newTransactionLine(uuid.New(), 1, in, testStamp)
		assert.Error(t, err)
	})
}

func TestTransactionHeader_TotalsWithTaxLine(t *testing.T) {
	h := newTestSale(t)
	_, err := h.AddLine(productLine("50.00", 2), testStamp)
	require.NoError(t, err)
	_, err = h.AddLine(LineInput{Type: LineTypeTax, Description: "Sales tax 10%", Quantity: 1, UnitPrice: valueobject.MustMoney("10.00")}, testStamp)
	require.NoError(t, err)

	assert.Equal(t, "100.00", h.Subtotal.String())
	assert.Equal(t, "10.00", h.TaxAmount.String())
	assert.True(t, h.DiscountAmount.IsZero())
	assert.Equal(t, "110.00", h.TotalAmount.String())
	assert.Equal(t, "110.00", h.BalanceDue().String())
}

func TestTransactionHeader_CalculateTotals(t *testing.T) {
	h := newTestSale(t)
	_, err := h.AddLine(productLine("100", 1), testStamp)
	require.NoError(t, err)
	_, err = h.AddLine(LineInput{Type: LineTypeTax, Description: "VAT", Quantity: 1, UnitPrice: valueobject.MustMoney("10")}, testStamp)
	require.NoError(t, err)

	assert.Equal(t, "100.00", h.Subtotal.String())
	assert.Equal(t, "10.00", h.TaxAmount.String())
	assert.Equal(t, "110.00", h.TotalAmount.String())

	_, err = h.AddLine(LineInput{Type: LineTypeDiscount, Description: "promo", Quantity: 1, UnitPrice: valueobject.MustMoney("20")}, testStamp)
	require.NoError(t, err)
	_, err = h.AddLine(LineInput{Type: LineTypeDeposit, Description: "deposit", Quantity: 1, UnitPrice: valueobject.MustMoney("50")}, testStamp)
	require.NoError(t, err)
	_, err = h.AddLine(LineInput{Type: LineTypeLateFee, Description: "late", Quantity: 1, UnitPrice: valueobject.MustMoney("5")}, testStamp)
	require.NoError(t, err)

	assert.Equal(t, "20.00", h.DiscountAmount.String())
	assert.Equal(t, "50.00", h.DepositAmount.String())
	assert.Equal(t, "90.00", h.TotalAmount.String())
	assert.True(t, h.TotalAmount.Equals(h.Subtotal.Sub(h.DiscountAmount).Add(h.TaxAmount)))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, lineNumbers(h))
}

func lineNumbers(h *TransactionHeader) []int {
	out := make([]int, 0, len(h.Lines))
	for _, l := range h.Lines {
		out = append(out, l.LineNumber)
	}
	return out
}

func TestTransactionHeader_ApplyPayment(t *testing.T) {
	h := newTestSale(t)
	_, err := h.AddLine(productLine("100", 1), testStamp)
	require.NoError(t, err)

	t.Run("draft transactions cannot be paid", func(t *testing.T) {
		err := h.ApplyPayment(valueobject.MustMoney("10"), PaymentMethodCash, "", testStamp)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	toPending(t, h)

	t.Run("partial then full payment", func(t *testing.T) {
		require.NoError(t, h.ApplyPayment(valueobject.MustMoney("40"), PaymentMethodCash, "r1", testStamp))
		assert.Equal(t, PaymentPartiallyPaid, h.PaymentStatus)
		assert.Equal(t, "60.00", h.BalanceDue().String())

		require.NoError(t, h.ApplyPayment(valueobject.MustMoney("60"), PaymentMethodCreditCard, "r2", testStamp))
		assert.Equal(t, PaymentPaid, h.PaymentStatus)
		assert.True(t, h.BalanceDue().IsZero())
		assert.True(t, h.IsPaidInFull())
	})

	t.Run("overpayment is rejected", func(t *testing.T) {
		err := h.ApplyPayment(valueobject.MustMoney("0.01"), PaymentMethodCash, "", testStamp)
		assert.Error(t, err)
		assert.Equal(t, "100.00", h.PaidAmount.String())
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		assert.Error(t, h.ApplyPayment(valueobject.Zero(), PaymentMethodCash, "", testStamp))
	})
}

func TestTransactionHeader_CollectRentalBalance(t *testing.T) {
	h := newTestRental(t, 3)
	require.Equal(t, "60.00", h.TotalAmount.String())

	t.Run("only in-progress rentals", func(t *testing.T) {
		err := h.CollectRentalBalance(valueobject.MustMoney("10"), PaymentMethodCash, "", testStamp)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.True(t, h.PaidAmount.IsZero())
	})

	h.Status = StatusInProgress

	t.Run("apply payment still refuses an active rental", func(t *testing.T) {
		assert.Error(t, h.ApplyPayment(valueobject.MustMoney("10"), PaymentMethodCash, "", testStamp))
	})

	t.Run("balance is collected up to what is due", func(t *testing.T) {
		require.NoError(t, h.CollectRentalBalance(valueobject.MustMoney("20"), PaymentMethodCash, "x1", testStamp))
		assert.Equal(t, PaymentPartiallyPaid, h.PaymentStatus)
		assert.Equal(t, "40.00", h.BalanceDue().String())

		assert.Error(t, h.CollectRentalBalance(valueobject.MustMoney("40.01"), PaymentMethodCash, "", testStamp))
		assert.Equal(t, "20.00", h.PaidAmount.String())

		require.NoError(t, h.CollectRentalBalance(valueobject.MustMoney("40"), PaymentMethodBankTransfer, "x2", testStamp))
		assert.Equal(t, PaymentPaid, h.PaymentStatus)
		assert.Equal(t, "x2", h.PaymentReference)
		assert.True(t, h.BalanceDue().IsZero())
	})

	t.Run("sales are refused", func(t *testing.T) {
		sale := newTestSale(t)
		sale.Status = StatusInProgress
		err := sale.CollectRentalBalance(valueobject.MustMoney("1"), PaymentMethodCash, "", testStamp)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestTransactionHeader_LineChangeCannotDropBelowPaid(t *testing.T) {
	h := newTestSale(t)
	line, err := h.AddLine(productLine("100", 1), testStamp)
	require.NoError(t, err)
	lineID := line.ID
	toPending(t, h)
	require.NoError(t, h.ApplyPayment(valueobject.MustMoney("80"), PaymentMethodCash, "", testStamp))

	pct := decimal.NewFromInt(50)
	_, err = h.ApplyLineDiscount(lineID, &pct, nil, testStamp)
	assert.Error(t, err)
	assert.Equal(t, "100.00", h.TotalAmount.String())

	err = h.RemoveLine(lineID, testStamp)
	assert.Error(t, err)
	assert.Len(t, h.Lines, 1)

	amount := valueobject.MustMoney("10")
	_, err = h.ApplyLineDiscount(lineID, nil, &amount, testStamp)
	require.NoError(t, err)
	assert.Equal(t, "90.00", h.TotalAmount.String())
}

func TestTransactionHeader_StateMachine(t *testing.T) {
	for _, from := range AllTransactionStatuses {
		for _, to := range AllTransactionStatuses {
			h := newTestSale(t)
			h.Status = from
			err := h.TransitionTo(to, testStamp)
			if StatusTransitions.Allows(from, to) {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, h.Status)
				continue
			}
			var de *shared.DomainError
			require.True(t, errors.As(err, &de), "%s -> %s", from, to)
			assert.True(t, de.IsInvalidTransition())
			assert.Equal(t, string(from), de.Current)
			assert.Equal(t, string(to), de.Target)
			assert.Equal(t, from, h.Status)
		}
	}
}

func TestTransactionHeader_Cancel(t *testing.T) {
	h := newTestSale(t)
	require.NoError(t, h.Cancel("customer changed mind", testStamp))
	assert.Equal(t, StatusCancelled, h.Status)
	assert.Equal(t, PaymentCancelled, h.PaymentStatus)
	assert.Error(t, h.Cancel("again", testStamp))

	completed := newTestSale(t)
	completed.Status = StatusCompleted
	err := completed.Cancel("late", testStamp)
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
}

func TestTransactionHeader_ProcessRefund(t *testing.T) {
	h := newTestSale(t)
	_, err := h.AddLine(productLine("100", 1), testStamp)
	require.NoError(t, err)
	toPending(t, h)
	require.NoError(t, h.ApplyPayment(valueobject.MustMoney("100"), PaymentMethodCash, "", testStamp))

	assert.Error(t, h.ProcessRefund(valueobject.MustMoney("10"), "early", testStamp))

	h.Status = StatusCompleted
	assert.Error(t, h.ProcessRefund(valueobject.MustMoney("100.01"), "too much", testStamp))
	require.NoError(t, h.ProcessRefund(valueobject.MustMoney("30"), "damaged box", testStamp))
	assert.Equal(t, StatusRefunded, h.Status)
	assert.Equal(t, PaymentRefunded, h.PaymentStatus)
	assert.Equal(t, "70.00", h.PaidAmount.String())
	assert.False(t, h.PaidAmount.IsNegative())
}

func TestTransactionHeader_MarkAsOverdue(t *testing.T) {
	h := newTestSale(t)
	require.NoError(t, h.MarkAsOverdue(testStamp))
	assert.Equal(t, PaymentOverdue, h.PaymentStatus)

	h.PaymentStatus = PaymentPaid
	assert.Error(t, h.MarkAsOverdue(testStamp))
}

func newTestRental(t *testing.T, days int) *TransactionHeader {
	t.Helper()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, days-1)
	h, err := NewTransaction(NewTransactionInput{
		Number: "RNT-20240601-0001", Type: TransactionTypeRental,
		CustomerID: uuid.New(), LocationID: uuid.New(),
		RentalStartDate: &start, RentalEndDate: &end,
	}, testStamp)
	require.NoError(t, err)
	in := productLine("60", 1)
	unitID := uuid.New()
	period, unit := days, PeriodDay
	in.InventoryUnitID = &unitID
	in.RentalStartDate, in.RentalEndDate = &start, &end
	in.RentalPeriodValue, in.RentalPeriodUnit = &period, &unit
	_, err = h.AddLine(in, testStamp)
	require.NoError(t, err)
	return h
}

func TestTransactionHeader_ProcessLineReturn(t *testing.T) {
	h := newTestRental(t, 3)
	h.Status = StatusInProgress
	line := h.Lines[0]
	total := h.TotalAmount

	returned, err := h.ProcessLineReturn(line.ID, 1, time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC), "good", testStamp)
	require.NoError(t, err)
	assert.True(t, returned.IsFullyReturned())
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), *returned.ReturnDate)
	assert.Contains(t, returned.Notes, "RETURN: qty 1 on 2024-06-03 - good")
	assert.True(t, total.Equals(h.TotalAmount))

	_, err = h.ProcessLineReturn(line.ID, 1, time.Now(), "", testStamp)
	assert.Error(t, err)
	assert.True(t, h.AllProductLinesReturned())

	require.NoError(t, h.CompleteRentalReturn(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), testStamp))
	assert.Equal(t, StatusCompleted, h.Status)
	require.NotNil(t, h.ActualReturnDate)
}

func TestTransactionHeader_ExtendRental(t *testing.T) {
	h := newTestRental(t, 3)
	assert.Equal(t, 3, h.RentalDays())

	newEnd := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	assert.Error(t, h.ExtendRental(newEnd, testStamp))

	h.Status = StatusInProgress
	assert.Error(t, h.ExtendRental(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), testStamp))
	require.NoError(t, h.ExtendRental(newEnd, testStamp))
	assert.Equal(t, 5, h.RentalDays())
	assert.Equal(t, 5, h.Lines[0].RentalDays())
	assert.Equal(t, 5, *h.Lines[0].RentalPeriodValue)
	assert.True(t, h.IsOverdueOn(time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)))
	assert.False(t, h.IsOverdueOn(newEnd))
}

func TestTransactionHeader_UpdateDetails(t *testing.T) {
	h := newTestSale(t)
	sp := uuid.New()
	require.NoError(t, h.UpdateDetails(DetailsUpdate{SalesPersonID: &sp, Remark: "assigned"}, testStamp))
	assert.Equal(t, &sp, h.SalesPersonID)

	h.Status = StatusCompleted
	assert.Error(t, h.UpdateDetails(DetailsUpdate{Remark: "late edit"}, testStamp))
}

func TestTransactionHeader_LinesLockedWhenClosed(t *testing.T) {
	h := newTestSale(t)
	h.Status = StatusCancelled
	_, err := h.AddLine(productLine("10", 1), testStamp)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestCustomerStatus_CanTrade(t *testing.T) {
	assert.NoError(t, CustomerStatus{Active: true}.CanTrade())
	assert.Error(t, CustomerStatus{Active: false}.CanTrade())
	assert.Error(t, CustomerStatus{Active: true, Blacklisted: true}.CanTrade())
}

func TestTransactionHeader_ReleaseLineReservation(t *testing.T) {
	h := newTestSale(t)
	in := productLine("25.00", 2)
	in.Reserved = true
	line, err := h.AddLine(in, testStamp)
	require.NoError(t, err)
	require.Len(t, h.ReservedLines(), 1)

	_, err = h.UpdateLine(line.ID, productLine("30.00", 2), testStamp)
	require.NoError(t, err)
	assert.Len(t, h.ReservedLines(), 1, "update keeps the reservation marker")

	_, err = h.ReleaseLineReservation(line.ID, testStamp)
	require.NoError(t, err)
	assert.Empty(t, h.ReservedLines())

	_, err = h.ReleaseLineReservation(line.ID, testStamp)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
