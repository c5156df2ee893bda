package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/printing"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CompanyInfo is printed in every document header
type CompanyInfo struct {
	Name     string
	Currency string
}

// DocumentMeta is shared by every document
type DocumentMeta struct {
	Kind      printing.DocumentKind
	Number    string
	Status    string
	PrintedAt time.Time
	PrintedBy string
}

// Labels resolves display names for the items and units a document
// references. Missing entries print a shortened id.
type Labels struct {
	Items map[uuid.UUID]inventory.Item
	Units map[uuid.UUID]inventory.InventoryUnit
}

func (l Labels) item(id *uuid.UUID) (code, name string) {
	if id == nil {
		return "", ""
	}
	if item, ok := l.Items[*id]; ok {
		return item.Code, item.Name
	}
	return shortID(*id), ""
}

func (l Labels) unit(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	if unit, ok := l.Units[*id]; ok {
		return unit.Code
	}
	return shortID(*id)
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}

// TransactionDocument is the data behind agreements, invoices and
// statements
type TransactionDocument struct {
	Meta            DocumentMeta
	Company         CompanyInfo
	Type            string
	TransactionDate time.Time
	CustomerID      uuid.UUID
	LocationID      uuid.UUID
	RentalStart     *time.Time
	RentalEnd       *time.Time
	PaymentStatus   string
	PaymentMethod   string
	Lines           []DocumentLine
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Paid            decimal.Decimal
	Balance         decimal.Decimal
	Deposit         decimal.Decimal
}

// DocumentLine is one printed transaction line
type DocumentLine struct {
	Number      int
	Type        string
	ItemCode    string
	UnitCode    string
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	Period      string
	Returned    int64
}

// NewTransactionDocument builds the printable view of a transaction
func NewTransactionDocument(h *trade.TransactionHeader, labels Labels, company CompanyInfo, printedAt time.Time, printedBy string) TransactionDocument {
	doc := TransactionDocument{
		Meta: DocumentMeta{
			Kind:      printing.KindForTransaction(h.Type),
			Number:    h.Number,
			Status:    string(h.Status),
			PrintedAt: printedAt,
			PrintedBy: printedBy,
		},
		Company:         company,
		Type:            string(h.Type),
		TransactionDate: h.TransactionDate,
		CustomerID:      h.CustomerID,
		LocationID:      h.LocationID,
		RentalStart:     h.RentalStartDate,
		RentalEnd:       h.RentalEndDate,
		PaymentStatus:   string(h.PaymentStatus),
		Subtotal:        h.Subtotal.Decimal(),
		Discount:        h.DiscountAmount.Decimal(),
		Tax:             h.TaxAmount.Decimal(),
		Total:           h.TotalAmount.Decimal(),
		Paid:            h.PaidAmount.Decimal(),
		Balance:         h.TotalAmount.Sub(h.PaidAmount).ClampZero().Decimal(),
		Deposit:         h.DepositAmount.Decimal(),
	}
	if h.PaymentMethod != nil {
		doc.PaymentMethod = string(*h.PaymentMethod)
	}

	doc.Lines = make([]DocumentLine, 0, len(h.Lines))
	for i := range h.Lines {
		l := &h.Lines[i]
		code, name := labels.item(l.ItemID)
		description := l.Description
		if description == "" {
			description = name
		}
		doc.Lines = append(doc.Lines, DocumentLine{
			Number:      l.LineNumber,
			Type:        string(l.Type),
			ItemCode:    code,
			UnitCode:    labels.unit(l.InventoryUnitID),
			Description: description,
			Quantity:    l.Quantity.Int64(),
			UnitPrice:   l.UnitPrice.Decimal(),
			Discount:    l.DiscountAmount.Decimal(),
			Tax:         l.TaxAmount.Decimal(),
			Total:       l.LineTotal.Decimal(),
			Period:      rentalPeriod(l.RentalPeriodValue, l.RentalPeriodUnit),
			Returned:    l.ReturnedQuantity.Int64(),
		})
	}
	return doc
}

func rentalPeriod(value *int, unit *trade.RentalPeriodUnit) string {
	if value == nil || unit == nil {
		return ""
	}
	word := strings.ToLower(string(*unit))
	if *value != 1 {
		word += "s"
	}
	return fmt.Sprintf("%d %s", *value, word)
}

// ReturnReceipt is the data behind a return receipt
type ReturnReceipt struct {
	Meta               DocumentMeta
	Company            CompanyInfo
	TransactionNumber  string
	CustomerID         uuid.UUID
	LocationID         uuid.UUID
	Type               string
	ReturnDate         time.Time
	ExpectedReturnDate time.Time
	DaysLate           int
	Lines              []ReceiptLine
	TotalLateFee       decimal.Decimal
	TotalDamageFee     decimal.Decimal
	DepositAmount      decimal.Decimal
	DepositRelease     decimal.Decimal
	DepositWithheld    decimal.Decimal
	Refund             decimal.Decimal
	DepositReleasedAt  *time.Time
	ProcessedBy        string
}

// ReceiptLine is one returned unit on a receipt
type ReceiptLine struct {
	Number            int
	ItemCode          string
	ItemName          string
	UnitCode          string
	Returned          int64
	Condition         string
	DamageLevel       string
	DamageDescription string
	Status            string
	LateFee           decimal.Decimal
	LateFeeWaived     bool
	DamageFee         decimal.Decimal
	CleaningFee       decimal.Decimal
	ReplacementFee    decimal.Decimal
	Total             decimal.Decimal
}

// NewReturnReceipt builds the printable view of a return
func NewReturnReceipt(r *rental.RentalReturn, transactionNumber string, labels Labels, company CompanyInfo, printedAt time.Time, printedBy string) ReturnReceipt {
	receipt := ReturnReceipt{
		Meta: DocumentMeta{
			Kind:      printing.DocumentReturnReceipt,
			Number:    r.Number,
			Status:    string(r.Status),
			PrintedAt: printedAt,
			PrintedBy: printedBy,
		},
		Company:            company,
		TransactionNumber:  transactionNumber,
		CustomerID:         r.CustomerID,
		LocationID:         r.LocationID,
		Type:               string(r.Type),
		ReturnDate:         r.ReturnDate,
		ExpectedReturnDate: r.ExpectedReturnDate,
		DaysLate:           r.DaysLate(),
		TotalLateFee:       r.TotalLateFee.Decimal(),
		TotalDamageFee:     r.TotalDamageFee.Decimal(),
		DepositAmount:      r.DepositAmount.Decimal(),
		DepositRelease:     r.DepositRelease.Decimal(),
		DepositWithheld:    r.DepositWithheld.Decimal(),
		Refund:             r.TotalRefundAmount.Decimal(),
		DepositReleasedAt:  r.DepositReleasedAt,
	}
	if r.ProcessedBy != nil {
		receipt.ProcessedBy = *r.ProcessedBy
	}

	receipt.Lines = make([]ReceiptLine, 0, len(r.Lines))
	for i := range r.Lines {
		l := &r.Lines[i]
		code, name := labels.item(&l.ItemID)
		line := ReceiptLine{
			Number:            l.LineNumber,
			ItemCode:          code,
			ItemName:          name,
			UnitCode:          labels.unit(&l.InventoryUnitID),
			Returned:          l.ReturnedQuantity.Int64(),
			DamageLevel:       string(l.DamageLevel),
			DamageDescription: l.DamageDescription,
			Status:            string(l.Status),
			LateFee:           l.LateFee.Decimal(),
			LateFeeWaived:     l.LateFeeWaived,
			DamageFee:         l.DamageFee.Decimal(),
			CleaningFee:       l.CleaningFee.Decimal(),
			ReplacementFee:    l.ReplacementFee.Decimal(),
			Total:             l.TotalCharges().Decimal(),
		}
		if l.Condition != nil {
			line.Condition = string(*l.Condition)
		}
		receipt.Lines = append(receipt.Lines, line)
	}
	return receipt
}
