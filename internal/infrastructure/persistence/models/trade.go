package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// TransactionHeaderModel is the persistence model for the TransactionHeader aggregate root.
type TransactionHeaderModel struct {
	AggregateModel
	Number                 string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Type                   string          `gorm:"type:varchar(20);not null;index"`
	Status                 string          `gorm:"type:varchar(20);not null;index"`
	PaymentStatus          string          `gorm:"type:varchar(20);not null;index"`
	TransactionDate        time.Time       `gorm:"not null;index"`
	CustomerID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	SalesPersonID          *uuid.UUID      `gorm:"type:uuid"`
	ReferenceTransactionID *uuid.UUID      `gorm:"type:uuid;index"`
	Subtotal               decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxAmount              decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaidAmount             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DepositAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxRate                decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	PaymentMethod          *string         `gorm:"type:varchar(20)"`
	PaymentReference       string          `gorm:"type:varchar(100)"`
	RentalStartDate        *time.Time
	RentalEndDate          *time.Time `gorm:"index"`
	ActualReturnDate       *time.Time
	Lines                  []TransactionLineModel `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName returns the table name for GORM
func (TransactionHeaderModel) TableName() string {
	return "transaction_headers"
}

// ToDomain converts the persistence model to a domain TransactionHeader.
func (m *TransactionHeaderModel) ToDomain() *trade.TransactionHeader {
	h := &trade.TransactionHeader{
		BaseAggregateRoot:      m.ToDomainAggregateRoot(),
		Number:                 m.Number,
		Type:                   trade.TransactionType(m.Type),
		Status:                 trade.TransactionStatus(m.Status),
		PaymentStatus:          trade.PaymentStatus(m.PaymentStatus),
		TransactionDate:        m.TransactionDate,
		CustomerID:             m.CustomerID,
		LocationID:             m.LocationID,
		SalesPersonID:          m.SalesPersonID,
		ReferenceTransactionID: m.ReferenceTransactionID,
		Subtotal:               money(m.Subtotal),
		DiscountAmount:         money(m.DiscountAmount),
		TaxAmount:              money(m.TaxAmount),
		TotalAmount:            money(m.TotalAmount),
		PaidAmount:             money(m.PaidAmount),
		DepositAmount:          money(m.DepositAmount),
		TaxRate:                m.TaxRate,
		PaymentReference:       m.PaymentReference,
		RentalStartDate:        m.RentalStartDate,
		RentalEndDate:          m.RentalEndDate,
		ActualReturnDate:       m.ActualReturnDate,
		Lines:                  make([]trade.TransactionLine, 0, len(m.Lines)),
	}
	if m.PaymentMethod != nil {
		method := trade.PaymentMethod(*m.PaymentMethod)
		h.PaymentMethod = &method
	}
	for i := range m.Lines {
		h.Lines = append(h.Lines, *m.Lines[i].ToDomain())
	}
	return h
}

// FromDomain populates the persistence model from a domain TransactionHeader.
func (m *TransactionHeaderModel) FromDomain(h *trade.TransactionHeader) {
	m.FromDomainAggregateRoot(&h.BaseAggregateRoot)
	m.Number = h.Number
	m.Type = string(h.Type)
	m.Status = string(h.Status)
	m.PaymentStatus = string(h.PaymentStatus)
	m.TransactionDate = h.TransactionDate
	m.CustomerID = h.CustomerID
	m.LocationID = h.LocationID
	m.SalesPersonID = h.SalesPersonID
	m.ReferenceTransactionID = h.ReferenceTransactionID
	m.Subtotal = h.Subtotal.Decimal()
	m.DiscountAmount = h.DiscountAmount.Decimal()
	m.TaxAmount = h.TaxAmount.Decimal()
	m.TotalAmount = h.TotalAmount.Decimal()
	m.PaidAmount = h.PaidAmount.Decimal()
	m.DepositAmount = h.DepositAmount.Decimal()
	m.TaxRate = h.TaxRate
	m.PaymentMethod = nil
	if h.PaymentMethod != nil {
		method := string(*h.PaymentMethod)
		m.PaymentMethod = &method
	}
	m.PaymentReference = h.PaymentReference
	m.RentalStartDate = h.RentalStartDate
	m.RentalEndDate = h.RentalEndDate
	m.ActualReturnDate = h.ActualReturnDate
	m.Lines = make([]TransactionLineModel, len(h.Lines))
	for i := range h.Lines {
		m.Lines[i].FromDomain(&h.Lines[i])
	}
}

// TransactionHeaderModelFromDomain creates a new persistence model from a domain TransactionHeader.
func TransactionHeaderModelFromDomain(h *trade.TransactionHeader) *TransactionHeaderModel {
	m := &TransactionHeaderModel{}
	m.FromDomain(h)
	return m
}

// TransactionLineModel is the persistence model for a transaction line.
type TransactionLineModel struct {
	BaseModel
	TransactionID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_transaction_lines_number,priority:1"`
	LineNumber         int             `gorm:"not null;index:idx_transaction_lines_number,priority:2"`
	Type               string          `gorm:"type:varchar(20);not null"`
	ItemID             *uuid.UUID      `gorm:"type:uuid;index"`
	InventoryUnitID    *uuid.UUID      `gorm:"type:uuid;index"`
	Reserved           bool            `gorm:"not null;default:false"`
	Description        string          `gorm:"type:varchar(500)"`
	Quantity           int64           `gorm:"not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TaxRate            decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	LineTotal          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	RentalPeriodValue  *int
	RentalPeriodUnit   *string `gorm:"type:varchar(10)"`
	RentalStartDate    *time.Time
	RentalEndDate      *time.Time
	ReturnedQuantity   int64 `gorm:"not null;default:0"`
	ReturnDate         *time.Time
	Notes              string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TransactionLineModel) TableName() string {
	return "transaction_lines"
}

// ToDomain converts the persistence model to a domain TransactionLine.
func (m *TransactionLineModel) ToDomain() *trade.TransactionLine {
	l := &trade.TransactionLine{
		BaseEntity:         m.BaseModel.ToDomain(),
		TransactionID:      m.TransactionID,
		LineNumber:         m.LineNumber,
		Type:               trade.LineType(m.Type),
		ItemID:             m.ItemID,
		InventoryUnitID:    m.InventoryUnitID,
		Reserved:           m.Reserved,
		Description:        m.Description,
		Quantity:           quantity(m.Quantity),
		UnitPrice:          money(m.UnitPrice),
		DiscountPercentage: m.DiscountPercentage,
		DiscountAmount:     money(m.DiscountAmount),
		TaxRate:            m.TaxRate,
		TaxAmount:          money(m.TaxAmount),
		LineTotal:          money(m.LineTotal),
		RentalPeriodValue:  m.RentalPeriodValue,
		RentalStartDate:    m.RentalStartDate,
		RentalEndDate:      m.RentalEndDate,
		ReturnedQuantity:   quantity(m.ReturnedQuantity),
		ReturnDate:         m.ReturnDate,
		Notes:              m.Notes,
	}
	if m.RentalPeriodUnit != nil {
		unit := trade.RentalPeriodUnit(*m.RentalPeriodUnit)
		l.RentalPeriodUnit = &unit
	}
	return l
}

// FromDomain populates the persistence model from a domain TransactionLine.
func (m *TransactionLineModel) FromDomain(l *trade.TransactionLine) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.TransactionID = l.TransactionID
	m.LineNumber = l.LineNumber
	m.Type = string(l.Type)
	m.ItemID = l.ItemID
	m.InventoryUnitID = l.InventoryUnitID
	m.Reserved = l.Reserved
	m.Description = l.Description
	m.Quantity = l.Quantity.Int64()
	m.UnitPrice = l.UnitPrice.Decimal()
	m.DiscountPercentage = l.DiscountPercentage
	m.DiscountAmount = l.DiscountAmount.Decimal()
	m.TaxRate = l.TaxRate
	m.TaxAmount = l.TaxAmount.Decimal()
	m.LineTotal = l.LineTotal.Decimal()
	m.RentalPeriodValue = l.RentalPeriodValue
	m.RentalPeriodUnit = nil
	if l.RentalPeriodUnit != nil {
		unit := string(*l.RentalPeriodUnit)
		m.RentalPeriodUnit = &unit
	}
	m.RentalStartDate = l.RentalStartDate
	m.RentalEndDate = l.RentalEndDate
	m.ReturnedQuantity = l.ReturnedQuantity.Int64()
	m.ReturnDate = l.ReturnDate
	m.Notes = l.Notes
}
