package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/shopspring/decimal"
)

// RentalReturnModel is the persistence model for the RentalReturn aggregate root.
type RentalReturnModel struct {
	AggregateModel
	Number             string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	TransactionID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReturnDate         time.Time       `gorm:"not null"`
	ExpectedReturnDate time.Time       `gorm:"not null"`
	Type               string          `gorm:"type:varchar(20);not null"`
	Status             string          `gorm:"type:varchar(30);not null;index"`
	ProcessedBy        *string         `gorm:"type:varchar(100)"`
	TotalLateFee       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalDamageFee     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DepositAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DepositRelease     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DepositWithheld    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalRefundAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DepositReleasedAt  *time.Time
	Lines              []ReturnLineModel `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (RentalReturnModel) TableName() string {
	return "rental_returns"
}

// ToDomain converts the persistence model to a domain RentalReturn.
func (m *RentalReturnModel) ToDomain() *rental.RentalReturn {
	r := &rental.RentalReturn{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		Number:             m.Number,
		TransactionID:      m.TransactionID,
		CustomerID:         m.CustomerID,
		LocationID:         m.LocationID,
		ReturnDate:         m.ReturnDate,
		ExpectedReturnDate: m.ExpectedReturnDate,
		Type:               rental.ReturnType(m.Type),
		Status:             rental.ReturnStatus(m.Status),
		ProcessedBy:        m.ProcessedBy,
		TotalLateFee:       money(m.TotalLateFee),
		TotalDamageFee:     money(m.TotalDamageFee),
		DepositAmount:      money(m.DepositAmount),
		DepositRelease:     money(m.DepositRelease),
		DepositWithheld:    money(m.DepositWithheld),
		TotalRefundAmount:  money(m.TotalRefundAmount),
		DepositReleasedAt:  m.DepositReleasedAt,
		Lines:              make([]rental.ReturnLine, 0, len(m.Lines)),
	}
	for i := range m.Lines {
		r.Lines = append(r.Lines, *m.Lines[i].ToDomain())
	}
	return r
}

// FromDomain populates the persistence model from a domain RentalReturn.
func (m *RentalReturnModel) FromDomain(r *rental.RentalReturn) {
	m.FromDomainAggregateRoot(&r.BaseAggregateRoot)
	m.Number = r.Number
	m.TransactionID = r.TransactionID
	m.CustomerID = r.CustomerID
	m.LocationID = r.LocationID
	m.ReturnDate = r.ReturnDate
	m.ExpectedReturnDate = r.ExpectedReturnDate
	m.Type = string(r.Type)
	m.Status = string(r.Status)
	m.ProcessedBy = r.ProcessedBy
	m.TotalLateFee = r.TotalLateFee.Decimal()
	m.TotalDamageFee = r.TotalDamageFee.Decimal()
	m.DepositAmount = r.DepositAmount.Decimal()
	m.DepositRelease = r.DepositRelease.Decimal()
	m.DepositWithheld = r.DepositWithheld.Decimal()
	m.TotalRefundAmount = r.TotalRefundAmount.Decimal()
	m.DepositReleasedAt = r.DepositReleasedAt
	m.Lines = make([]ReturnLineModel, len(r.Lines))
	for i := range r.Lines {
		m.Lines[i].FromDomain(&r.Lines[i])
	}
}

// RentalReturnModelFromDomain creates a new persistence model from a domain RentalReturn.
func RentalReturnModelFromDomain(r *rental.RentalReturn) *RentalReturnModel {
	m := &RentalReturnModel{}
	m.FromDomain(r)
	return m
}

// ReturnLineModel is the persistence model for a return line.
type ReturnLineModel struct {
	BaseModel
	ReturnID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_return_lines_number,priority:1"`
	LineNumber        int             `gorm:"not null;index:idx_return_lines_number,priority:2"`
	InventoryUnitID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionLineID *uuid.UUID      `gorm:"type:uuid"`
	ItemID            uuid.UUID       `gorm:"type:uuid;not null"`
	OriginalQuantity  int64           `gorm:"not null"`
	ReturnedQuantity  int64           `gorm:"not null"`
	Condition         *string         `gorm:"type:varchar(20)"`
	DamageLevel       string          `gorm:"type:varchar(20);not null;index"`
	DamageDescription string          `gorm:"type:text"`
	Status            string          `gorm:"type:varchar(20);not null;index"`
	DailyRate         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	LateFee           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	LateFeeWaived     bool            `gorm:"not null;default:false"`
	DamageFee         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CleaningFee       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	ReplacementFee    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	IsProcessed       bool            `gorm:"not null;default:false"`
	ProcessedAt       *time.Time
	ProcessedBy       *string `gorm:"type:varchar(100)"`
	Notes             string  `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReturnLineModel) TableName() string {
	return "rental_return_lines"
}

// ToDomain converts the persistence model to a domain ReturnLine.
func (m *ReturnLineModel) ToDomain() *rental.ReturnLine {
	return &rental.ReturnLine{
		BaseEntity:        m.BaseModel.ToDomain(),
		ReturnID:          m.ReturnID,
		LineNumber:        m.LineNumber,
		InventoryUnitID:   m.InventoryUnitID,
		TransactionLineID: m.TransactionLineID,
		ItemID:            m.ItemID,
		OriginalQuantity:  quantity(m.OriginalQuantity),
		ReturnedQuantity:  quantity(m.ReturnedQuantity),
		Condition:         conditionPtr(m.Condition),
		DamageLevel:       rental.DamageLevel(m.DamageLevel),
		DamageDescription: m.DamageDescription,
		Status:            rental.LineStatus(m.Status),
		DailyRate:         money(m.DailyRate),
		LateFee:           money(m.LateFee),
		LateFeeWaived:     m.LateFeeWaived,
		DamageFee:         money(m.DamageFee),
		CleaningFee:       money(m.CleaningFee),
		ReplacementFee:    money(m.ReplacementFee),
		IsProcessed:       m.IsProcessed,
		ProcessedAt:       m.ProcessedAt,
		ProcessedBy:       m.ProcessedBy,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain ReturnLine.
func (m *ReturnLineModel) FromDomain(l *rental.ReturnLine) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.ReturnID = l.ReturnID
	m.LineNumber = l.LineNumber
	m.InventoryUnitID = l.InventoryUnitID
	m.TransactionLineID = l.TransactionLineID
	m.ItemID = l.ItemID
	m.OriginalQuantity = l.OriginalQuantity.Int64()
	m.ReturnedQuantity = l.ReturnedQuantity.Int64()
	m.Condition = conditionString(l.Condition)
	m.DamageLevel = string(l.DamageLevel)
	m.DamageDescription = l.DamageDescription
	m.Status = string(l.Status)
	m.DailyRate = l.DailyRate.Decimal()
	m.LateFee = l.LateFee.Decimal()
	m.LateFeeWaived = l.LateFeeWaived
	m.DamageFee = l.DamageFee.Decimal()
	m.CleaningFee = l.CleaningFee.Decimal()
	m.ReplacementFee = l.ReplacementFee.Decimal()
	m.IsProcessed = l.IsProcessed
	m.ProcessedAt = l.ProcessedAt
	m.ProcessedBy = l.ProcessedBy
	m.Notes = l.Notes
}

// InspectionReportModel is the persistence model for the InspectionReport aggregate root.
type InspectionReportModel struct {
	AggregateModel
	ReturnID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	InventoryUnitID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	InspectorID         string           `gorm:"type:varchar(100);not null"`
	Type                string           `gorm:"type:varchar(20);not null"`
	InspectionDate      time.Time        `gorm:"not null"`
	Status              string           `gorm:"type:varchar(20);not null;index"`
	DamageLevel         string           `gorm:"type:varchar(20);not null"`
	DamageDescription   string           `gorm:"type:text"`
	RepairEstimate      *decimal.Decimal `gorm:"type:decimal(10,2)"`
	ReplacementEstimate *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Condition           *string          `gorm:"type:varchar(20)"`
	ChecklistNotes      string           `gorm:"type:text"`
	EvidenceKeys        []string         `gorm:"type:text;serializer:json"`
	CompletedAt         *time.Time
}

// TableName returns the table name for GORM
func (InspectionReportModel) TableName() string {
	return "inspection_reports"
}

// ToDomain converts the persistence model to a domain InspectionReport.
func (m *InspectionReportModel) ToDomain() *rental.InspectionReport {
	keys := m.EvidenceKeys
	if keys == nil {
		keys = []string{}
	}
	return &rental.InspectionReport{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		ReturnID:            m.ReturnID,
		InventoryUnitID:     m.InventoryUnitID,
		InspectorID:         m.InspectorID,
		Type:                rental.InspectionType(m.Type),
		InspectionDate:      m.InspectionDate,
		Status:              rental.InspectionStatus(m.Status),
		DamageLevel:         rental.DamageLevel(m.DamageLevel),
		DamageDescription:   m.DamageDescription,
		RepairEstimate:      moneyPtr(m.RepairEstimate),
		ReplacementEstimate: moneyPtr(m.ReplacementEstimate),
		Condition:           conditionPtr(m.Condition),
		ChecklistNotes:      m.ChecklistNotes,
		EvidenceKeys:        keys,
		CompletedAt:         m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain InspectionReport.
func (m *InspectionReportModel) FromDomain(r *rental.InspectionReport) {
	m.FromDomainAggregateRoot(&r.BaseAggregateRoot)
	m.ReturnID = r.ReturnID
	m.InventoryUnitID = r.InventoryUnitID
	m.InspectorID = r.InspectorID
	m.Type = string(r.Type)
	m.InspectionDate = r.InspectionDate
	m.Status = string(r.Status)
	m.DamageLevel = string(r.DamageLevel)
	m.DamageDescription = r.DamageDescription
	m.RepairEstimate = decimalPtr(r.RepairEstimate)
	m.ReplacementEstimate = decimalPtr(r.ReplacementEstimate)
	m.Condition = conditionString(r.Condition)
	m.ChecklistNotes = r.ChecklistNotes
	m.EvidenceKeys = append([]string(nil), r.EvidenceKeys...)
	m.CompletedAt = r.CompletedAt
}

// InspectionReportModelFromDomain creates a new persistence model from a domain InspectionReport.
func InspectionReportModelFromDomain(r *rental.InspectionReport) *InspectionReportModel {
	m := &InspectionReportModel{}
	m.FromDomain(r)
	return m
}

func conditionPtr(s *string) *inventory.UnitCondition {
	if s == nil {
		return nil
	}
	c := inventory.UnitCondition(*s)
	return &c
}

func conditionString(c *inventory.UnitCondition) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}
