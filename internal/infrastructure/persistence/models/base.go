package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
	CreatedBy string    `gorm:"type:varchar(100)"`
	UpdatedBy string    `gorm:"type:varchar(100)"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		CreatedBy: m.CreatedBy,
		UpdatedBy: m.UpdatedBy,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
	m.CreatedBy = e.CreatedBy
	m.UpdatedBy = e.UpdatedBy
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking and the
// rendered audit notes.
type AggregateModel struct {
	BaseModel
	Version int    `gorm:"not null"`
	Notes   string `gorm:"type:text"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a *shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
	m.Notes = a.Notes
}

// ToDomainAggregateRoot rebuilds the aggregate base; the loaded version is
// what the next optimistic save must match.
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	a := shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
		Notes:      m.Notes,
	}
	a.MarkPersisted()
	return a
}

func money(d decimal.Decimal) valueobject.Money {
	return valueobject.NewMoney(d)
}

func moneyPtr(d *decimal.Decimal) *valueobject.Money {
	if d == nil {
		return nil
	}
	m := valueobject.NewMoney(*d)
	return &m
}

func decimalPtr(m *valueobject.Money) *decimal.Decimal {
	if m == nil {
		return nil
	}
	d := m.Decimal()
	return &d
}

func quantity(v int64) valueobject.Quantity {
	return valueobject.MustQuantity(v)
}

// All lists every persistence model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&ItemModel{},
		&InventoryUnitModel{},
		&StockLevelModel{},
		&TransactionHeaderModel{},
		&TransactionLineModel{},
		&RentalReturnModel{},
		&ReturnLineModel{},
		&InspectionReportModel{},
		&AuditEntryModel{},
		&NumberSequenceModel{},
		&CustomerRefModel{},
		&LocationRefModel{},
	}
}
