package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ItemModel is the persistence model for the Item aggregate root.
type ItemModel struct {
	AggregateModel
	Code                 string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                 string           `gorm:"type:varchar(200);not null"`
	Description          string           `gorm:"type:text"`
	Category             string           `gorm:"type:varchar(100);index"`
	Brand                string           `gorm:"type:varchar(100);index"`
	Type                 string           `gorm:"type:varchar(20);not null;index"`
	Status               string           `gorm:"type:varchar(20);not null;index"`
	PurchasePrice        decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	RentalRatePerDay     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	RentalRatePerWeek    *decimal.Decimal `gorm:"type:decimal(10,2)"`
	RentalRatePerMonth   *decimal.Decimal `gorm:"type:decimal(10,2)"`
	SalePrice            *decimal.Decimal `gorm:"type:decimal(10,2)"`
	SecurityDeposit      decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	MinRentalDays        int              `gorm:"not null"`
	MaxRentalDays        *int
	SerialNumberRequired bool  `gorm:"not null;default:false"`
	WarrantyDays         int   `gorm:"not null;default:0"`
	ReorderLevel         int64 `gorm:"not null;default:0"`
	ReorderQuantity      int64 `gorm:"not null;default:0"`
	IsActive             bool  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *ItemModel) ToDomain() *inventory.Item {
	return &inventory.Item{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		Category:          m.Category,
		Brand:             m.Brand,
		Type:              inventory.ItemType(m.Type),
		Status:            inventory.ItemStatus(m.Status),
		Pricing: inventory.ItemPricing{
			PurchasePrice:      money(m.PurchasePrice),
			RentalRatePerDay:   moneyPtr(m.RentalRatePerDay),
			RentalRatePerWeek:  moneyPtr(m.RentalRatePerWeek),
			RentalRatePerMonth: moneyPtr(m.RentalRatePerMonth),
			SalePrice:          moneyPtr(m.SalePrice),
			SecurityDeposit:    money(m.SecurityDeposit),
		},
		MinRentalDays:        m.MinRentalDays,
		MaxRentalDays:        m.MaxRentalDays,
		SerialNumberRequired: m.SerialNumberRequired,
		WarrantyDays:         m.WarrantyDays,
		ReorderLevel:         m.ReorderLevel,
		ReorderQuantity:      m.ReorderQuantity,
		IsActive:             m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Item.
func (m *ItemModel) FromDomain(i *inventory.Item) {
	m.FromDomainAggregateRoot(&i.BaseAggregateRoot)
	m.Code = i.Code
	m.Name = i.Name
	m.Description = i.Description
	m.Category = i.Category
	m.Brand = i.Brand
	m.Type = string(i.Type)
	m.Status = string(i.Status)
	m.PurchasePrice = i.Pricing.PurchasePrice.Decimal()
	m.RentalRatePerDay = decimalPtr(i.Pricing.RentalRatePerDay)
	m.RentalRatePerWeek = decimalPtr(i.Pricing.RentalRatePerWeek)
	m.RentalRatePerMonth = decimalPtr(i.Pricing.RentalRatePerMonth)
	m.SalePrice = decimalPtr(i.Pricing.SalePrice)
	m.SecurityDeposit = i.Pricing.SecurityDeposit.Decimal()
	m.MinRentalDays = i.MinRentalDays
	m.MaxRentalDays = i.MaxRentalDays
	m.SerialNumberRequired = i.SerialNumberRequired
	m.WarrantyDays = i.WarrantyDays
	m.ReorderLevel = i.ReorderLevel
	m.ReorderQuantity = i.ReorderQuantity
	m.IsActive = i.IsActive
}

// ItemModelFromDomain creates a new persistence model from a domain Item.
func ItemModelFromDomain(i *inventory.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(i)
	return m
}

// InventoryUnitModel is the persistence model for the InventoryUnit aggregate root.
type InventoryUnitModel struct {
	AggregateModel
	Code                 string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	SerialNumber         *string         `gorm:"type:varchar(100);uniqueIndex"`
	ItemID               uuid.UUID       `gorm:"type:uuid;not null;index:idx_units_item_location_status,priority:1"`
	LocationID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_units_item_location_status,priority:2"`
	Status               string          `gorm:"type:varchar(20);not null;index:idx_units_item_location_status,priority:3"`
	Condition            string          `gorm:"type:varchar(20);not null"`
	PurchasePrice        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PurchaseDate         *time.Time
	WarrantyExpiry       *time.Time
	LastMaintenanceDate  *time.Time
	NextMaintenanceDate  *time.Time
	RentalCount          int `gorm:"not null;default:0"`
	CumulativeRentalDays int `gorm:"not null;default:0"`
	LastRentedAt         *time.Time
	IsActive             bool `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryUnitModel) TableName() string {
	return "inventory_units"
}

// ToDomain converts the persistence model to a domain InventoryUnit.
func (m *InventoryUnitModel) ToDomain() *inventory.InventoryUnit {
	return &inventory.InventoryUnit{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		Code:                 m.Code,
		SerialNumber:         m.SerialNumber,
		ItemID:               m.ItemID,
		LocationID:           m.LocationID,
		Status:               inventory.UnitStatus(m.Status),
		Condition:            inventory.UnitCondition(m.Condition),
		PurchasePrice:        money(m.PurchasePrice),
		PurchaseDate:         m.PurchaseDate,
		WarrantyExpiry:       m.WarrantyExpiry,
		LastMaintenanceDate:  m.LastMaintenanceDate,
		NextMaintenanceDate:  m.NextMaintenanceDate,
		RentalCount:          m.RentalCount,
		CumulativeRentalDays: m.CumulativeRentalDays,
		LastRentedAt:         m.LastRentedAt,
		IsActive:             m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain InventoryUnit.
func (m *InventoryUnitModel) FromDomain(u *inventory.InventoryUnit) {
	m.FromDomainAggregateRoot(&u.BaseAggregateRoot)
	m.Code = u.Code
	m.SerialNumber = u.SerialNumber
	m.ItemID = u.ItemID
	m.LocationID = u.LocationID
	m.Status = string(u.Status)
	m.Condition = string(u.Condition)
	m.PurchasePrice = u.PurchasePrice.Decimal()
	m.PurchaseDate = u.PurchaseDate
	m.WarrantyExpiry = u.WarrantyExpiry
	m.LastMaintenanceDate = u.LastMaintenanceDate
	m.NextMaintenanceDate = u.NextMaintenanceDate
	m.RentalCount = u.RentalCount
	m.CumulativeRentalDays = u.CumulativeRentalDays
	m.LastRentedAt = u.LastRentedAt
	m.IsActive = u.IsActive
}

// InventoryUnitModelFromDomain creates a new persistence model from a domain InventoryUnit.
func InventoryUnitModelFromDomain(u *inventory.InventoryUnit) *InventoryUnitModel {
	m := &InventoryUnitModel{}
	m.FromDomain(u)
	return m
}

// StockLevelModel is the persistence model for the StockLevel aggregate root.
// One row per (item, location).
type StockLevelModel struct {
	AggregateModel
	ItemID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_item_location,priority:1"`
	LocationID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_item_location,priority:2"`
	QuantityOnHand    int64     `gorm:"not null;default:0"`
	QuantityAvailable int64     `gorm:"not null;default:0"`
	QuantityReserved  int64     `gorm:"not null;default:0"`
	QuantityOnOrder   int64     `gorm:"not null;default:0"`
	MinimumLevel      int64     `gorm:"not null;default:0"`
	MaximumLevel      *int64
	ReorderPoint      int64 `gorm:"not null;default:0"`
	IsActive          bool  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLevelModel) TableName() string {
	return "stock_levels"
}

// ToDomain converts the persistence model to a domain StockLevel.
func (m *StockLevelModel) ToDomain() *inventory.StockLevel {
	level := &inventory.StockLevel{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ItemID:            m.ItemID,
		LocationID:        m.LocationID,
		QuantityOnHand:    quantity(m.QuantityOnHand),
		QuantityAvailable: quantity(m.QuantityAvailable),
		QuantityReserved:  quantity(m.QuantityReserved),
		QuantityOnOrder:   quantity(m.QuantityOnOrder),
		MinimumLevel:      quantity(m.MinimumLevel),
		ReorderPoint:      quantity(m.ReorderPoint),
		IsActive:          m.IsActive,
	}
	if m.MaximumLevel != nil {
		maxLevel := quantity(*m.MaximumLevel)
		level.MaximumLevel = &maxLevel
	}
	return level
}

// FromDomain populates the persistence model from a domain StockLevel.
func (m *StockLevelModel) FromDomain(l *inventory.StockLevel) {
	m.FromDomainAggregateRoot(&l.BaseAggregateRoot)
	m.ItemID = l.ItemID
	m.LocationID = l.LocationID
	m.QuantityOnHand = l.QuantityOnHand.Int64()
	m.QuantityAvailable = l.QuantityAvailable.Int64()
	m.QuantityReserved = l.QuantityReserved.Int64()
	m.QuantityOnOrder = l.QuantityOnOrder.Int64()
	m.MinimumLevel = l.MinimumLevel.Int64()
	m.ReorderPoint = l.ReorderPoint.Int64()
	m.IsActive = l.IsActive
	m.MaximumLevel = nil
	if l.MaximumLevel != nil {
		v := l.MaximumLevel.Int64()
		m.MaximumLevel = &v
	}
}

// StockLevelModelFromDomain creates a new persistence model from a domain StockLevel.
func StockLevelModelFromDomain(l *inventory.StockLevel) *StockLevelModel {
	m := &StockLevelModel{}
	m.FromDomain(l)
	return m
}
