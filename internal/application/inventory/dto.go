package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// CreateItemRequest represents a request to create a catalog item
type CreateItemRequest struct {
	Code                 string             `json:"code" binding:"required,max=50,item_code"`
	Name                 string             `json:"name" binding:"required,max=200"`
	Description          string             `json:"description" binding:"max=2000"`
	Category             string             `json:"category" binding:"max=100"`
	Brand                string             `json:"brand" binding:"max=100"`
	Type                 string             `json:"item_type" binding:"required,oneof=RENTAL SALE BOTH"`
	PurchasePrice        valueobject.Money  `json:"purchase_price" binding:"money"`
	RentalRatePerDay     *valueobject.Money `json:"rental_rate_per_day" binding:"omitempty,money"`
	RentalRatePerWeek    *valueobject.Money `json:"rental_rate_per_week" binding:"omitempty,money"`
	RentalRatePerMonth   *valueobject.Money `json:"rental_rate_per_month" binding:"omitempty,money"`
	SalePrice            *valueobject.Money `json:"sale_price" binding:"omitempty,money"`
	SecurityDeposit      valueobject.Money  `json:"security_deposit" binding:"money"`
	MinRentalDays        int                `json:"min_rental_days" binding:"min=0"`
	MaxRentalDays        *int               `json:"max_rental_days" binding:"omitempty,min=1"`
	SerialNumberRequired bool               `json:"serial_number_required"`
	WarrantyDays         int                `json:"warranty_days" binding:"min=0"`
	ReorderLevel         int64              `json:"reorder_level" binding:"min=0"`
	ReorderQuantity      int64              `json:"reorder_quantity" binding:"min=0"`
}

// UpdateItemPricingRequest replaces an item's pricing and rental terms
type UpdateItemPricingRequest struct {
	PurchasePrice      valueobject.Money  `json:"purchase_price" binding:"money"`
	RentalRatePerDay   *valueobject.Money `json:"rental_rate_per_day" binding:"omitempty,money"`
	RentalRatePerWeek  *valueobject.Money `json:"rental_rate_per_week" binding:"omitempty,money"`
	RentalRatePerMonth *valueobject.Money `json:"rental_rate_per_month" binding:"omitempty,money"`
	SalePrice          *valueobject.Money `json:"sale_price" binding:"omitempty,money"`
	SecurityDeposit    valueobject.Money  `json:"security_deposit" binding:"money"`
	MinRentalDays      *int               `json:"min_rental_days" binding:"omitempty,min=1"`
	MaxRentalDays      *int               `json:"max_rental_days" binding:"omitempty,min=1"`
}

// ChangeItemStatusRequest moves an item along its lifecycle
type ChangeItemStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE DISCONTINUED"`
}

// ItemListFilter represents filter options for item lists
type ItemListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"item_type" binding:"omitempty,oneof=RENTAL SALE BOTH"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE DISCONTINUED"`
	Category string `form:"category"`
	Brand    string `form:"brand"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID                   uuid.UUID          `json:"id"`
	Code                 string             `json:"code"`
	Name                 string             `json:"name"`
	Description          string             `json:"description,omitempty"`
	Category             string             `json:"category,omitempty"`
	Brand                string             `json:"brand,omitempty"`
	Type                 string             `json:"item_type"`
	Status               string             `json:"status"`
	PurchasePrice        valueobject.Money  `json:"purchase_price"`
	RentalRatePerDay     *valueobject.Money `json:"rental_rate_per_day,omitempty"`
	RentalRatePerWeek    *valueobject.Money `json:"rental_rate_per_week,omitempty"`
	RentalRatePerMonth   *valueobject.Money `json:"rental_rate_per_month,omitempty"`
	SalePrice            *valueobject.Money `json:"sale_price,omitempty"`
	SecurityDeposit      valueobject.Money  `json:"security_deposit"`
	MinRentalDays        int                `json:"min_rental_days"`
	MaxRentalDays        *int               `json:"max_rental_days,omitempty"`
	SerialNumberRequired bool               `json:"serial_number_required"`
	WarrantyDays         int                `json:"warranty_days"`
	ReorderLevel         int64              `json:"reorder_level"`
	ReorderQuantity      int64              `json:"reorder_quantity"`
	IsRentable           bool               `json:"is_rentable"`
	IsSaleable           bool               `json:"is_saleable"`
	IsActive             bool               `json:"is_active"`
	Notes                string             `json:"notes,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
	CreatedBy            string             `json:"created_by,omitempty"`
	UpdatedBy            string             `json:"updated_by,omitempty"`
	Version              int                `json:"version"`
}

// ToItemResponse converts a domain item to a response
func ToItemResponse(i *inventory.Item) ItemResponse {
	return ItemResponse{
		ID:                   i.ID,
		Code:                 i.Code,
		Name:                 i.Name,
		Description:          i.Description,
		Category:             i.Category,
		Brand:                i.Brand,
		Type:                 string(i.Type),
		Status:               string(i.Status),
		PurchasePrice:        i.Pricing.PurchasePrice,
		RentalRatePerDay:     i.Pricing.RentalRatePerDay,
		RentalRatePerWeek:    i.Pricing.RentalRatePerWeek,
		RentalRatePerMonth:   i.Pricing.RentalRatePerMonth,
		SalePrice:            i.Pricing.SalePrice,
		SecurityDeposit:      i.Pricing.SecurityDeposit,
		MinRentalDays:        i.MinRentalDays,
		MaxRentalDays:        i.MaxRentalDays,
		SerialNumberRequired: i.SerialNumberRequired,
		WarrantyDays:         i.WarrantyDays,
		ReorderLevel:         i.ReorderLevel,
		ReorderQuantity:      i.ReorderQuantity,
		IsRentable:           i.IsRentable(),
		IsSaleable:           i.IsSaleable(),
		IsActive:             i.IsActive,
		Notes:                i.Notes,
		CreatedAt:            i.CreatedAt,
		UpdatedAt:            i.UpdatedAt,
		CreatedBy:            i.CreatedBy,
		UpdatedBy:            i.UpdatedBy,
		Version:              i.Version,
	}
}

// ToItemResponses converts a slice of items
func ToItemResponses(items []inventory.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out
}

// ReceiveUnitRequest represents a request to put a new unit into stock
type ReceiveUnitRequest struct {
	Code           string            `json:"code" binding:"required,max=50,item_code"`
	SerialNumber   string            `json:"serial_number" binding:"max=100"`
	ItemID         uuid.UUID         `json:"item_id" binding:"required"`
	LocationID     uuid.UUID         `json:"location_id" binding:"required"`
	Condition      string            `json:"condition" binding:"omitempty,oneof=NEW EXCELLENT GOOD FAIR POOR DAMAGED"`
	PurchasePrice  valueobject.Money `json:"purchase_price" binding:"money"`
	PurchaseDate   *time.Time        `json:"purchase_date"`
	WarrantyExpiry *time.Time        `json:"warranty_expiry"`
}

// UnitActionRequest carries the optional inputs of unit lifecycle operations
type UnitActionRequest struct {
	Reason              string     `json:"reason" binding:"max=500"`
	Condition           string     `json:"condition" binding:"omitempty,oneof=NEW EXCELLENT GOOD FAIR POOR DAMAGED"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date"`
	LocationID          *uuid.UUID `json:"location_id"`
}

// UnitListFilter represents filter options for unit lists
type UnitListFilter struct {
	Search     string     `form:"search"`
	ItemID     *uuid.UUID `form:"-"`
	LocationID *uuid.UUID `form:"-"`
	Status     string     `form:"status" binding:"omitempty,oneof=AVAILABLE RENTED SOLD MAINTENANCE DAMAGED RETIRED"`
	Condition  string     `form:"condition" binding:"omitempty,oneof=NEW EXCELLENT GOOD FAIR POOR DAMAGED"`
	IsActive   *bool      `form:"is_active"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UnitResponse represents an inventory unit in API responses
type UnitResponse struct {
	ID                   uuid.UUID         `json:"id"`
	Code                 string            `json:"code"`
	SerialNumber         *string           `json:"serial_number,omitempty"`
	ItemID               uuid.UUID         `json:"item_id"`
	LocationID           uuid.UUID         `json:"location_id"`
	Status               string            `json:"status"`
	Condition            string            `json:"condition"`
	PurchasePrice        valueobject.Money `json:"purchase_price"`
	PurchaseDate         *time.Time        `json:"purchase_date,omitempty"`
	WarrantyExpiry       *time.Time        `json:"warranty_expiry,omitempty"`
	LastMaintenanceDate  *time.Time        `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate  *time.Time        `json:"next_maintenance_date,omitempty"`
	RentalCount          int               `json:"rental_count"`
	CumulativeRentalDays int               `json:"cumulative_rental_days"`
	LastRentedAt         *time.Time        `json:"last_rented_at,omitempty"`
	AllowedTransitions   []string          `json:"allowed_transitions"`
	IsActive             bool              `json:"is_active"`
	Notes                string            `json:"notes,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
	Version              int               `json:"version"`
}

// ToUnitResponse converts a domain unit to a response
func ToUnitResponse(u *inventory.InventoryUnit) UnitResponse {
	targets := inventory.UnitTransitions.Targets(u.Status)
	allowed := make([]string, len(targets))
	for i, t := range targets {
		allowed[i] = string(t)
	}
	return UnitResponse{
		ID:                   u.ID,
		Code:                 u.Code,
		SerialNumber:         u.SerialNumber,
		ItemID:               u.ItemID,
		LocationID:           u.LocationID,
		Status:               string(u.Status),
		Condition:            string(u.Condition),
		PurchasePrice:        u.PurchasePrice,
		PurchaseDate:         u.PurchaseDate,
		WarrantyExpiry:       u.WarrantyExpiry,
		LastMaintenanceDate:  u.LastMaintenanceDate,
		NextMaintenanceDate:  u.NextMaintenanceDate,
		RentalCount:          u.RentalCount,
		CumulativeRentalDays: u.CumulativeRentalDays,
		LastRentedAt:         u.LastRentedAt,
		AllowedTransitions:   allowed,
		IsActive:             u.IsActive,
		Notes:                u.Notes,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
		Version:              u.Version,
	}
}

// ToUnitResponses converts a slice of units
func ToUnitResponses(units []inventory.InventoryUnit) []UnitResponse {
	out := make([]UnitResponse, len(units))
	for i := range units {
		out[i] = ToUnitResponse(&units[i])
	}
	return out
}

// StockQuantityRequest targets one (item, location) stock level
type StockQuantityRequest struct {
	ItemID     uuid.UUID `json:"item_id" binding:"required"`
	LocationID uuid.UUID `json:"location_id" binding:"required"`
	Quantity   int64     `json:"quantity"`
	Reason     string    `json:"reason" binding:"max=500"`
}

// UpdateStockLevelsRequest sets the replenishment thresholds of a level
type UpdateStockLevelsRequest struct {
	ItemID       uuid.UUID `json:"item_id" binding:"required"`
	LocationID   uuid.UUID `json:"location_id" binding:"required"`
	MinimumLevel int64     `json:"minimum_level" binding:"min=0"`
	MaximumLevel *int64    `json:"maximum_level" binding:"omitempty,min=0"`
	ReorderPoint int64     `json:"reorder_point" binding:"min=0"`
	OnOrderDelta *int64    `json:"on_order_delta"`
}

// StockLevelResponse represents a stock level in API responses
type StockLevelResponse struct {
	ID                uuid.UUID `json:"id"`
	ItemID            uuid.UUID `json:"item_id"`
	LocationID        uuid.UUID `json:"location_id"`
	QuantityOnHand    int64     `json:"quantity_on_hand"`
	QuantityAvailable int64     `json:"quantity_available"`
	QuantityReserved  int64     `json:"quantity_reserved"`
	QuantityOnOrder   int64     `json:"quantity_on_order"`
	MinimumLevel      int64     `json:"minimum_level"`
	MaximumLevel      *int64    `json:"maximum_level,omitempty"`
	ReorderPoint      int64     `json:"reorder_point"`
	IsBelowMinimum    bool      `json:"is_below_minimum"`
	IsAboveMaximum    bool      `json:"is_above_maximum"`
	NeedsReorder      bool      `json:"needs_reorder"`
	IsActive          bool      `json:"is_active"`
	UpdatedAt         time.Time `json:"updated_at"`
	Version           int       `json:"version"`
}

// ToStockLevelResponse converts a domain stock level to a response
func ToStockLevelResponse(l *inventory.StockLevel) StockLevelResponse {
	resp := StockLevelResponse{
		ID:                l.ID,
		ItemID:            l.ItemID,
		LocationID:        l.LocationID,
		QuantityOnHand:    l.QuantityOnHand.Int64(),
		QuantityAvailable: l.QuantityAvailable.Int64(),
		QuantityReserved:  l.QuantityReserved.Int64(),
		QuantityOnOrder:   l.QuantityOnOrder.Int64(),
		MinimumLevel:      l.MinimumLevel.Int64(),
		ReorderPoint:      l.ReorderPoint.Int64(),
		IsBelowMinimum:    l.IsBelowMinimum(),
		IsAboveMaximum:    l.IsAboveMaximum(),
		NeedsReorder:      l.NeedsReorder(),
		IsActive:          l.IsActive,
		UpdatedAt:         l.UpdatedAt,
		Version:           l.Version,
	}
	if l.MaximumLevel != nil {
		maxLevel := l.MaximumLevel.Int64()
		resp.MaximumLevel = &maxLevel
	}
	return resp
}

// ToStockLevelResponses converts a slice of stock levels
func ToStockLevelResponses(levels []inventory.StockLevel) []StockLevelResponse {
	out := make([]StockLevelResponse, len(levels))
	for i := range levels {
		out[i] = ToStockLevelResponse(&levels[i])
	}
	return out
}

// StockListFilter pages the low-stock listing
type StockListFilter struct {
	LocationID *uuid.UUID `form:"-"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}
