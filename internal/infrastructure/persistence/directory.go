package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerDirectory answers customer standing from the customer_refs
// projection kept in sync by the customer master-data service.
type GormCustomerDirectory struct {
	db *gorm.DB
}

// NewGormCustomerDirectory creates a new GormCustomerDirectory
func NewGormCustomerDirectory(db *gorm.DB) *GormCustomerDirectory {
	return &GormCustomerDirectory{db: db}
}

// Lookup returns the standing of a customer
func (d *GormCustomerDirectory) Lookup(ctx context.Context, id uuid.UUID) (*trade.CustomerStatus, error) {
	var model models.CustomerRefModel
	if err := findOne(d.db.WithContext(ctx).Where("id = ?", id), &model, "CUSTOMER", id); err != nil {
		return nil, err
	}
	return &trade.CustomerStatus{
		ID:          model.ID,
		Active:      model.IsActive,
		Blacklisted: model.IsBlacklisted,
	}, nil
}

// GormLocationDirectory answers location existence from the location_refs projection
type GormLocationDirectory struct {
	db *gorm.DB
}

// NewGormLocationDirectory creates a new GormLocationDirectory
func NewGormLocationDirectory(db *gorm.DB) *GormLocationDirectory {
	return &GormLocationDirectory{db: db}
}

// Exists reports whether the location is known and active
func (d *GormLocationDirectory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, d.db, &models.LocationRefModel{}, "id = ? AND is_active = ?", id, true)
}

var (
	_ trade.CustomerDirectory     = (*GormCustomerDirectory)(nil)
	_ inventory.LocationDirectory = (*GormLocationDirectory)(nil)
)
