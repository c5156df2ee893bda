package telemetry

import (
	"context"
	"time"

	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRentalStateProvider answers the gauge queries of BusinessMetrics
// straight from the database
type GormRentalStateProvider struct {
	db *gorm.DB
}

// NewGormRentalStateProvider creates a GormRentalStateProvider
func NewGormRentalStateProvider(db *gorm.DB) *GormRentalStateProvider {
	return &GormRentalStateProvider{db: db}
}

// CountOverdueRentals counts in-progress rentals whose end date is before
// the day of asOf
func (p *GormRentalStateProvider) CountOverdueRentals(ctx context.Context, asOf time.Time) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.TransactionHeaderModel{}).
		Where("type = ? AND status = ?", string(trade.TransactionTypeRental), string(trade.StatusInProgress)).
		Where("rental_end_date IS NOT NULL AND rental_end_date < ?", shared.Day(asOf)).
		Count(&count).Error
	return count, err
}

// CountUnitsByStatus counts active serialized units per status
func (p *GormRentalStateProvider) CountUnitsByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := p.db.WithContext(ctx).Model(&models.InventoryUnitModel{}).
		Select("status, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// CountLowStockLevels counts stock levels at or under their reorder point
// or below their minimum
func (p *GormRentalStateProvider) CountLowStockLevels(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.StockLevelModel{}).
		Where("is_active = ?", true).
		Where("(reorder_point > 0 AND quantity_on_hand <= reorder_point) OR quantity_on_hand < minimum_level").
		Count(&count).Error
	return count, err
}

var _ RentalStateProvider = (*GormRentalStateProvider)(nil)
