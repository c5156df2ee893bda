package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func aggregate(at time.Time) models.AggregateModel {
	return models.AggregateModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: at, UpdatedAt: at, CreatedBy: "seed", UpdatedBy: "seed"},
		Version:   1,
	}
}

func TestGormRentalStateProvider(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)
	provider := telemetry.NewGormRentalStateProvider(db)

	day := func(offset int) *time.Time {
		d := time.Date(2026, 5, 10+offset, 0, 0, 0, 0, time.UTC)
		return &d
	}
	headers := []struct {
		number string
		typ    trade.TransactionType
		status trade.TransactionStatus
		end    *time.Time
	}{
		{"RNT-1", trade.TransactionTypeRental, trade.StatusInProgress, day(-3)},
		{"RNT-2", trade.TransactionTypeRental, trade.StatusInProgress, day(-1)},
		{"RNT-3", trade.TransactionTypeRental, trade.StatusInProgress, day(0)},
		{"RNT-4", trade.TransactionTypeRental, trade.StatusConfirmed, day(-5)},
		{"SAL-1", trade.TransactionTypeSale, trade.StatusInProgress, nil},
	}
	for _, h := range headers {
		require.NoError(t, db.Create(&models.TransactionHeaderModel{
			AggregateModel:  aggregate(now),
			Number:          h.number,
			Type:            string(h.typ),
			Status:          string(h.status),
			PaymentStatus:   string(trade.PaymentPending),
			TransactionDate: now,
			CustomerID:      uuid.New(),
			LocationID:      uuid.New(),
			RentalEndDate:   h.end,
		}).Error)
	}

	itemID, locationID := uuid.New(), uuid.New()
	units := []struct {
		code   string
		status inventory.UnitStatus
		active bool
	}{
		{"U-1", inventory.UnitStatusAvailable, true},
		{"U-2", inventory.UnitStatusAvailable, true},
		{"U-3", inventory.UnitStatusRented, true},
		{"U-4", inventory.UnitStatusRetired, false},
	}
	for _, u := range units {
		require.NoError(t, db.Create(&models.InventoryUnitModel{
			AggregateModel: aggregate(now),
			Code:           u.code,
			ItemID:         itemID,
			LocationID:     locationID,
			Status:         string(u.status),
			Condition:      "GOOD",
			IsActive:       u.active,
		}).Error)
	}

	levels := []struct {
		onHand, minimum, reorder int64
		active                   bool
	}{
		{onHand: 2, minimum: 0, reorder: 5, active: true},
		{onHand: 3, minimum: 4, reorder: 0, active: true},
		{onHand: 10, minimum: 2, reorder: 5, active: true},
		{onHand: 0, minimum: 0, reorder: 0, active: true},
		{onHand: 1, minimum: 5, reorder: 5, active: false},
	}
	for _, l := range levels {
		require.NoError(t, db.Create(&models.StockLevelModel{
			AggregateModel: aggregate(now),
			ItemID:         uuid.New(),
			LocationID:     locationID,
			QuantityOnHand: l.onHand,
			MinimumLevel:   l.minimum,
			ReorderPoint:   l.reorder,
			IsActive:       l.active,
		}).Error)
	}

	overdue, err := provider.CountOverdueRentals(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overdue, "RNT-1 and RNT-2 ended before today")

	byStatus, err := provider.CountUnitsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		string(inventory.UnitStatusAvailable): 2,
		string(inventory.UnitStatusRented):    1,
	}, byStatus)

	low, err := provider.CountLowStockLevels(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), low)
}
