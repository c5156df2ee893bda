package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockStockLevelRepository creates a GormStockLevelRepository with a mocked SQL connection
func newMockStockLevelRepository(t *testing.T) (*GormStockLevelRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStockLevelRepository(gormDB), mock, mockDB
}

func newTestLevelForLocking(t *testing.T) *inventory.StockLevel {
	t.Helper()
	level, err := inventory.NewStockLevel(uuid.New(), uuid.New(), sqliteStamp)
	require.NoError(t, err)
	level.Version = 3
	level.MarkPersisted()
	require.NoError(t, level.AdjustQuantity(5, "receipt", sqliteStamp))
	return level
}

func TestGormStockLevelRepository_SaveWithLock(t *testing.T) {
	t.Run("updates when the stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		level := newTestLevelForLocking(t)
		mock.ExpectExec(`UPDATE "stock_levels" SET .* WHERE version = \$\d+ AND "id" = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), level))
		assert.Equal(t, level.GetVersion(), level.PersistedVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching row is a concurrency conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		level := newTestLevelForLocking(t)
		mock.ExpectExec(`UPDATE "stock_levels" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), level)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		assert.Equal(t, 3, level.PersistedVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error is returned as is", func(t *testing.T) {
		repo, mock, mockDB := newMockStockLevelRepository(t)
		defer mockDB.Close()

		level := newTestLevelForLocking(t)
		mock.ExpectExec(`UPDATE "stock_levels" SET`).
			WillReturnError(assert.AnError)

		err := repo.SaveWithLock(context.Background(), level)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_FindByItemAndLocationForUpdate(t *testing.T) {
	repo, mock, mockDB := newMockStockLevelRepository(t)
	defer mockDB.Close()

	itemID, locationID := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByItemAndLocationForUpdate(context.Background(), itemID, locationID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
