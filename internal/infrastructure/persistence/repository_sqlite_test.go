package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var sqliteStamp = shared.StampAt("tester", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newSQLiteRental(t *testing.T, number string, end time.Time, lines int) *trade.TransactionHeader {
	t.Helper()
	start := end.AddDate(0, 0, -2)
	h, err := trade.NewTransaction(trade.NewTransactionInput{
		Number:          number,
		Type:            trade.TransactionTypeRental,
		CustomerID:      uuid.New(),
		LocationID:      uuid.New(),
		RentalStartDate: &start,
		RentalEndDate:   &end,
	}, sqliteStamp)
	require.NoError(t, err)

	period, unit := 3, trade.PeriodDay
	for i := 0; i < lines; i++ {
		itemID, unitID := uuid.New(), uuid.New()
		_, err := h.AddLine(trade.LineInput{
			Type:              trade.LineTypeProduct,
			ItemID:            &itemID,
			InventoryUnitID:   &unitID,
			Description:       "Camera",
			Quantity:          1,
			UnitPrice:         valueobject.MustMoney("40"),
			RentalPeriodValue: &period,
			RentalPeriodUnit:  &unit,
			RentalStartDate:   &start,
			RentalEndDate:     &end,
		}, sqliteStamp)
		require.NoError(t, err)
	}
	return h
}

func TestGormTransactionRepository_SQLite(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	h := newSQLiteRental(t, "RNT-20240601-0001", end, 2)
	require.NoError(t, repo.Save(ctx, h))
	assert.Equal(t, h.GetVersion(), h.PersistedVersion())

	t.Run("loads header with ordered lines", func(t *testing.T) {
		loaded, err := repo.FindByNumber(ctx, "RNT-20240601-0001")
		require.NoError(t, err)
		require.Len(t, loaded.Lines, 2)
		assert.Equal(t, 1, loaded.Lines[0].LineNumber)
		assert.Equal(t, 2, loaded.Lines[1].LineNumber)
		assert.True(t, loaded.TotalAmount.Equals(h.TotalAmount))
		assert.Equal(t, sqliteStamp.At, loaded.CreatedAt.UTC())
	})

	t.Run("replaces the stored line set", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, h.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.RemoveLine(loaded.Lines[0].ID, sqliteStamp))
		require.NoError(t, repo.SaveWithLock(ctx, loaded))

		again, err := repo.FindByID(ctx, h.ID)
		require.NoError(t, err)
		require.Len(t, again.Lines, 1)
		assert.Equal(t, 1, again.Lines[0].LineNumber)

		var count int64
		require.NoError(t, db.Model(&models.TransactionLineModel{}).Where("transaction_id = ?", h.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		first, err := repo.FindByID(ctx, h.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, h.ID)
		require.NoError(t, err)

		first.Notes = "first writer"
		first.IncrementVersion()
		require.NoError(t, repo.SaveWithLock(ctx, first))

		second.Notes = "second writer"
		second.IncrementVersion()
		err = repo.SaveWithLock(ctx, second)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

		stored, err := repo.FindByID(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, "first writer", stored.Notes)
	})

	t.Run("missing transaction is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormTransactionRepository_FindOverdueRentals(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

	overdue := newSQLiteRental(t, "RNT-20240601-0001", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 1)
	overdue.Status = trade.StatusInProgress
	dueToday := newSQLiteRental(t, "RNT-20240601-0002", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), 1)
	dueToday.Status = trade.StatusInProgress
	notStarted := newSQLiteRental(t, "RNT-20240601-0003", time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), 1)
	for _, h := range []*trade.TransactionHeader{overdue, dueToday, notStarted} {
		require.NoError(t, repo.Save(ctx, h))
	}

	headers, total, err := repo.FindOverdueRentals(ctx, asOf, shared.Filter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, headers, 1)
	assert.Equal(t, overdue.ID, headers[0].ID)
	assert.Len(t, headers[0].Lines, 1)
}

func TestGormTransactionRepository_FindOpenUnitAssignments(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()

	open := newSQLiteRental(t, "RNT-20240601-0001", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), 1)
	require.NoError(t, repo.Save(ctx, open))
	itemID := *open.Lines[0].ItemID

	ids, err := repo.FindOpenUnitAssignments(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{*open.Lines[0].InventoryUnitID}, ids)

	ids, err = repo.FindOpenUnitAssignments(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func newSQLiteReturn(t *testing.T, number string, transactionID uuid.UUID, lines int) *rental.RentalReturn {
	t.Helper()
	inputs := make([]rental.ReturnLineInput, lines)
	for i := range inputs {
		inputs[i] = rental.ReturnLineInput{
			InventoryUnitID:  uuid.New(),
			ItemID:           uuid.New(),
			OriginalQuantity: 1,
			ReturnedQuantity: 1,
			DailyRate:        valueobject.MustMoney("25"),
		}
	}
	expected := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	r, err := rental.NewRentalReturn(rental.NewRentalReturnInput{
		Number:              number,
		TransactionID:       transactionID,
		CustomerID:          uuid.New(),
		LocationID:          uuid.New(),
		ReturnDate:          expected,
		ExpectedReturnDate:  expected,
		DepositAmount:       valueobject.MustMoney("100"),
		OutstandingQuantity: int64(lines),
		Lines:               inputs,
	}, sqliteStamp)
	require.NoError(t, err)
	return r
}

func TestGormRentalReturnRepository_SQLite(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormRentalReturnRepository(db)
	ctx := context.Background()
	transactionID := uuid.New()

	active := newSQLiteReturn(t, "RET-20240603-0001", transactionID, 2)
	require.NoError(t, repo.Save(ctx, active))
	closed := newSQLiteReturn(t, "RET-20240603-0002", uuid.New(), 1)
	closed.Status = rental.ReturnCompleted
	require.NoError(t, repo.Save(ctx, closed))

	t.Run("active return is detected", func(t *testing.T) {
		has, err := repo.HasActiveReturn(ctx, transactionID, nil)
		require.NoError(t, err)
		assert.True(t, has)

		has, err = repo.HasActiveReturn(ctx, transactionID, &active.ID)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("pending lines only come from open returns", func(t *testing.T) {
		lines, total, err := repo.FindPendingLines(ctx, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, lines, 2)
		assert.Equal(t, "RET-20240603-0001", lines[0].ReturnNumber)
		assert.Equal(t, active.ID, lines[0].ReturnID)
		assert.Equal(t, 1, lines[0].Line.LineNumber)
	})

	t.Run("finds returns by transaction with lines", func(t *testing.T) {
		returns, err := repo.FindByTransaction(ctx, transactionID)
		require.NoError(t, err)
		require.Len(t, returns, 1)
		assert.Len(t, returns[0].Lines, 2)
		assert.True(t, returns[0].DepositAmount.Equals(valueobject.MustMoney("100")))
	})

	t.Run("status filter", func(t *testing.T) {
		status := rental.ReturnCompleted
		returns, total, err := repo.FindAll(ctx, rental.ReturnFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, closed.ID, returns[0].ID)
	})
}

func TestGormStockLevelRepository_SQLite(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormStockLevelRepository(db)
	ctx := context.Background()

	itemID, locationID := uuid.New(), uuid.New()
	level, err := inventory.NewStockLevel(itemID, locationID, sqliteStamp)
	require.NoError(t, err)
	level.ReorderPoint = valueobject.MustQuantity(5)
	require.NoError(t, level.AdjustQuantity(3, "receipt", sqliteStamp))
	require.NoError(t, repo.Save(ctx, level))

	healthy, err := inventory.NewStockLevel(uuid.New(), locationID, sqliteStamp)
	require.NoError(t, err)
	require.NoError(t, healthy.AdjustQuantity(50, "receipt", sqliteStamp))
	require.NoError(t, repo.Save(ctx, healthy))

	t.Run("finds by item and location", func(t *testing.T) {
		found, err := repo.FindByItemAndLocation(ctx, itemID, locationID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), found.QuantityOnHand.Int64())
		assert.Equal(t, int64(3), found.QuantityAvailable.Int64())
	})

	t.Run("lists levels at or below reorder point", func(t *testing.T) {
		low, total, err := repo.FindBelowReorderPoint(ctx, shared.Filter{
			Filters: map[string]any{"location_id": locationID},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, low, 1)
		assert.Equal(t, level.ID, low[0].ID)
	})

	t.Run("stale write is rejected", func(t *testing.T) {
		found, err := repo.FindByItemAndLocation(ctx, itemID, locationID)
		require.NoError(t, err)
		stale, err := repo.FindByItemAndLocation(ctx, itemID, locationID)
		require.NoError(t, err)

		require.NoError(t, found.AdjustQuantity(1, "count", sqliteStamp))
		require.NoError(t, repo.SaveWithLock(ctx, found))

		require.NoError(t, stale.AdjustQuantity(-1, "count", sqliteStamp))
		assert.True(t, errors.Is(repo.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict))
	})
}

func TestGormNumberGenerator(t *testing.T) {
	db := setupSQLiteDB(t)
	clock := &shared.FixedClock{At: time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)}
	gen := NewGormNumberGenerator(db, clock)
	ctx := context.Background()

	first, err := gen.Next(ctx, "RNT")
	require.NoError(t, err)
	second, err := gen.Next(ctx, "RNT")
	require.NoError(t, err)
	other, err := gen.Next(ctx, "RET")
	require.NoError(t, err)

	assert.Equal(t, "RNT-20240601-0001", first)
	assert.Equal(t, "RNT-20240601-0002", second)
	assert.Equal(t, "RET-20240601-0001", other)

	clock.At = clock.At.Add(2 * time.Hour)
	next, err := gen.Next(ctx, "RNT")
	require.NoError(t, err)
	assert.Equal(t, "RNT-20240602-0001", next)
}

func TestGormAuditRepository(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormAuditRepository(db)
	ctx := context.Background()
	entityID := uuid.New()

	entries := make([]shared.AuditEntry, 0, 3)
	for i, event := range []string{"CREATED", "CONFIRMED", "COMPLETED"} {
		entries = append(entries, shared.AuditEntry{
			ID:         uuid.New(),
			EntityType: "TRANSACTION",
			EntityID:   entityID,
			Actor:      "clerk",
			Event:      event,
			OccurredAt: sqliteStamp.At.Add(time.Duration(-i) * time.Minute),
		})
	}
	require.NoError(t, repo.Append(ctx, entries...))
	require.NoError(t, repo.Append(ctx))

	found, err := repo.FindByEntity(ctx, "TRANSACTION", entityID)
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, []string{"CREATED", "CONFIRMED", "COMPLETED"},
		[]string{found[0].Event, found[1].Event, found[2].Event})

	none, err := repo.FindByEntity(ctx, "RETURN", entityID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormTransactionScope(t *testing.T) {
	db := setupSQLiteDB(t)
	scope := NewGormTransactionScope(db, shared.FixedClock{At: sqliteStamp.At})
	ctx := context.Background()

	rate := valueobject.MustMoney("30")
	newItem := func(code string) *inventory.Item {
		item, err := inventory.NewItem(inventory.NewItemInput{
			Code: code, Name: "Tripod", Type: inventory.ItemTypeRental,
			Pricing: inventory.ItemPricing{RentalRatePerDay: &rate},
		}, sqliteStamp)
		require.NoError(t, err)
		return item
	}

	t.Run("commits on success", func(t *testing.T) {
		item := newItem("TRI-1")
		err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			return repos.Items().Save(ctx, item)
		})
		require.NoError(t, err)

		_, err = scope.Repositories().ItemRepo.FindByID(ctx, item.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		item := newItem("TRI-2")
		boom := errors.New("boom")
		err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			if err := repos.Items().Save(ctx, item); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = scope.Repositories().ItemRepo.FindByID(ctx, item.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("numbers share the unit of work", func(t *testing.T) {
		var number string
		err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
			var err error
			number, err = repos.Numbers().Next(ctx, "SAL")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, "SAL-20240601-0001", number)
	})
}

func TestDirectories(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	customerID, locationID, closedID := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, db.Create(&models.CustomerRefModel{ID: customerID, Name: "Acme", IsActive: true, IsBlacklisted: true, SyncedAt: sqliteStamp.At}).Error)
	require.NoError(t, db.Create(&models.LocationRefModel{ID: locationID, Code: "MAIN", IsActive: true, SyncedAt: sqliteStamp.At}).Error)
	require.NoError(t, db.Create(&models.LocationRefModel{ID: closedID, Code: "OLD", IsActive: false, SyncedAt: sqliteStamp.At}).Error)

	status, err := NewGormCustomerDirectory(db).Lookup(ctx, customerID)
	require.NoError(t, err)
	assert.Error(t, status.CanTrade())

	_, err = NewGormCustomerDirectory(db).Lookup(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	locations := NewGormLocationDirectory(db)
	ok, err := locations.Exists(ctx, locationID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = locations.Exists(ctx, closedID)
	require.NoError(t, err)
	assert.False(t, ok)
}
