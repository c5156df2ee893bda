package persistence

import (
	"context"

	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, clock shared.Clock) *GormTransactionScope {
	return &GormTransactionScope{db: db, clock: clock}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, clock: s.clock})
	})
}

// Repositories returns the repository bundle bound to the plain connection,
// for reads outside a unit of work.
func (s *GormTransactionScope) Repositories() *appshared.Repositories {
	return NewRepositories(s.db, s.clock)
}

// NewRepositories builds every repository on db
func NewRepositories(db *gorm.DB, clock shared.Clock) *appshared.Repositories {
	return &appshared.Repositories{
		ItemRepo:        NewGormItemRepository(db),
		UnitRepo:        NewGormInventoryUnitRepository(db),
		StockRepo:       NewGormStockLevelRepository(db),
		TransactionRepo: NewGormTransactionRepository(db),
		ReturnRepo:      NewGormRentalReturnRepository(db),
		InspectionRepo:  NewGormInspectionRepository(db),
		AuditRepo:       NewGormAuditRepository(db),
		NumberGen:       NewGormNumberGenerator(db, clock),
	}
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx    *gorm.DB
	clock shared.Clock
}

func (r *gormTransactionalRepositories) Items() inventory.ItemRepository {
	return NewGormItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) Units() inventory.InventoryUnitRepository {
	return NewGormInventoryUnitRepository(r.tx)
}

func (r *gormTransactionalRepositories) Stock() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

func (r *gormTransactionalRepositories) Transactions() trade.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Returns() rental.RentalReturnRepository {
	return NewGormRentalReturnRepository(r.tx)
}

func (r *gormTransactionalRepositories) Inspections() rental.InspectionRepository {
	return NewGormInspectionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Audit() shared.AuditRepository {
	return NewGormAuditRepository(r.tx)
}

func (r *gormTransactionalRepositories) Numbers() shared.NumberGenerator {
	return NewGormNumberGenerator(r.tx, r.clock)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appshared.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
