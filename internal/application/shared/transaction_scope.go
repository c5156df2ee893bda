package shared

import (
	"context"

	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	domain "github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
)

// TransactionScope runs a unit of work. Every repository handed to fn
// shares one database transaction; if fn returns an error the whole unit is
// rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to every repository inside a unit
// of work. Row locks taken through the *ForUpdate finders are held until
// the unit ends.
type TransactionalRepositories interface {
	Items() inventory.ItemRepository
	Units() inventory.InventoryUnitRepository
	Stock() inventory.StockLevelRepository
	Transactions() trade.TransactionRepository
	Returns() rental.RentalReturnRepository
	Inspections() rental.InspectionRepository
	Audit() domain.AuditRepository
	Numbers() domain.NumberGenerator
}

// Repositories is a plain bundle of repositories. It backs NoOpTransactionScope.
type Repositories struct {
	ItemRepo        inventory.ItemRepository
	UnitRepo        inventory.InventoryUnitRepository
	StockRepo       inventory.StockLevelRepository
	TransactionRepo trade.TransactionRepository
	ReturnRepo      rental.RentalReturnRepository
	InspectionRepo  rental.InspectionRepository
	AuditRepo       domain.AuditRepository
	NumberGen       domain.NumberGenerator
}

func (r *Repositories) Items() inventory.ItemRepository { return r.ItemRepo }
func (r *Repositories) Units() inventory.InventoryUnitRepository { return r.UnitRepo }
func (r *Repositories) Stock() inventory.StockLevelRepository { return r.StockRepo }
func (r *Repositories) Transactions() trade.TransactionRepository { return r.TransactionRepo }
func (r *Repositories) Returns() rental.RentalReturnRepository { return r.ReturnRepo }
func (r *Repositories) Inspections() rental.InspectionRepository { return r.InspectionRepo }
func (r *Repositories) Audit() domain.AuditRepository { return r.AuditRepo }
func (r *Repositories) Numbers() domain.NumberGenerator { return r.NumberGen }

// NoOpTransactionScope runs fn directly against the bundled repositories.
// It is meant for tests.
type NoOpTransactionScope struct {
	Repos *Repositories
}

// NewNoOpTransactionScope wraps a repository bundle
func NewNoOpTransactionScope(repos *Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{Repos: repos}
}

// Execute runs fn without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*Repositories)(nil)
)
