package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	shared.Filter
	Type          *TransactionType
	Status        *TransactionStatus
	PaymentStatus *PaymentStatus
	CustomerID    *uuid.UUID
	LocationID    *uuid.UUID
	SalesPersonID *uuid.UUID
	From          *time.Time
	To            *time.Time
	MinAmount     *valueobject.Money
	MaxAmount     *valueobject.Money
}

// TransactionRepository defines persistence for headers and their lines.
// Save writes the header and replaces its line set.
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TransactionHeader, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*TransactionHeader, error)
	FindByNumber(ctx context.Context, number string) (*TransactionHeader, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]TransactionHeader, int64, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	// FindOpenUnitAssignments returns the unit ids booked on non-closed
	// rentals that have not been picked up yet.
	FindOpenUnitAssignments(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error)
	// FindOverdueRentals lists IN_PROGRESS rentals whose end date is before asOf
	FindOverdueRentals(ctx context.Context, asOf time.Time, filter shared.Filter) ([]TransactionHeader, int64, error)
	Save(ctx context.Context, h *TransactionHeader) error
	SaveWithLock(ctx context.Context, h *TransactionHeader) error
}

// CustomerStatus is the standing of a customer as seen by trading rules
type CustomerStatus struct {
	ID          uuid.UUID
	Active      bool
	Blacklisted bool
}

// CustomerDirectory resolves customers managed outside this service
type CustomerDirectory interface {
	Lookup(ctx context.Context, id uuid.UUID) (*CustomerStatus, error)
}

// CanTrade reports whether new business may be opened for the customer
func (c CustomerStatus) CanTrade() error {
	if !c.Active {
		return shared.NewValidationError("CUSTOMER_INACTIVE", "Customer is not active")
	}
	if c.Blacklisted {
		return shared.NewValidationError("CUSTOMER_BLACKLISTED", "Customer is blacklisted")
	}
	return nil
}
