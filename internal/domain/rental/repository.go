package rental

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
)

// ReturnFilter narrows return listings
type ReturnFilter struct {
	shared.Filter
	Status        *ReturnStatus
	TransactionID *uuid.UUID
	CustomerID    *uuid.UUID
	LocationID    *uuid.UUID
	// DamagedOnly keeps returns with at least one damaged line
	DamagedOnly bool
}

// PendingLine is an unprocessed return line with its return reference
type PendingLine struct {
	ReturnID     uuid.UUID
	ReturnNumber string
	Line         ReturnLine
}

// RentalReturnRepository persists returns together with their lines
type RentalReturnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RentalReturn, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*RentalReturn, error)
	FindByNumber(ctx context.Context, number string) (*RentalReturn, error)
	FindAll(ctx context.Context, filter ReturnFilter) ([]RentalReturn, int64, error)
	FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]RentalReturn, error)
	// HasActiveReturn reports a non-terminal return on the transaction,
	// ignoring excludeID.
	HasActiveReturn(ctx context.Context, transactionID uuid.UUID, excludeID *uuid.UUID) (bool, error)
	// FindPendingLines lists lines not yet PROCESSED on open returns
	FindPendingLines(ctx context.Context, filter shared.Filter) ([]PendingLine, int64, error)
	Save(ctx context.Context, r *RentalReturn) error
	SaveWithLock(ctx context.Context, r *RentalReturn) error
}

// InspectionRepository persists inspection reports
type InspectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InspectionReport, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*InspectionReport, error)
	FindByReturn(ctx context.Context, returnID uuid.UUID) ([]InspectionReport, error)
	Save(ctx context.Context, r *InspectionReport) error
	SaveWithLock(ctx context.Context, r *InspectionReport) error
}
