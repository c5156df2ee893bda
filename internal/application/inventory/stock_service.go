package inventory

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Idempotency operation names
const (
	OpAdjustStock  = "stock.adjust"
	OpReserveStock = "stock.reserve"
)

// StockService handles quantity accounting per (item, location)
type StockService struct {
	scope     appshared.TransactionScope
	stockRepo inventory.StockLevelRepository
	options
}

// NewStockService creates a new StockService
func NewStockService(scope appshared.TransactionScope, stockRepo inventory.StockLevelRepository, opts ...Option) *StockService {
	return &StockService{
		scope:     scope,
		stockRepo: stockRepo,
		options:   buildOptions(opts),
	}
}

// Get returns the stock level of an item at a location
func (s *StockService) Get(ctx context.Context, itemID, locationID uuid.UUID) (*StockLevelResponse, error) {
	level, err := s.stockRepo.FindByItemAndLocation(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	resp := ToStockLevelResponse(level)
	return &resp, nil
}

// ListForItem returns the stock levels of an item across locations
func (s *StockService) ListForItem(ctx context.Context, itemID uuid.UUID) ([]StockLevelResponse, error) {
	levels, err := s.stockRepo.FindByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return ToStockLevelResponses(levels), nil
}

// ListLow returns the levels at or below their reorder point or minimum
func (s *StockService) ListLow(ctx context.Context, filter StockListFilter) ([]StockLevelResponse, int64, error) {
	f := appshared.PageFilter(filter.Page, filter.PageSize, "", "", "")
	if filter.LocationID != nil {
		f.Filters["location_id"] = *filter.LocationID
	}
	levels, total, err := s.stockRepo.FindBelowReorderPoint(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToStockLevelResponses(levels), total, nil
}

// Adjust changes on-hand by a signed delta. A level is created on the first
// positive adjustment. A zero delta leaves the level untouched.
func (s *StockService) Adjust(ctx context.Context, req StockQuantityRequest, idempotencyKey string) (*StockLevelResponse, error) {
	return s.guarded(ctx, OpAdjustStock, req, idempotencyKey, req.Quantity > 0,
		func(level *inventory.StockLevel, stamp shared.Stamp) error {
			return level.AdjustQuantity(req.Quantity, req.Reason, stamp)
		})
}

// Reserve moves quantity from available to reserved
func (s *StockService) Reserve(ctx context.Context, req StockQuantityRequest, idempotencyKey string) (*StockLevelResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	return s.guarded(ctx, OpReserveStock, req, idempotencyKey, false,
		func(level *inventory.StockLevel, stamp shared.Stamp) error {
			return level.Reserve(req.Quantity, stamp)
		})
}

// Release returns reserved quantity to available
func (s *StockService) Release(ctx context.Context, req StockQuantityRequest) (*StockLevelResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	return s.mutate(ctx, req.ItemID, req.LocationID, false, func(level *inventory.StockLevel, stamp shared.Stamp) error {
		return level.ReleaseReservation(req.Quantity, stamp)
	})
}

// UpdateLevels sets the replenishment thresholds and the on-order counter
func (s *StockService) UpdateLevels(ctx context.Context, req UpdateStockLevelsRequest) (*StockLevelResponse, error) {
	return s.mutate(ctx, req.ItemID, req.LocationID, true, func(level *inventory.StockLevel, stamp shared.Stamp) error {
		if err := level.UpdateLevels(req.MinimumLevel, req.MaximumLevel, req.ReorderPoint, stamp); err != nil {
			return err
		}
		if req.OnOrderDelta != nil && *req.OnOrderDelta != 0 {
			return level.RecordOnOrder(*req.OnOrderDelta, stamp)
		}
		return nil
	})
}

func (s *StockService) guarded(
	ctx context.Context,
	op string,
	req StockQuantityRequest,
	key string,
	create bool,
	fn func(*inventory.StockLevel, shared.Stamp) error,
) (*StockLevelResponse, error) {
	var resp *StockLevelResponse
	resource := req.ItemID.String() + "/" + req.LocationID.String()
	err := s.guard.Run(ctx, op, resource, key, func() error {
		var err error
		resp, err = s.mutate(ctx, req.ItemID, req.LocationID, create, fn)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock changed",
		zap.String("operation", op),
		zap.String("item_id", req.ItemID.String()),
		zap.String("location_id", req.LocationID.String()),
		zap.Int64("quantity", req.Quantity),
	)
	return resp, nil
}

func (s *StockService) mutate(ctx context.Context, itemID, locationID uuid.UUID, create bool, fn func(*inventory.StockLevel, shared.Stamp) error) (*StockLevelResponse, error) {
	stamp := shared.NewStamp(ctx, s.clock)
	var level *inventory.StockLevel
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		var err error
		level, err = appshared.LockStockLevel(ctx, repos, itemID, locationID, create, stamp)
		if err != nil {
			return err
		}
		if err := fn(level, stamp); err != nil {
			return err
		}
		if err := repos.Stock().SaveWithLock(ctx, level); err != nil {
			return err
		}
		t.Track(level)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToStockLevelResponse(level)
	return &resp, nil
}
