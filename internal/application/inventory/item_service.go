package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ItemService manages the rental and sale catalog
type ItemService struct {
	scope    appshared.TransactionScope
	itemRepo inventory.ItemRepository
	options
}

// NewItemService creates a new ItemService. itemRepo serves reads outside
// a unit of work.
func NewItemService(scope appshared.TransactionScope, itemRepo inventory.ItemRepository, opts ...Option) *ItemService {
	return &ItemService{
		scope:    scope,
		itemRepo: itemRepo,
		options:  buildOptions(opts),
	}
}

// Create adds an item to the catalog
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	stamp := shared.NewStamp(ctx, s.clock)
	var created *inventory.Item
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		code := strings.ToUpper(strings.TrimSpace(req.Code))
		exists, err := repos.Items().ExistsByCode(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("DUPLICATE_ITEM_CODE", "Item code "+code+" already exists")
		}
		item, err := inventory.NewItem(inventory.NewItemInput{
			Code:        code,
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Brand:       req.Brand,
			Type:        inventory.ItemType(req.Type),
			Pricing: inventory.ItemPricing{
				PurchasePrice:      req.PurchasePrice,
				RentalRatePerDay:   req.RentalRatePerDay,
				RentalRatePerWeek:  req.RentalRatePerWeek,
				RentalRatePerMonth: req.RentalRatePerMonth,
				SalePrice:          req.SalePrice,
				SecurityDeposit:    req.SecurityDeposit,
			},
			MinRentalDays:        req.MinRentalDays,
			MaxRentalDays:        req.MaxRentalDays,
			SerialNumberRequired: req.SerialNumberRequired,
			WarrantyDays:         req.WarrantyDays,
			ReorderLevel:         req.ReorderLevel,
			ReorderQuantity:      req.ReorderQuantity,
		}, stamp)
		if err != nil {
			return err
		}
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}
		t.Track(item)
		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("item created", zap.String("item_id", created.ID.String()), zap.String("code", created.Code))
	resp := ToItemResponse(created)
	return &resp, nil
}

// GetByID retrieves an item
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// GetByCode retrieves an item by its catalog code
func (s *ItemService) GetByCode(ctx context.Context, code string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// List returns a page of items
func (s *ItemService) List(ctx context.Context, filter ItemListFilter) ([]ItemResponse, int64, error) {
	f := appshared.PageFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.Type != "" {
		f.Filters["item_type"] = filter.Type
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.Category != "" {
		f.Filters["category"] = filter.Category
	}
	if filter.Brand != "" {
		f.Filters["brand"] = filter.Brand
	}
	if filter.IsActive != nil {
		f.Filters["is_active"] = *filter.IsActive
	}
	items, total, err := s.itemRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(items), total, nil
}

// UpdatePricing replaces the pricing and, when given, the rental terms
func (s *ItemService) UpdatePricing(ctx context.Context, id uuid.UUID, req UpdateItemPricingRequest) (*ItemResponse, error) {
	return s.mutate(ctx, id, func(item *inventory.Item, stamp shared.Stamp) error {
		pricing := inventory.ItemPricing{
			PurchasePrice:      req.PurchasePrice,
			RentalRatePerDay:   req.RentalRatePerDay,
			RentalRatePerWeek:  req.RentalRatePerWeek,
			RentalRatePerMonth: req.RentalRatePerMonth,
			SalePrice:          req.SalePrice,
			SecurityDeposit:    req.SecurityDeposit,
		}
		if err := item.UpdatePricing(pricing, stamp); err != nil {
			return err
		}
		if req.MinRentalDays == nil && req.MaxRentalDays == nil {
			return nil
		}
		minDays := item.MinRentalDays
		if req.MinRentalDays != nil {
			minDays = *req.MinRentalDays
		}
		maxDays := item.MaxRentalDays
		if req.MaxRentalDays != nil {
			maxDays = req.MaxRentalDays
		}
		return item.UpdateRentalTerms(minDays, maxDays, stamp)
	})
}

// ChangeStatus moves the item along its catalog lifecycle
func (s *ItemService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeItemStatusRequest) (*ItemResponse, error) {
	return s.mutate(ctx, id, func(item *inventory.Item, stamp shared.Stamp) error {
		return item.ChangeStatus(inventory.ItemStatus(req.Status), stamp)
	})
}

// Deactivate soft-deletes the item
func (s *ItemService) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := s.mutate(ctx, id, func(item *inventory.Item, stamp shared.Stamp) error {
		return item.Deactivate(stamp)
	})
	return err
}

func (s *ItemService) mutate(ctx context.Context, id uuid.UUID, fn func(*inventory.Item, shared.Stamp) error) (*ItemResponse, error) {
	stamp := shared.NewStamp(ctx, s.clock)
	var item *inventory.Item
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		var err error
		item, err = repos.Items().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(item, stamp); err != nil {
			return err
		}
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}
		t.Track(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}
