package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// SalesService sells items out of stock
type SalesService struct {
	scope appshared.TransactionScope
	options
}

// NewSalesService creates a new SalesService
func NewSalesService(scope appshared.TransactionScope, opts ...Option) *SalesService {
	return &SalesService{
		scope:   scope,
		options: buildOptions(opts),
	}
}

// CreateSale opens a DRAFT sale and reserves its stock. Items tracked by
// unit get one line per unit; other items get a single bulk line.
func (s *SalesService) CreateSale(ctx context.Context, req CreateSaleRequest) (*TransactionResponse, error) {
	if err := s.requireCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	stamp := shared.NewStamp(ctx, s.clock)
	var header *trade.TransactionHeader
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		number, err := repos.Numbers().Next(ctx, trade.TransactionTypeSale.NumberPrefix())
		if err != nil {
			return err
		}
		in := trade.NewTransactionInput{
			Number:        number,
			Type:          trade.TransactionTypeSale,
			CustomerID:    req.CustomerID,
			LocationID:    req.LocationID,
			SalesPersonID: req.SalesPersonID,
		}
		in.TaxRate = s.taxRateOr(req.TaxRate)
		h, err := trade.NewTransaction(in, stamp)
		if err != nil {
			return err
		}
		w := stockWork{ctx: ctx, repos: repos, t: t, stamp: stamp}
		taken := make(map[uuid.UUID]bool)
		for _, si := range req.Items {
			if err := sellItem(w, h, si, taken); err != nil {
				return err
			}
		}
		if err := addTaxLine(h, h.Subtotal.Sub(h.DiscountAmount), "Tax", stamp); err != nil {
			return err
		}
		if err := repos.Transactions().Save(ctx, h); err != nil {
			return err
		}
		t.Track(h)
		header = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sale created",
		zap.String("transaction_id", header.ID.String()),
		zap.String("number", header.Number),
	)
	resp := ToTransactionResponse(header)
	return &resp, nil
}

func sellItem(w stockWork, h *trade.TransactionHeader, si SaleItem, taken map[uuid.UUID]bool) error {
	item, err := w.repos.Items().FindByID(w.ctx, si.ItemID)
	if err != nil {
		return err
	}
	if !item.IsSaleable() {
		return shared.NewValidationError("ITEM_NOT_SALEABLE", "Item "+item.Code+" cannot be sold")
	}
	qty, err := requestedQuantity(si.Quantity, si.UnitIDs)
	if err != nil {
		return err
	}
	var price valueobject.Money
	switch {
	case si.CustomPrice != nil:
		price = *si.CustomPrice
	case item.Pricing.SalePrice != nil:
		price = *item.Pricing.SalePrice
	default:
		return shared.NewValidationError("NO_SALE_PRICE", "Item "+item.Code+" has no sale price")
	}

	if err := w.reserve(item.ID, h.LocationID, qty); err != nil {
		return err
	}
	units, err := w.assignUnits(item.ID, h.LocationID, qty, si.UnitIDs, taken)
	if err != nil {
		return err
	}
	line := trade.LineInput{
		Type:        trade.LineTypeProduct,
		ItemID:      &item.ID,
		Reserved:    true,
		Description: item.Name,
		Quantity:    qty,
		UnitPrice:   price,
	}
	if si.DiscountPercentage != nil {
		line.DiscountPercentage = *si.DiscountPercentage
	}
	if len(units) == 0 {
		_, err := h.AddLine(line, w.stamp)
		return err
	}
	if int64(len(units)) < qty {
		return shared.NewConflictError("INSUFFICIENT_UNITS",
			fmt.Sprintf("Only %d of %d units of %s can be sold", len(units), qty, item.Code))
	}
	for i := range units {
		unitID := units[i].ID
		line.InventoryUnitID = &unitID
		line.Quantity = 1
		line.Description = item.Name + " (" + units[i].Code + ")"
		if _, err := h.AddLine(line, w.stamp); err != nil {
			return err
		}
	}
	return nil
}

// FulfillSale hands a CONFIRMED sale over: reserved units are sold, bulk
// quantities leave stock, and the sale completes.
func (s *SalesService) FulfillSale(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	h, err := mutateTransaction(ctx, s.scope, s.publisher, s.clock, id, func(w stockWork, h *trade.TransactionHeader) error {
		if !h.IsSale() {
			return shared.NewValidationError("NOT_A_SALE", "Only sales can be fulfilled")
		}
		if h.Status != trade.StatusConfirmed {
			return shared.NewInvalidTransitionError("TRANSACTION", string(h.Status), string(trade.StatusInProgress))
		}
		if err := h.TransitionTo(trade.StatusInProgress, w.stamp); err != nil {
			return err
		}
		for _, line := range h.ReservedLines() {
			if err := w.releaseLine(h, line); err != nil {
				return err
			}
			if line.InventoryUnitID != nil {
				if _, err := w.unit(*line.InventoryUnitID, func(u *inventory.InventoryUnit) error {
					return u.MarkAsSold(w.stamp)
				}); err != nil {
					return err
				}
				continue
			}
			qty := line.Quantity.Int64()
			reason := fmt.Sprintf("sale %s line %d", h.Number, line.LineNumber)
			if err := w.level(*line.ItemID, h.LocationID, func(l *inventory.StockLevel) error {
				return l.AdjustQuantity(-qty, reason, w.stamp)
			}); err != nil {
				return err
			}
		}
		return h.TransitionTo(trade.StatusCompleted, w.stamp)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sale fulfilled", zap.String("transaction_id", id.String()), zap.String("number", h.Number))
	resp := ToTransactionResponse(h)
	return &resp, nil
}
