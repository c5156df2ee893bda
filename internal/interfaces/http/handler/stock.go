package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/rentalcore/backend/internal/application/inventory"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
	"github.com/rentalcore/backend/internal/interfaces/http/middleware"
)

// StockHandler serves per-location stock levels
type StockHandler struct {
	BaseHandler
	stock *inventoryapp.StockService
}

// NewStockHandler creates a StockHandler
func NewStockHandler(stock *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// Get godoc
// @ID           getStock
// @Summary      Get stock levels
// @Description  With location_id returns the single level of that location, otherwise every level of the item
// @Tags         stock
// @Produce      json
// @Param        item_id query string true "Item" format(uuid)
// @Param        location_id query string false "Location" format(uuid)
// @Success      200 {object} APIResponse[[]inventoryapp.StockLevelResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock [get]
func (h *StockHandler) Get(c *gin.Context) {
	var itemID, locationID *uuid.UUID
	if !h.queryUUID(c, "item_id", &itemID) || !h.queryUUID(c, "location_id", &locationID) {
		return
	}
	if itemID == nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "item_id is required")
		return
	}

	if locationID != nil {
		level, err := h.stock.Get(c.Request.Context(), *itemID, *locationID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, []inventoryapp.StockLevelResponse{*level})
		return
	}

	levels, err := h.stock.ListForItem(c.Request.Context(), *itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}

// ListLow godoc
// @ID           listLowStock
// @Summary      List low stock
// @Description  Levels whose available quantity is at or below their reorder point
// @Tags         stock
// @Produce      json
// @Param        location_id query string false "Location" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]inventoryapp.StockLevelResponse]
// @Security     BearerAuth
// @Router       /stock/low [get]
func (h *StockHandler) ListLow(c *gin.Context) {
	var filter inventoryapp.StockListFilter
	if !bindQuery(c, &filter) || !h.queryUUID(c, "location_id", &filter.LocationID) {
		return
	}
	pageDefaults(&filter.Page, &filter.PageSize)

	levels, total, err := h.stock.ListLow(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, levels, total, filter.Page, filter.PageSize)
}

// Adjust godoc
// @ID           adjustStock
// @Summary      Adjust on-hand stock
// @Description  Positive quantities add stock, negative ones remove available stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body inventoryapp.StockQuantityRequest true "Adjustment"
// @Success      200 {object} APIResponse[inventoryapp.StockLevelResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/adjust [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	var req inventoryapp.StockQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	level, err := h.stock.Adjust(c.Request.Context(), req, middleware.GetIdempotencyKey(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// Reserve godoc
// @ID           reserveStock
// @Summary      Reserve stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body inventoryapp.StockQuantityRequest true "Reservation"
// @Success      200 {object} APIResponse[inventoryapp.StockLevelResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/reserve [post]
func (h *StockHandler) Reserve(c *gin.Context) {
	var req inventoryapp.StockQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	level, err := h.stock.Reserve(c.Request.Context(), req, middleware.GetIdempotencyKey(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// Release godoc
// @ID           releaseStock
// @Summary      Release reserved stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.StockQuantityRequest true "Release"
// @Success      200 {object} APIResponse[inventoryapp.StockLevelResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/release [post]
func (h *StockHandler) Release(c *gin.Context) {
	var req inventoryapp.StockQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	level, err := h.stock.Release(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// UpdateLevels godoc
// @ID           updateStockLevels
// @Summary      Set replenishment thresholds
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.UpdateStockLevelsRequest true "Thresholds"
// @Success      200 {object} APIResponse[inventoryapp.StockLevelResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/levels [put]
func (h *StockHandler) UpdateLevels(c *gin.Context) {
	var req inventoryapp.UpdateStockLevelsRequest
	if !bindJSON(c, &req) {
		return
	}
	level, err := h.stock.UpdateLevels(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}
