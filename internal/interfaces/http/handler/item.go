package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/rentalcore/backend/internal/application/inventory"
)

// ItemHandler serves the item catalog
type ItemHandler struct {
	BaseHandler
	items *inventoryapp.ItemService
}

// NewItemHandler creates an ItemHandler
func NewItemHandler(items *inventoryapp.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// Create godoc
// @ID           createItem
// @Summary      Create an item
// @Description  Add a rentable and/or saleable item to the catalog
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateItemRequest true "Item"
// @Success      201 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.items.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// GetByID godoc
// @ID           getItemById
// @Summary      Get item by ID
// @Tags         items
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id} [get]
func (h *ItemHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	item, err := h.items.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// GetByCode godoc
// @ID           getItemByCode
// @Summary      Get item by code
// @Tags         items
// @Produce      json
// @Param        code path string true "Item code"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/code/{code} [get]
func (h *ItemHandler) GetByCode(c *gin.Context) {
	item, err := h.items.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// List godoc
// @ID           listItems
// @Summary      List items
// @Tags         items
// @Produce      json
// @Param        search query string false "Code or name contains"
// @Param        item_type query string false "Item type" Enums(RENTAL, SALE, BOTH)
// @Param        status query string false "Status" Enums(ACTIVE, INACTIVE, DISCONTINUED)
// @Param        category query string false "Category"
// @Param        brand query string false "Brand"
// @Param        is_active query boolean false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(code)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items [get]
func (h *ItemHandler) List(c *gin.Context) {
	var filter inventoryapp.ItemListFilter
	if !bindQuery(c, &filter) {
		return
	}
	pageDefaults(&filter.Page, &filter.PageSize)

	items, total, err := h.items.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// UpdatePricing godoc
// @ID           updateItemPricing
// @Summary      Replace item pricing
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Param        request body inventoryapp.UpdateItemPricingRequest true "Pricing"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id}/pricing [put]
func (h *ItemHandler) UpdatePricing(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateItemPricingRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.items.UpdatePricing(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ChangeStatus godoc
// @ID           changeItemStatus
// @Summary      Change item status
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID" format(uuid)
// @Param        request body inventoryapp.ChangeItemStatusRequest true "Target status"
// @Success      200 {object} APIResponse[inventoryapp.ItemResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id}/status [put]
func (h *ItemHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.ChangeItemStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.items.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete godoc
// @ID           deleteItem
// @Summary      Deactivate an item
// @Description  Soft delete: the item stays referenced by history but is no longer active
// @Tags         items
// @Param        id path string true "Item ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.items.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
