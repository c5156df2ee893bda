package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/rentalcore/backend/internal/application/inventory"
)

// UnitHandler serves inventory units and their lifecycle actions
type UnitHandler struct {
	BaseHandler
	units *inventoryapp.UnitService
}

// NewUnitHandler creates a UnitHandler
func NewUnitHandler(units *inventoryapp.UnitService) *UnitHandler {
	return &UnitHandler{units: units}
}

// Receive godoc
// @ID           receiveUnit
// @Summary      Receive a unit
// @Description  Register a physical unit of an item at a location; on-hand stock grows by one
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ReceiveUnitRequest true "Unit"
// @Success      201 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units [post]
func (h *UnitHandler) Receive(c *gin.Context) {
	var req inventoryapp.ReceiveUnitRequest
	if !bindJSON(c, &req) {
		return
	}
	unit, err := h.units.Receive(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, unit)
}

// GetByID godoc
// @ID           getUnitById
// @Summary      Get unit by ID
// @Tags         units
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id} [get]
func (h *UnitHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	unit, err := h.units.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// List godoc
// @ID           listUnits
// @Summary      List units
// @Tags         units
// @Produce      json
// @Param        search query string false "Code or serial contains"
// @Param        item_id query string false "Item" format(uuid)
// @Param        location_id query string false "Location" format(uuid)
// @Param        status query string false "Status" Enums(AVAILABLE, RENTED, SOLD, MAINTENANCE, DAMAGED, RETIRED)
// @Param        condition query string false "Condition" Enums(NEW, EXCELLENT, GOOD, FAIR, POOR, DAMAGED)
// @Param        is_active query boolean false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]inventoryapp.UnitResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units [get]
func (h *UnitHandler) List(c *gin.Context) {
	var filter inventoryapp.UnitListFilter
	if !bindQuery(c, &filter) ||
		!h.queryUUID(c, "item_id", &filter.ItemID) ||
		!h.queryUUID(c, "location_id", &filter.LocationID) {
		return
	}
	pageDefaults(&filter.Page, &filter.PageSize)

	units, total, err := h.units.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, units, total, filter.Page, filter.PageSize)
}

// Delete godoc
// @ID           deleteUnit
// @Summary      Deactivate a unit
// @Tags         units
// @Param        id path string true "Unit ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id} [delete]
func (h *UnitHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.units.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

type unitAction func(ctx context.Context, id uuid.UUID, req inventoryapp.UnitActionRequest) (*inventoryapp.UnitResponse, error)

// act runs one lifecycle action with an optional UnitActionRequest body
func (h *UnitHandler) act(c *gin.Context, fn unitAction) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UnitActionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	unit, err := fn(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// RentOut godoc
// @ID           rentOutUnit
// @Summary      Rent out a unit
// @Tags         units
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/rent-out [post]
func (h *UnitHandler) RentOut(c *gin.Context) {
	h.act(c, func(ctx context.Context, id uuid.UUID, _ inventoryapp.UnitActionRequest) (*inventoryapp.UnitResponse, error) {
		return h.units.RentOut(ctx, id)
	})
}

// Return godoc
// @ID           returnUnit
// @Summary      Return a rented unit
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Param        request body inventoryapp.UnitActionRequest false "Returned condition"
// @Success      200 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/return [post]
func (h *UnitHandler) Return(c *gin.Context) {
	h.act(c, h.units.Return)
}

// Sell godoc
// @ID           sellUnit
// @Summary      Sell a unit
// @Tags         units
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/sell [post]
func (h *UnitHandler) Sell(c *gin.Context) {
	h.act(c, func(ctx context.Context, id uuid.UUID, _ inventoryapp.UnitActionRequest) (*inventoryapp.UnitResponse, error) {
		return h.units.Sell(ctx, id)
	})
}

// SendForMaintenance godoc
// @ID           sendUnitForMaintenance
// @Summary      Send a unit for maintenance
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Param        request body inventoryapp.UnitActionRequest false "Reason"
// @Success      200 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/maintenance [post]
func (h *UnitHandler) SendForMaintenance(c *gin.Context) {
	h.act(c, h.units.SendForMaintenance)
}

// CompleteMaintenance godoc
// @ID           completeUnitMaintenance
// @Summary      Complete unit maintenance
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Param        request body inventoryapp.UnitActionRequest false "Condition and next maintenance date"
// @Success      200 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/maintenance/complete [post]
func (h *UnitHandler) CompleteMaintenance(c *gin.Context) {
	h.act(c, h.units.CompleteMaintenance)
}

// MarkAsDamaged godoc
// @ID           markUnitDamaged
// @Summary      Mark a unit as damaged
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Param        request body inventoryapp.UnitActionRequest false "Reason"
// @Success      200 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/damage [post]
func (h *UnitHandler) MarkAsDamaged(c *gin.Context) {
	h.act(c, h.units.MarkAsDamaged)
}

// Retire godoc
// @ID           retireUnit
// @Summary      Retire a unit
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Param        request body inventoryapp.UnitActionRequest false "Reason"
// @Success      200 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/retire [post]
func (h *UnitHandler) Retire(c *gin.Context) {
	h.act(c, h.units.Retire)
}

// ChangeCondition godoc
// @ID           changeUnitCondition
// @Summary      Change unit condition
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Param        request body inventoryapp.UnitActionRequest true "New condition"
// @Success      200 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/condition [post]
func (h *UnitHandler) ChangeCondition(c *gin.Context) {
	h.act(c, h.units.ChangeCondition)
}

// Move godoc
// @ID           moveUnit
// @Summary      Move a unit to another location
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Param        request body inventoryapp.UnitActionRequest true "Target location"
// @Success      200 {object} APIResponse[inventoryapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/move [post]
func (h *UnitHandler) Move(c *gin.Context) {
	h.act(c, h.units.Move)
}
