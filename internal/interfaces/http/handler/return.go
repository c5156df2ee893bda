package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	printingapp "github.com/rentalcore/backend/internal/application/printing"
	rentalapp "github.com/rentalcore/backend/internal/application/rental"
	tradeapp "github.com/rentalcore/backend/internal/application/trade"
)

// ReturnHandler serves rental returns and their lines
type ReturnHandler struct {
	BaseHandler
	returns      *rentalapp.ReturnService
	transactions *tradeapp.TransactionService
	documents    *printingapp.DocumentService
}

// NewReturnHandler creates a ReturnHandler
func NewReturnHandler(
	returns *rentalapp.ReturnService,
	transactions *tradeapp.TransactionService,
	documents *printingapp.DocumentService,
) *ReturnHandler {
	return &ReturnHandler{returns: returns, transactions: transactions, documents: documents}
}

// Open godoc
// @ID           openReturn
// @Summary      Open a return
// @Description  Starts a return against an in-progress rental with one line per returned unit
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        request body rentalapp.CreateReturnRequest true "Return"
// @Success      201 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns [post]
func (h *ReturnHandler) Open(c *gin.Context) {
	var req rentalapp.CreateReturnRequest
	if !bindJSON(c, &req) {
		return
	}
	ret, err := h.returns.Open(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// GetByID godoc
// @ID           getReturnById
// @Summary      Get return by ID
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id} [get]
func (h *ReturnHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	ret, err := h.returns.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// GetByNumber godoc
// @ID           getReturnByNumber
// @Summary      Get return by number
// @Tags         returns
// @Produce      json
// @Param        number path string true "Return number" example(RET-20260406-0001)
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/number/{number} [get]
func (h *ReturnHandler) GetByNumber(c *gin.Context) {
	ret, err := h.returns.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// List godoc
// @ID           listReturns
// @Summary      List returns
// @Tags         returns
// @Produce      json
// @Param        status query string false "Status"
// @Param        transaction_id query string false "Transaction" format(uuid)
// @Param        customer_id query string false "Customer" format(uuid)
// @Param        location_id query string false "Return location" format(uuid)
// @Param        damaged_only query boolean false "Only returns with damaged lines"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]rentalapp.ReturnResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	returns, total, err := h.returns.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, returns, total, filter.Page, filter.PageSize)
}

// ListDamaged godoc
// @ID           listDamagedReturns
// @Summary      List returns with damage
// @Tags         returns
// @Produce      json
// @Param        location_id query string false "Return location" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]rentalapp.ReturnResponse]
// @Security     BearerAuth
// @Router       /returns/damaged [get]
func (h *ReturnHandler) ListDamaged(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	returns, total, err := h.returns.ListDamaged(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, returns, total, filter.Page, filter.PageSize)
}

// ListOverdue godoc
// @ID           listOverdueRentals
// @Summary      List overdue rentals
// @Description  In-progress rentals whose end date passed without a completed return
// @Tags         returns
// @Produce      json
// @Param        as_of query string false "Reference date" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]tradeapp.TransactionResponse]
// @Security     BearerAuth
// @Router       /returns/overdue [get]
func (h *ReturnHandler) ListOverdue(c *gin.Context) {
	var filter tradeapp.OverdueFilter
	if !bindQuery(c, &filter) {
		return
	}
	pageDefaults(&filter.Page, &filter.PageSize)

	txns, total, err := h.transactions.ListOverdue(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txns, total, filter.Page, filter.PageSize)
}

type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ListPendingLines godoc
// @ID           listPendingReturnLines
// @Summary      List unprocessed return lines
// @Tags         returns
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]rentalapp.PendingLineResponse]
// @Security     BearerAuth
// @Router       /returns/lines/pending [get]
func (h *ReturnHandler) ListPendingLines(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	pageDefaults(&q.Page, &q.PageSize)

	lines, total, err := h.returns.ListPendingLines(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, lines, total, q.Page, q.PageSize)
}

// Update godoc
// @ID           updateReturn
// @Summary      Update an open return
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        request body rentalapp.UpdateReturnRequest true "Changes"
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id} [put]
func (h *ReturnHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.UpdateReturnRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.Update(ctx, id, req)
	})
}

// ChangeStatus godoc
// @ID           changeReturnStatus
// @Summary      Change return status
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        request body rentalapp.ChangeReturnStatusRequest true "Target status"
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/status [post]
func (h *ReturnHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.ChangeReturnStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.ChangeStatus(ctx, id, req)
	})
}

// Finalize godoc
// @ID           finalizeReturn
// @Summary      Finalize a return
// @Description  Settles fees against the deposit and completes the rental once every unit is back
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/finalize [post]
func (h *ReturnHandler) Finalize(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.Finalize(ctx, id)
	})
}

// Cancel godoc
// @ID           cancelReturn
// @Summary      Cancel a return
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        request body rentalapp.CancelReturnRequest false "Reason"
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/cancel [post]
func (h *ReturnHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.CancelReturnRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.Cancel(ctx, id, req)
	})
}

// ReleaseDeposit godoc
// @ID           releaseReturnDeposit
// @Summary      Release the deposit
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        request body rentalapp.ReleaseDepositRequest false "Override amount"
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/release-deposit [post]
func (h *ReturnHandler) ReleaseDeposit(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.ReleaseDepositRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.ReleaseDeposit(ctx, id, req)
	})
}

// AddLine godoc
// @ID           addReturnLine
// @Summary      Add a returned unit
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        request body rentalapp.ReturnUnitRequest true "Unit"
// @Success      201 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/lines [post]
func (h *ReturnHandler) AddLine(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.ReturnUnitRequest
	if !bindJSON(c, &req) {
		return
	}
	ret, err := h.returns.AddLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// UpdateLine godoc
// @ID           updateReturnLine
// @Summary      Update a return line
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Param        request body rentalapp.UpdateReturnLineRequest true "Changes"
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/lines/{lineId} [put]
func (h *ReturnHandler) UpdateLine(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req rentalapp.UpdateReturnLineRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.UpdateLine(ctx, id, lineID, req)
	})
}

// RemoveLine godoc
// @ID           removeReturnLine
// @Summary      Remove a return line
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/lines/{lineId} [delete]
func (h *ReturnHandler) RemoveLine(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.RemoveLine(ctx, id, lineID)
	})
}

// UpdateLineStatus godoc
// @ID           changeReturnLineStatus
// @Summary      Change return line status
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Param        request body rentalapp.ReturnLineStatusRequest true "Target status"
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/lines/{lineId}/status [post]
func (h *ReturnHandler) UpdateLineStatus(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req rentalapp.ReturnLineStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.UpdateLineStatus(ctx, id, lineID, req)
	})
}

// AssessDamage godoc
// @ID           assessReturnLineDamage
// @Summary      Assess damage on a line
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Param        request body rentalapp.DamageAssessmentRequest true "Assessment"
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/lines/{lineId}/damage [post]
func (h *ReturnHandler) AssessDamage(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req rentalapp.DamageAssessmentRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.AssessDamage(ctx, id, lineID, req)
	})
}

// CalculateLateFee godoc
// @ID           calculateReturnLineLateFee
// @Summary      Recalculate a line's late fee
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/lines/{lineId}/late-fee [post]
func (h *ReturnHandler) CalculateLateFee(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.CalculateLateFee(ctx, id, lineID)
	})
}

// ProcessLine godoc
// @ID           processReturnLine
// @Summary      Process a return line
// @Description  Puts the unit back in stock, to maintenance or out of service according to its condition
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Success      200 {object} APIResponse[rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/lines/{lineId}/process [post]
func (h *ReturnHandler) ProcessLine(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.ReturnResponse, error) {
		return h.returns.ProcessLine(ctx, id, lineID)
	})
}

// Estimate godoc
// @ID           estimateReturnCosts
// @Summary      Preview return costs
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        request body rentalapp.EstimateRequest true "Preview input"
// @Success      200 {object} APIResponse[rentalapp.EstimateResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/estimate [post]
func (h *ReturnHandler) Estimate(c *gin.Context) {
	var req rentalapp.EstimateRequest
	if !bindJSON(c, &req) {
		return
	}
	estimate, err := h.returns.EstimateReturnCosts(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estimate)
}

// BulkStatus godoc
// @ID           bulkChangeReturnStatus
// @Summary      Change the status of several returns
// @Description  Each return is changed in its own unit of work; failures are reported per entry
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        request body rentalapp.BulkStatusRequest true "Returns and target status"
// @Success      200 {object} APIResponse[rentalapp.BulkResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/bulk/status [post]
func (h *ReturnHandler) BulkStatus(c *gin.Context) {
	var req rentalapp.BulkStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	h.Success(c, h.returns.BulkUpdateStatus(c.Request.Context(), req))
}

// BulkProcess godoc
// @ID           bulkProcessReturnLines
// @Summary      Process several return lines
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        request body rentalapp.BulkProcessRequest true "Lines"
// @Success      200 {object} APIResponse[rentalapp.BulkResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/bulk/process [post]
func (h *ReturnHandler) BulkProcess(c *gin.Context) {
	var req rentalapp.BulkProcessRequest
	if !bindJSON(c, &req) {
		return
	}
	h.Success(c, h.returns.BulkProcessLines(c.Request.Context(), req))
}

// Receipt godoc
// @ID           getReturnReceipt
// @Summary      Download the return receipt
// @Tags         returns
// @Produce      application/pdf
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id}/receipt [get]
func (h *ReturnHandler) Receipt(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documents.ReturnReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendDocument(c, doc)
}

func (h *ReturnHandler) listFilter(c *gin.Context) (rentalapp.ReturnListFilter, bool) {
	var filter rentalapp.ReturnListFilter
	if !bindQuery(c, &filter) ||
		!h.queryUUID(c, "transaction_id", &filter.TransactionID) ||
		!h.queryUUID(c, "customer_id", &filter.CustomerID) ||
		!h.queryUUID(c, "location_id", &filter.LocationID) {
		return filter, false
	}
	pageDefaults(&filter.Page, &filter.PageSize)
	return filter, true
}

func (h *ReturnHandler) respond(c *gin.Context, fn func(ctx context.Context) (*rentalapp.ReturnResponse, error)) {
	ret, err := fn(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}
