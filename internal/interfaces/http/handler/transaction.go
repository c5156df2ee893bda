package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	printingapp "github.com/rentalcore/backend/internal/application/printing"
	rentalapp "github.com/rentalcore/backend/internal/application/rental"
	tradeapp "github.com/rentalcore/backend/internal/application/trade"
	"github.com/rentalcore/backend/internal/interfaces/http/middleware"
)

// TransactionHandler serves transaction headers and lines together with
// the rental and sale workflows built on them
type TransactionHandler struct {
	BaseHandler
	transactions *tradeapp.TransactionService
	rentals      *tradeapp.RentalService
	sales        *tradeapp.SalesService
	returns      *rentalapp.ReturnService
	documents    *printingapp.DocumentService
}

// NewTransactionHandler creates a TransactionHandler
func NewTransactionHandler(
	transactions *tradeapp.TransactionService,
	rentals *tradeapp.RentalService,
	sales *tradeapp.SalesService,
	returns *rentalapp.ReturnService,
	documents *printingapp.DocumentService,
) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		rentals:      rentals,
		sales:        sales,
		returns:      returns,
		documents:    documents,
	}
}

// Create godoc
// @ID           createTransaction
// @Summary      Create a transaction
// @Description  Opens a DRAFT transaction with optional lines. Lines added here reserve no stock.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateTransactionRequest true "Transaction"
// @Success      201 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req tradeapp.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	txn, err := h.transactions.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// GetByID godoc
// @ID           getTransactionById
// @Summary      Get transaction by ID
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	txn, err := h.transactions.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// GetByNumber godoc
// @ID           getTransactionByNumber
// @Summary      Get transaction by number
// @Tags         transactions
// @Produce      json
// @Param        number path string true "Transaction number" example(RNT-20260401-0007)
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/number/{number} [get]
func (h *TransactionHandler) GetByNumber(c *gin.Context) {
	txn, err := h.transactions.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// List godoc
// @ID           listTransactions
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Param        transaction_type query string false "Type" Enums(SALE, RENTAL, RETURN, EXCHANGE, REFUND, ADJUSTMENT, PURCHASE)
// @Param        status query string false "Status"
// @Param        payment_status query string false "Payment status"
// @Param        customer_id query string false "Customer" format(uuid)
// @Param        location_id query string false "Location" format(uuid)
// @Param        sales_person_id query string false "Sales person" format(uuid)
// @Param        date_from query string false "From date" format(date)
// @Param        date_to query string false "To date" format(date)
// @Param        min_amount query string false "Minimum total"
// @Param        max_amount query string false "Maximum total"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(transaction_date)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]tradeapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var filter tradeapp.TransactionListFilter
	if !bindQuery(c, &filter) ||
		!h.queryUUID(c, "customer_id", &filter.CustomerID) ||
		!h.queryUUID(c, "location_id", &filter.LocationID) ||
		!h.queryUUID(c, "sales_person_id", &filter.SalesPersonID) {
		return
	}
	pageDefaults(&filter.Page, &filter.PageSize)

	txns, total, err := h.transactions.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txns, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateTransaction
// @Summary      Update transaction header
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body tradeapp.UpdateTransactionRequest true "Header changes"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.Update(ctx, id, req)
	})
}

// ChangeStatus godoc
// @ID           changeTransactionStatus
// @Summary      Change transaction status
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body tradeapp.ChangeStatusRequest true "Target status"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/status [post]
func (h *TransactionHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ChangeStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.ChangeStatus(ctx, id, req)
	})
}

// Submit godoc
// @ID           submitTransaction
// @Summary      Submit a draft
// @Description  Moves a DRAFT transaction to PENDING; rental drafts use the rental submit rules
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/submit [post]
func (h *TransactionHandler) Submit(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.Submit(ctx, id)
	})
}

// ApplyPayment godoc
// @ID           applyTransactionPayment
// @Summary      Apply a payment
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body tradeapp.PaymentRequest true "Payment"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/payments [post]
func (h *TransactionHandler) ApplyPayment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	key := middleware.GetIdempotencyKey(c)
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.ApplyPayment(ctx, id, req, key)
	})
}

// Refund godoc
// @ID           refundTransaction
// @Summary      Refund a completed transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body tradeapp.RefundRequest true "Refund"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/refunds [post]
func (h *TransactionHandler) Refund(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.RefundRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.Refund(ctx, id, req)
	})
}

// Cancel godoc
// @ID           cancelTransaction
// @Summary      Cancel a transaction
// @Description  Held reservations are released and rented units come back AVAILABLE
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body tradeapp.CancelRequest false "Reason"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/cancel [post]
func (h *TransactionHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.Cancel(ctx, id, req)
	})
}

// MarkOverdue godoc
// @ID           markTransactionOverdue
// @Summary      Mark a rental overdue
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/overdue [post]
func (h *TransactionHandler) MarkOverdue(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.MarkOverdue(ctx, id)
	})
}

// CompleteRentalReturn godoc
// @ID           completeRentalReturn
// @Summary      Complete a rental return
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body tradeapp.CompleteRentalReturnRequest false "Actual return date"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/complete-rental-return [post]
func (h *TransactionHandler) CompleteRentalReturn(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CompleteRentalReturnRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.CompleteRentalReturn(ctx, id, req)
	})
}

// AddLine godoc
// @ID           addTransactionLine
// @Summary      Add a line
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body tradeapp.LineRequest true "Line"
// @Success      201 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/lines [post]
func (h *TransactionHandler) AddLine(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.LineRequest
	if !bindJSON(c, &req) {
		return
	}
	txn, err := h.transactions.AddLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// UpdateLine godoc
// @ID           updateTransactionLine
// @Summary      Replace a line
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Param        request body tradeapp.LineRequest true "Line"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/lines/{lineId} [put]
func (h *TransactionHandler) UpdateLine(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req tradeapp.LineRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.UpdateLine(ctx, id, lineID, req)
	})
}

// RemoveLine godoc
// @ID           removeTransactionLine
// @Summary      Remove a line
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/lines/{lineId} [delete]
func (h *TransactionHandler) RemoveLine(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.RemoveLine(ctx, id, lineID)
	})
}

// ApplyLineDiscount godoc
// @ID           applyLineDiscount
// @Summary      Discount a line
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Param        request body tradeapp.LineDiscountRequest true "Discount"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/lines/{lineId}/discount [post]
func (h *TransactionHandler) ApplyLineDiscount(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req tradeapp.LineDiscountRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.ApplyLineDiscount(ctx, id, lineID, req)
	})
}

// ProcessLineReturn godoc
// @ID           processLineReturn
// @Summary      Record returned quantity on a line
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Param        request body tradeapp.LineReturnRequest true "Returned quantity"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/lines/{lineId}/returns [post]
func (h *TransactionHandler) ProcessLineReturn(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req tradeapp.LineReturnRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.ProcessLineReturn(ctx, id, lineID, req)
	})
}

// UpdateLineRentalPeriod godoc
// @ID           updateLineRentalPeriod
// @Summary      Move a line's rental end
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        lineId path string true "Line ID" format(uuid)
// @Param        request body tradeapp.RentalPeriodRequest true "New end date"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/lines/{lineId}/rental-period [post]
func (h *TransactionHandler) UpdateLineRentalPeriod(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}
	var req tradeapp.RentalPeriodRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.transactions.UpdateLineRentalPeriod(ctx, id, lineID, req)
	})
}

// CreateBooking godoc
// @ID           createRentalBooking
// @Summary      Book a rental
// @Description  Assigns units, reserves stock and adds deposit lines in one unit of work
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateBookingRequest true "Booking"
// @Success      201 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rentals/bookings [post]
func (h *TransactionHandler) CreateBooking(c *gin.Context) {
	var req tradeapp.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	txn, err := h.rentals.CreateBooking(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// SubmitBooking godoc
// @ID           submitRentalBooking
// @Summary      Submit a rental booking
// @Tags         rentals
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rentals/bookings/{id}/submit [post]
func (h *TransactionHandler) SubmitBooking(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.rentals.Submit(ctx, id)
	})
}

// CancelBooking godoc
// @ID           cancelRentalBooking
// @Summary      Cancel a rental booking
// @Description  Only rentals are accepted; units and reservations are released
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body tradeapp.CancelRequest false "Reason"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rentals/bookings/{id}/cancel [post]
func (h *TransactionHandler) CancelBooking(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.rentals.CancelBooking(ctx, id, req)
	})
}

// Checkout godoc
// @ID           checkoutRental
// @Summary      Check out a rental
// @Description  Takes the payment and confirms a pending booking
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body tradeapp.PaymentRequest true "Payment"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/checkout [post]
func (h *TransactionHandler) Checkout(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	key := middleware.GetIdempotencyKey(c)
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.rentals.Checkout(ctx, id, req, key)
	})
}

// Pickup godoc
// @ID           pickupRental
// @Summary      Hand over rented units
// @Tags         rentals
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/pickup [post]
func (h *TransactionHandler) Pickup(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.rentals.Pickup(ctx, id)
	})
}

// Extend godoc
// @ID           extendRental
// @Summary      Extend a rental
// @Description  Reprices the rented lines for the new end date and optionally takes a payment
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body tradeapp.ExtendRentalRequest true "New end date"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/extend [post]
func (h *TransactionHandler) Extend(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ExtendRentalRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.rentals.Extend(ctx, id, req)
	})
}

// CollectRentalPayment godoc
// @ID           collectRentalPayment
// @Summary      Pay toward an active rental
// @Description  Takes a payment on an in-progress rental, up to its balance due
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body tradeapp.PaymentRequest true "Payment"
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/rental-payments [post]
func (h *TransactionHandler) CollectRentalPayment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	key := middleware.GetIdempotencyKey(c)
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.rentals.CollectPayment(ctx, id, req, key)
	})
}

// CreateSale godoc
// @ID           createSale
// @Summary      Sell items
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateSaleRequest true "Sale"
// @Success      201 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [post]
func (h *TransactionHandler) CreateSale(c *gin.Context) {
	var req tradeapp.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	txn, err := h.sales.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// Fulfill godoc
// @ID           fulfillSale
// @Summary      Fulfil a sale
// @Description  Marks the sold units as SOLD and consumes their reservations
// @Tags         sales
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.TransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/fulfill [post]
func (h *TransactionHandler) Fulfill(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*tradeapp.TransactionResponse, error) {
		return h.sales.FulfillSale(ctx, id)
	})
}

// ListReturns godoc
// @ID           listTransactionReturns
// @Summary      List the returns of a rental
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[[]rentalapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/returns [get]
func (h *TransactionHandler) ListReturns(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	returns, err := h.returns.ListByTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, returns)
}

// Document godoc
// @ID           getTransactionDocument
// @Summary      Download the transaction document
// @Description  Rental agreement, sales invoice or generic transaction document as PDF
// @Tags         transactions
// @Produce      application/pdf
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/document [get]
func (h *TransactionHandler) Document(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documents.TransactionDocument(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendDocument(c, doc)
}

// respond runs a service call returning a transaction and writes it
func (h *TransactionHandler) respond(c *gin.Context, fn func(ctx context.Context) (*tradeapp.TransactionResponse, error)) {
	txn, err := fn(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// sendDocument writes a rendered PDF as an attachment
func sendDocument(c *gin.Context, doc *printingapp.DocumentResponse) {
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Header("X-Page-Count", strconv.Itoa(doc.PageCount))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
