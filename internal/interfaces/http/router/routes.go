package router

import (
	"github.com/rentalcore/backend/internal/interfaces/http/handler"
)

// Handlers bundles every HTTP handler the API mounts
type Handlers struct {
	Health       *handler.HealthHandler
	Items        *handler.ItemHandler
	Units        *handler.UnitHandler
	Stock        *handler.StockHandler
	Transactions *handler.TransactionHandler
	Returns      *handler.ReturnHandler
	Inspections  *handler.InspectionHandler
	Audit        *handler.AuditHandler
}

// APIGroups builds the domain groups of the versioned API
func APIGroups(h Handlers) []*DomainGroup {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.Health.Check)

	items := NewDomainGroup("items", "/items")
	items.POST("", h.Items.Create)
	items.GET("", h.Items.List)
	items.GET("/code/:code", h.Items.GetByCode)
	items.GET("/:id", h.Items.GetByID)
	items.PUT("/:id/pricing", h.Items.UpdatePricing)
	items.PUT("/:id/status", h.Items.ChangeStatus)
	items.DELETE("/:id", h.Items.Delete)

	units := NewDomainGroup("units", "/units")
	units.POST("", h.Units.Receive)
	units.GET("", h.Units.List)
	units.GET("/:id", h.Units.GetByID)
	units.DELETE("/:id", h.Units.Delete)
	units.POST("/:id/rent-out", h.Units.RentOut)
	units.POST("/:id/return", h.Units.Return)
	units.POST("/:id/sell", h.Units.Sell)
	units.POST("/:id/maintenance", h.Units.SendForMaintenance)
	units.POST("/:id/maintenance/complete", h.Units.CompleteMaintenance)
	units.POST("/:id/damage", h.Units.MarkAsDamaged)
	units.POST("/:id/retire", h.Units.Retire)
	units.POST("/:id/condition", h.Units.ChangeCondition)
	units.POST("/:id/move", h.Units.Move)

	stock := NewDomainGroup("stock", "/stock")
	stock.GET("", h.Stock.Get)
	stock.GET("/low", h.Stock.ListLow)
	stock.POST("/adjust", h.Stock.Adjust)
	stock.POST("/reserve", h.Stock.Reserve)
	stock.POST("/release", h.Stock.Release)
	stock.PUT("/levels", h.Stock.UpdateLevels)

	txns := NewDomainGroup("transactions", "/transactions")
	txns.POST("", h.Transactions.Create)
	txns.GET("", h.Transactions.List)
	txns.GET("/number/:number", h.Transactions.GetByNumber)
	txns.GET("/:id", h.Transactions.GetByID)
	txns.PUT("/:id", h.Transactions.Update)
	txns.POST("/:id/status", h.Transactions.ChangeStatus)
	txns.POST("/:id/submit", h.Transactions.Submit)
	txns.POST("/:id/payments", h.Transactions.ApplyPayment)
	txns.POST("/:id/refunds", h.Transactions.Refund)
	txns.POST("/:id/cancel", h.Transactions.Cancel)
	txns.POST("/:id/overdue", h.Transactions.MarkOverdue)
	txns.POST("/:id/complete-rental-return", h.Transactions.CompleteRentalReturn)
	txns.POST("/:id/checkout", h.Transactions.Checkout)
	txns.POST("/:id/pickup", h.Transactions.Pickup)
	txns.POST("/:id/extend", h.Transactions.Extend)
	txns.POST("/:id/rental-payments", h.Transactions.CollectRentalPayment)
	txns.POST("/:id/fulfill", h.Transactions.Fulfill)
	txns.GET("/:id/returns", h.Transactions.ListReturns)
	txns.GET("/:id/document", h.Transactions.Document)

	txnLines := txns.Group("transaction-lines", "/:id/lines")
	txnLines.POST("", h.Transactions.AddLine)
	txnLines.PUT("/:lineId", h.Transactions.UpdateLine)
	txnLines.DELETE("/:lineId", h.Transactions.RemoveLine)
	txnLines.POST("/:lineId/discount", h.Transactions.ApplyLineDiscount)
	txnLines.POST("/:lineId/returns", h.Transactions.ProcessLineReturn)
	txnLines.POST("/:lineId/rental-period", h.Transactions.UpdateLineRentalPeriod)

	rentals := NewDomainGroup("rentals", "/rentals")
	rentals.POST("/bookings", h.Transactions.CreateBooking)
	rentals.POST("/bookings/:id/submit", h.Transactions.SubmitBooking)
	rentals.POST("/bookings/:id/cancel", h.Transactions.CancelBooking)

	sales := NewDomainGroup("sales", "/sales")
	sales.POST("", h.Transactions.CreateSale)

	returns := NewDomainGroup("returns", "/returns")
	returns.POST("", h.Returns.Open)
	returns.GET("", h.Returns.List)
	returns.GET("/overdue", h.Returns.ListOverdue)
	returns.GET("/damaged", h.Returns.ListDamaged)
	returns.GET("/lines/pending", h.Returns.ListPendingLines)
	returns.GET("/number/:number", h.Returns.GetByNumber)
	returns.POST("/estimate", h.Returns.Estimate)
	returns.POST("/bulk/status", h.Returns.BulkStatus)
	returns.POST("/bulk/process", h.Returns.BulkProcess)
	returns.GET("/:id", h.Returns.GetByID)
	returns.PUT("/:id", h.Returns.Update)
	returns.POST("/:id/status", h.Returns.ChangeStatus)
	returns.POST("/:id/finalize", h.Returns.Finalize)
	returns.POST("/:id/cancel", h.Returns.Cancel)
	returns.POST("/:id/release-deposit", h.Returns.ReleaseDeposit)
	returns.GET("/:id/receipt", h.Returns.Receipt)

	returnLines := returns.Group("return-lines", "/:id/lines")
	returnLines.POST("", h.Returns.AddLine)
	returnLines.PUT("/:lineId", h.Returns.UpdateLine)
	returnLines.DELETE("/:lineId", h.Returns.RemoveLine)
	returnLines.POST("/:lineId/status", h.Returns.UpdateLineStatus)
	returnLines.POST("/:lineId/damage", h.Returns.AssessDamage)
	returnLines.POST("/:lineId/late-fee", h.Returns.CalculateLateFee)
	returnLines.POST("/:lineId/process", h.Returns.ProcessLine)

	inspections := NewDomainGroup("inspections", "/inspections")
	inspections.POST("", h.Inspections.Create)
	inspections.GET("", h.Inspections.ListByReturn)
	inspections.GET("/:id", h.Inspections.GetByID)
	inspections.PUT("/:id", h.Inspections.UpdateFindings)
	inspections.POST("/:id/start", h.Inspections.Start)
	inspections.POST("/:id/complete", h.Inspections.Complete)
	inspections.POST("/:id/fail", h.Inspections.Fail)
	inspections.POST("/:id/evidence", h.Inspections.RequestEvidenceUpload)
	// evidence keys contain slashes
	inspections.GET("/:id/evidence/*key", h.Inspections.EvidenceURL)

	audit := NewDomainGroup("audit", "/audit")
	audit.GET("/:entityType/:entityId", h.Audit.ListForEntity)

	return []*DomainGroup{system, items, units, stock, txns, rentals, sales, returns, inspections, audit}
}
