package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/rentalcore/backend/internal/application/inventory"
	printingapp "github.com/rentalcore/backend/internal/application/printing"
	rentalapp "github.com/rentalcore/backend/internal/application/rental"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	tradeapp "github.com/rentalcore/backend/internal/application/trade"
	"github.com/rentalcore/backend/internal/domain/shared"
	infra "github.com/rentalcore/backend/internal/infrastructure/printing"
	"github.com/rentalcore/backend/internal/interfaces/http/middleware"
	"github.com/rentalcore/backend/tests/testutil"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

var testNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

// testServer wires real services over the in-memory store behind the
// handlers, mounted the same way the router mounts them.
type testServer struct {
	engine *gin.Engine
	store  *testutil.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := testutil.NewMemoryStore(func() time.Time { return testNow })
	repos := store.Repositories()
	scope := store.Scope()
	clock := shared.FixedClock{At: testNow}

	items := inventoryapp.NewItemService(scope, repos.ItemRepo, inventoryapp.WithClock(clock))
	units := inventoryapp.NewUnitService(scope, repos.UnitRepo, nil, inventoryapp.WithClock(clock))
	stock := inventoryapp.NewStockService(scope, repos.StockRepo, inventoryapp.WithClock(clock))
	txns := tradeapp.NewTransactionService(scope, repos.TransactionRepo, tradeapp.WithClock(clock))
	rentals := tradeapp.NewRentalService(scope, tradeapp.WithClock(clock))
	sales := tradeapp.NewSalesService(scope, tradeapp.WithClock(clock))
	returns := rentalapp.NewReturnService(scope, repos.ReturnRepo, repos.TransactionRepo, repos.ItemRepo, rentalapp.WithClock(clock))
	inspections := rentalapp.NewInspectionService(scope, repos.InspectionRepo, rentalapp.WithClock(clock))
	documents := printingapp.NewDocumentService(repos.TransactionRepo, repos.ReturnRepo, repos.ItemRepo, repos.UnitRepo, nil, infra.CompanyInfo{Name: "Test Rentals"})

	itemH := NewItemHandler(items)
	unitH := NewUnitHandler(units)
	stockH := NewStockHandler(stock)
	txnH := NewTransactionHandler(txns, rentals, sales, returns, documents)
	returnH := NewReturnHandler(returns, txns, documents)
	inspectionH := NewInspectionHandler(inspections)
	auditH := NewAuditHandler(appshared.NewAuditService(repos.AuditRepo))

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.IdempotencyKey())
	api := r.Group("/api/v1")

	api.POST("/items", itemH.Create)
	api.GET("/items", itemH.List)
	api.GET("/items/code/:code", itemH.GetByCode)
	api.GET("/items/:id", itemH.GetByID)
	api.PUT("/items/:id/pricing", itemH.UpdatePricing)
	api.PUT("/items/:id/status", itemH.ChangeStatus)
	api.DELETE("/items/:id", itemH.Delete)

	api.POST("/units", unitH.Receive)
	api.GET("/units", unitH.List)
	api.GET("/units/:id", unitH.GetByID)
	api.POST("/units/:id/maintenance", unitH.SendForMaintenance)
	api.POST("/units/:id/maintenance/complete", unitH.CompleteMaintenance)
	api.POST("/units/:id/return", unitH.Return)

	api.GET("/stock", stockH.Get)
	api.POST("/stock/adjust", stockH.Adjust)

	api.POST("/transactions", txnH.Create)
	api.GET("/transactions/:id", txnH.GetByID)
	api.GET("/transactions/:id/document", txnH.Document)
	api.POST("/transactions/:id/cancel", txnH.Cancel)
	api.POST("/rentals/bookings", txnH.CreateBooking)

	api.GET("/returns/:id", returnH.GetByID)
	api.GET("/inspections", inspectionH.ListByReturn)

	api.GET("/audit/:entityType/:entityId", auditH.ListForEntity)

	return &testServer{engine: r, store: store}
}

func (s *testServer) do(t *testing.T, tc testutil.HTTPTestCase) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.RunHTTPTestCase(t, s.engine, tc)
}

// seedItem creates a rental item and n units of it at the test location
func (s *testServer) seedItem(t *testing.T, code string, n int) (uuid.UUID, []uuid.UUID) {
	t.Helper()

	rec := s.do(t, testutil.HTTPTestCase{
		Method: http.MethodPost,
		Path:   "/api/v1/items",
		Body: map[string]any{
			"code":                code,
			"name":                "Item " + code,
			"item_type":           "RENTAL",
			"purchase_price":      "300.00",
			"rental_rate_per_day": "20.00",
			"security_deposit":    "100.00",
			"min_rental_days":     1,
		},
		ExpectedStatus: http.StatusCreated,
	})
	item := testutil.JSONData[inventoryapp.ItemResponse](t, rec)

	units := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		rec := s.do(t, testutil.HTTPTestCase{
			Method: http.MethodPost,
			Path:   "/api/v1/units",
			Body: map[string]any{
				"code":        code + "-" + string(rune('A'+i)),
				"item_id":     item.ID,
				"location_id": testutil.TestLocationID(),
			},
			ExpectedStatus: http.StatusCreated,
		})
		unit := testutil.JSONData[inventoryapp.UnitResponse](t, rec)
		units = append(units, unit.ID)
	}
	require.Len(t, units, n)
	return item.ID, units
}
