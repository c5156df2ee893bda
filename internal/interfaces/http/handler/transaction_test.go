package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	inventoryapp "github.com/rentalcore/backend/internal/application/inventory"
	tradeapp "github.com/rentalcore/backend/internal/application/trade"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
	"github.com/rentalcore/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingBody(itemID uuid.UUID, quantity int) map[string]any {
	return map[string]any{
		"customer_id":       testutil.TestCustomerID(),
		"location_id":       testutil.TestLocationID(),
		"rental_start_date": "2024-05-02T00:00:00Z",
		"rental_end_date":   "2024-05-04T00:00:00Z",
		"tax_rate":          "10",
		"items": []map[string]any{
			{"item_id": itemID, "quantity": quantity},
		},
	}
}

func TestTransactionHandler_Booking(t *testing.T) {
	srv := newTestServer(t)
	itemID, _ := srv.seedItem(t, "TENT", 3)

	rec := srv.do(t, testutil.HTTPTestCase{
		Method:         http.MethodPost,
		Path:           "/api/v1/rentals/bookings",
		Body:           bookingBody(itemID, 2),
		ExpectedStatus: http.StatusCreated,
	})
	booking := testutil.JSONData[tradeapp.TransactionResponse](t, rec)
	assert.Equal(t, "RENTAL", booking.Type)
	assert.Equal(t, "DRAFT", booking.Status)
	assert.Equal(t, "132.00", booking.TotalAmount.String())
	assert.Equal(t, "200.00", booking.DepositAmount.String())

	rec = srv.do(t, testutil.HTTPTestCase{
		Path:           "/api/v1/transactions/" + booking.ID.String(),
		ExpectedStatus: http.StatusOK,
	})
	assert.Equal(t, booking.Number, testutil.JSONData[tradeapp.TransactionResponse](t, rec).Number)

	rec = srv.do(t, testutil.HTTPTestCase{
		Path:           "/api/v1/stock?item_id=" + itemID.String() + "&location_id=" + testutil.TestLocationID().String(),
		ExpectedStatus: http.StatusOK,
	})
	levels := testutil.JSONData[[]inventoryapp.StockLevelResponse](t, rec)
	require.Len(t, levels, 1)
	assert.Equal(t, int64(1), levels[0].QuantityAvailable)

	rec = srv.do(t, testutil.HTTPTestCase{
		Method:         http.MethodPost,
		Path:           "/api/v1/transactions/" + booking.ID.String() + "/cancel",
		Body:           map[string]any{"reason": "changed plans"},
		ExpectedStatus: http.StatusOK,
	})
	assert.Equal(t, "CANCELLED", testutil.JSONData[tradeapp.TransactionResponse](t, rec).Status)

	rec = srv.do(t, testutil.HTTPTestCase{
		Path:           "/api/v1/stock?item_id=" + itemID.String() + "&location_id=" + testutil.TestLocationID().String(),
		ExpectedStatus: http.StatusOK,
	})
	levels = testutil.JSONData[[]inventoryapp.StockLevelResponse](t, rec)
	assert.Equal(t, int64(3), levels[0].QuantityAvailable)
}

func TestTransactionHandler_Errors(t *testing.T) {
	srv := newTestServer(t)
	itemID, _ := srv.seedItem(t, "TENT", 1)

	testutil.RunHTTPTestCases(t, srv.engine, []testutil.HTTPTestCase{
		{
			Name:           "booking more units than exist",
			Method:         http.MethodPost,
			Path:           "/api/v1/rentals/bookings",
			Body:           bookingBody(itemID, 5),
			ExpectedStatus: http.StatusConflict,
			ExpectedCode:   "INSUFFICIENT_UNITS",
		},
		{
			Name:   "booking without items",
			Method: http.MethodPost,
			Path:   "/api/v1/rentals/bookings",
			Body: map[string]any{
				"customer_id":       testutil.TestCustomerID(),
				"location_id":       testutil.TestLocationID(),
				"rental_start_date": "2024-05-02T00:00:00Z",
				"rental_end_date":   "2024-05-04T00:00:00Z",
				"items":             []any{},
			},
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeValidation,
		},
		{
			Name:   "unknown transaction type",
			Method: http.MethodPost,
			Path:   "/api/v1/transactions",
			Body: map[string]any{
				"transaction_type": "BARTER",
				"customer_id":      testutil.TestCustomerID(),
				"location_id":      testutil.TestLocationID(),
			},
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeValidation,
		},
		{
			Name:           "unknown transaction",
			Path:           "/api/v1/transactions/" + uuid.New().String(),
			ExpectedStatus: http.StatusNotFound,
		},
		{
			Name:           "document without a printer",
			Path:           "/api/v1/transactions/" + uuid.New().String() + "/document",
			ExpectedStatus: http.StatusServiceUnavailable,
			ExpectedCode:   dto.ErrCodeUnavailable,
		},
		{
			Name:           "inspections need a return",
			Path:           "/api/v1/inspections",
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeValidation,
		},
		{
			Name:           "unknown return",
			Path:           "/api/v1/returns/" + uuid.New().String(),
			ExpectedStatus: http.StatusNotFound,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				errInfo := testutil.JSONResponse(t, rec)["error"].(map[string]any)
				assert.Contains(t, errInfo["code"], "NOT_FOUND")
			},
		},
	})
}
