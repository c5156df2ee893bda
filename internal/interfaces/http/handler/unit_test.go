package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	inventoryapp "github.com/rentalcore/backend/internal/application/inventory"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
	"github.com/rentalcore/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitHandler_Lifecycle(t *testing.T) {
	srv := newTestServer(t)
	_, units := srv.seedItem(t, "TENT", 1)
	base := "/api/v1/units/" + units[0].String()

	rec := srv.do(t, testutil.HTTPTestCase{
		Method:         http.MethodPost,
		Path:           base + "/maintenance",
		Body:           map[string]any{"reason": "torn zip"},
		ExpectedStatus: http.StatusOK,
	})
	assert.Equal(t, "MAINTENANCE", testutil.JSONData[inventoryapp.UnitResponse](t, rec).Status)

	// body is optional on actions
	rec = srv.do(t, testutil.HTTPTestCase{
		Method:         http.MethodPost,
		Path:           base + "/maintenance/complete",
		ExpectedStatus: http.StatusOK,
	})
	assert.Equal(t, "AVAILABLE", testutil.JSONData[inventoryapp.UnitResponse](t, rec).Status)

	srv.do(t, testutil.HTTPTestCase{
		Method:         http.MethodPost,
		Path:           base + "/return",
		ExpectedStatus: http.StatusUnprocessableEntity,
		ExpectedCode:   "INVALID_UNIT_TRANSITION",
		Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
			errInfo := testutil.JSONResponse(t, rec)["error"].(map[string]any)
			assert.Equal(t, "AVAILABLE", errInfo["current"])
			assert.NotEmpty(t, errInfo["request_id"])
		},
	})

	srv.do(t, testutil.HTTPTestCase{
		Method:         http.MethodPost,
		Path:           base + "/maintenance",
		Body:           map[string]any{"condition": "SHINY"},
		ExpectedStatus: http.StatusBadRequest,
		ExpectedCode:   dto.ErrCodeValidation,
	})
}

func TestUnitHandler_List(t *testing.T) {
	srv := newTestServer(t)
	tentID, _ := srv.seedItem(t, "TENT", 2)
	srv.seedItem(t, "STOVE", 1)

	testutil.RunHTTPTestCases(t, srv.engine, []testutil.HTTPTestCase{
		{
			Name:           "filters by item",
			Path:           "/api/v1/units?item_id=" + tentID.String(),
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				units := testutil.JSONData[[]inventoryapp.UnitResponse](t, rec)
				require.Len(t, units, 2)
				for _, u := range units {
					assert.Equal(t, tentID, u.ItemID)
				}
			},
		},
		{
			Name:           "all units",
			Path:           "/api/v1/units",
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Len(t, testutil.JSONData[[]inventoryapp.UnitResponse](t, rec), 3)
			},
		},
		{
			Name:           "malformed item filter",
			Path:           "/api/v1/units?item_id=abc",
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeInvalidID,
		},
		{
			Name:           "unknown unit",
			Path:           "/api/v1/units/" + uuid.New().String(),
			ExpectedStatus: http.StatusNotFound,
		},
	})
}

func TestStockHandler(t *testing.T) {
	srv := newTestServer(t)
	itemID, _ := srv.seedItem(t, "TENT", 2)
	location := testutil.TestLocationID().String()

	testutil.RunHTTPTestCases(t, srv.engine, []testutil.HTTPTestCase{
		{
			Name:           "level at a location",
			Path:           "/api/v1/stock?item_id=" + itemID.String() + "&location_id=" + location,
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				levels := testutil.JSONData[[]inventoryapp.StockLevelResponse](t, rec)
				require.Len(t, levels, 1)
				assert.Equal(t, int64(2), levels[0].QuantityOnHand)
				assert.Equal(t, int64(2), levels[0].QuantityAvailable)
			},
		},
		{
			Name:           "levels across locations",
			Path:           "/api/v1/stock?item_id=" + itemID.String(),
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Len(t, testutil.JSONData[[]inventoryapp.StockLevelResponse](t, rec), 1)
			},
		},
		{
			Name:           "item is required",
			Path:           "/api/v1/stock",
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeValidation,
		},
		{
			Name:   "adjust up",
			Method: http.MethodPost,
			Path:   "/api/v1/stock/adjust",
			Body: map[string]any{
				"item_id":     itemID,
				"location_id": testutil.TestLocationID(),
				"quantity":    3,
				"reason":      "count",
			},
			Headers:        map[string]string{"Idempotency-Key": "adjust-1"},
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, int64(5), testutil.JSONData[inventoryapp.StockLevelResponse](t, rec).QuantityOnHand)
			},
		},
		{
			Name:   "zero adjustment is a no-op",
			Method: http.MethodPost,
			Path:   "/api/v1/stock/adjust",
			Body: map[string]any{
				"item_id":     itemID,
				"location_id": testutil.TestLocationID(),
				"quantity":    0,
			},
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, int64(5), testutil.JSONData[inventoryapp.StockLevelResponse](t, rec).QuantityOnHand)
			},
		},
		{
			Name:   "zero reservation is rejected",
			Method: http.MethodPost,
			Path:   "/api/v1/stock/reserve",
			Body: map[string]any{
				"item_id":     itemID,
				"location_id": testutil.TestLocationID(),
				"quantity":    0,
			},
			ExpectedStatus: http.StatusUnprocessableEntity,
			ExpectedCode:   "INVALID_QUANTITY",
		},
	})
}
