package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	inventoryapp "github.com/rentalcore/backend/internal/application/inventory"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
	"github.com/rentalcore/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemHandler_Create(t *testing.T) {
	srv := newTestServer(t)
	itemID, _ := srv.seedItem(t, "TENT-4P", 0)

	testutil.RunHTTPTestCases(t, srv.engine, []testutil.HTTPTestCase{
		{
			Name:   "duplicate code conflicts",
			Method: http.MethodPost,
			Path:   "/api/v1/items",
			Body: map[string]any{
				"code":           "TENT-4P",
				"name":           "Another tent",
				"item_type":      "SALE",
				"purchase_price": "10.00",
				"sale_price":     "15.00",
			},
			ExpectedStatus: http.StatusConflict,
			ExpectedCode:   "DUPLICATE_ITEM_CODE",
		},
		{
			Name:   "invalid code is rejected before the service",
			Method: http.MethodPost,
			Path:   "/api/v1/items",
			Body: map[string]any{
				"code":      "-bad code",
				"name":      "Tent",
				"item_type": "RENTAL",
			},
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeValidation,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				resp := testutil.JSONResponse(t, rec)
				details := resp["error"].(map[string]any)["details"].([]any)
				require.NotEmpty(t, details)
				assert.Equal(t, "code", details[0].(map[string]any)["field"])
			},
		},
		{
			Name:   "negative price is rejected",
			Method: http.MethodPost,
			Path:   "/api/v1/items",
			Body: map[string]any{
				"code":           "CHAIR",
				"name":           "Chair",
				"item_type":      "SALE",
				"purchase_price": "-1.00",
			},
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeValidation,
		},
		{
			Name:           "malformed JSON",
			Method:         http.MethodPost,
			Path:           "/api/v1/items",
			Body:           "not an object",
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeInvalidJSON,
		},
		{
			Name:           "get by id",
			Path:           "/api/v1/items/" + itemID.String(),
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				item := testutil.JSONData[inventoryapp.ItemResponse](t, rec)
				assert.Equal(t, "TENT-4P", item.Code)
				assert.Equal(t, "20.00", item.RentalRatePerDay.String())
				assert.True(t, item.IsRentable)
			},
		},
		{
			Name:           "get by code",
			Path:           "/api/v1/items/code/TENT-4P",
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:           "malformed id",
			Path:           "/api/v1/items/not-a-uuid",
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeInvalidID,
		},
		{
			Name:           "unknown id",
			Path:           "/api/v1/items/" + uuid.New().String(),
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   "ITEM_NOT_FOUND",
		},
	})
}

func TestItemHandler_List(t *testing.T) {
	srv := newTestServer(t)
	srv.seedItem(t, "TENT", 0)
	srv.seedItem(t, "STOVE", 0)

	rec := srv.do(t, testutil.HTTPTestCase{
		Path:           "/api/v1/items?page=1&page_size=1",
		ExpectedStatus: http.StatusOK,
	})
	resp := testutil.JSONResponse(t, rec)
	meta := resp["meta"].(map[string]any)
	assert.EqualValues(t, 2, meta["total"])
	assert.EqualValues(t, 2, meta["total_pages"])
	assert.Len(t, resp["data"].([]any), 1)

	srv.do(t, testutil.HTTPTestCase{
		Path:           "/api/v1/items?page_size=500",
		ExpectedStatus: http.StatusBadRequest,
		ExpectedCode:   dto.ErrCodeValidation,
	})
}

func TestItemHandler_PricingAndStatus(t *testing.T) {
	srv := newTestServer(t)
	itemID, _ := srv.seedItem(t, "TENT", 0)
	base := "/api/v1/items/" + itemID.String()

	rec := srv.do(t, testutil.HTTPTestCase{
		Method: http.MethodPut,
		Path:   base + "/pricing",
		Body: map[string]any{
			"purchase_price":      "300.00",
			"rental_rate_per_day": "25.00",
			"security_deposit":    "150.00",
		},
		ExpectedStatus: http.StatusOK,
	})
	item := testutil.JSONData[inventoryapp.ItemResponse](t, rec)
	assert.Equal(t, "25.00", item.RentalRatePerDay.String())
	assert.Equal(t, "150.00", item.SecurityDeposit.String())

	rec = srv.do(t, testutil.HTTPTestCase{
		Method:         http.MethodPut,
		Path:           base + "/status",
		Body:           map[string]any{"status": "INACTIVE"},
		ExpectedStatus: http.StatusOK,
	})
	assert.Equal(t, "INACTIVE", testutil.JSONData[inventoryapp.ItemResponse](t, rec).Status)

	srv.do(t, testutil.HTTPTestCase{
		Method:         http.MethodPut,
		Path:           base + "/status",
		Body:           map[string]any{"status": "GONE"},
		ExpectedStatus: http.StatusBadRequest,
		ExpectedCode:   dto.ErrCodeValidation,
	})
}

func TestItemHandler_Delete(t *testing.T) {
	srv := newTestServer(t)
	itemID, _ := srv.seedItem(t, "TENT", 0)

	srv.do(t, testutil.HTTPTestCase{
		Method:         http.MethodDelete,
		Path:           "/api/v1/items/" + itemID.String(),
		ExpectedStatus: http.StatusNoContent,
	})

	rec := srv.do(t, testutil.HTTPTestCase{
		Path:           "/api/v1/items/" + itemID.String(),
		ExpectedStatus: http.StatusOK,
	})
	assert.False(t, testutil.JSONData[inventoryapp.ItemResponse](t, rec).IsActive)
}

func TestAuditHandler_ListForEntity(t *testing.T) {
	srv := newTestServer(t)
	itemID, _ := srv.seedItem(t, "TENT", 0)

	rec := srv.do(t, testutil.HTTPTestCase{
		Path:           "/api/v1/audit/item/" + itemID.String(),
		ExpectedStatus: http.StatusOK,
	})
	entries := testutil.JSONData[[]appshared.AuditEntryResponse](t, rec)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, "ITEM", e.EntityType)
		assert.Equal(t, itemID, e.EntityID)
		assert.Equal(t, "system", e.Actor)
	}

	srv.do(t, testutil.HTTPTestCase{
		Path:           "/api/v1/audit/item/nope",
		ExpectedStatus: http.StatusBadRequest,
		ExpectedCode:   dto.ErrCodeInvalidID,
	})
}
