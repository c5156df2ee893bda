package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	printingapp "github.com/rentalcore/backend/internal/application/printing"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/infrastructure/printing"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
	"github.com/rentalcore/backend/internal/interfaces/http/middleware"
	"github.com/rentalcore/backend/tests/testutil"
)

func TestBaseHandler_HandleError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.NewNotFoundError("ITEM", "x"), http.StatusNotFound, "ITEM_NOT_FOUND"},
		{"validation", shared.NewValidationError("INVALID_QUANTITY", "bad"), http.StatusUnprocessableEntity, "INVALID_QUANTITY"},
		{"conflict", shared.ErrDuplicateRequest, http.StatusConflict, "DUPLICATE_REQUEST"},
		{"transition", shared.NewInvalidTransitionError("UNIT", "SOLD", "RENTED"), http.StatusUnprocessableEntity, "INVALID_UNIT_TRANSITION"},
		{"concurrency", shared.ErrConcurrencyConflict, http.StatusConflict, string(shared.KindConcurrencyConflict)},
		{"wrapped domain error", fmt.Errorf("save: %w", shared.ErrConcurrencyConflict), http.StatusConflict, string(shared.KindConcurrencyConflict)},
		{"printing disabled", printingapp.ErrPrintingDisabled, http.StatusServiceUnavailable, dto.ErrCodeUnavailable},
		{"render timeout", &printing.RenderError{Code: printing.ErrCodeRenderTimeout, Message: "took too long"}, http.StatusGatewayTimeout, dto.ErrCodeRenderTimeout},
		{"render failure", &printing.RenderError{Code: printing.ErrCodeRenderFailed, Message: "boom"}, http.StatusInternalServerError, dto.ErrCodeInternal},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var h BaseHandler
			r := gin.New()
			r.Use(middleware.RequestID())
			r.GET("/fail", func(c *gin.Context) { h.HandleError(c, tc.err) })

			testutil.RunHTTPTestCase(t, r, testutil.HTTPTestCase{
				Path:           "/fail",
				ExpectedStatus: tc.status,
				ExpectedCode:   tc.code,
			})
		})
	}
}
