package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	newRouter := func(limit int64) *gin.Engine {
		router := gin.New()
		router.Use(BodyLimit(limit))
		router.POST("/upload", func(c *gin.Context) {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.Status(http.StatusRequestEntityTooLarge)
				return
			}
			c.String(http.StatusOK, "%d", len(body))
		})
		return router
	}

	t.Run("body within limit", func(t *testing.T) {
		w := serve(newRouter(16), httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("small")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Body.String())
	})

	t.Run("declared length over limit", func(t *testing.T) {
		w := serve(newRouter(4), httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("too large")))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, dto.ErrCodeTooLarge, decodeError(t, w).Code)
	})

	t.Run("streamed body over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", io.NopCloser(strings.NewReader("streamed body")))
		req.ContentLength = -1
		w := serve(newRouter(4), req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("zero disables the limit", func(t *testing.T) {
		w := serve(newRouter(0), httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("anything goes")))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
