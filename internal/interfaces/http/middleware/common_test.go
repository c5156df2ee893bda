package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestCORSWithConfig(t *testing.T) {
	t.Run("default config sends no CORS headers", func(t *testing.T) {
		router := newTestRouter(CORSWithConfig(DefaultCORSConfig()))
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://elsewhere.example")

		w := serve(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin is echoed with credentials", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"http://counter.example"}
		router := newTestRouter(CORSWithConfig(cfg))
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://counter.example")

		w := serve(router, req)

		assert.Equal(t, "http://counter.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), HeaderIdempotencyKey)
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("wildcard never allows credentials", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"*"}
		router := newTestRouter(CORSWithConfig(cfg))
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://any.example")

		w := serve(router, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight ends with 204", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"http://counter.example"}
		router := newTestRouter(CORSWithConfig(cfg))
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "http://unknown.example")

		w := serve(router, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	t.Run("generates an id", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Len(t, seen, 32)
		assert.Equal(t, seen, w.Header().Get(HeaderRequestID))
	})

	t.Run("keeps a client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, "client-42")

		w := serve(router, req)

		assert.Equal(t, "client-42", seen)
		assert.Equal(t, "client-42", w.Header().Get(HeaderRequestID))
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("x", MaxRequestIDLength+1))

		serve(router, req)

		assert.Len(t, seen, 32)
	})
}

func TestGenerateRequestID(t *testing.T) {
	a, b := generateRequestID(), generateRequestID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 32)
}

func TestSecureWithConfig(t *testing.T) {
	router := gin.New()
	cfg := DefaultSecurityConfig()
	cfg.HSTSEnabled = true
	router.Use(SecureWithConfig(cfg))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/swagger/index.html", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))

	w = serve(router, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestSecureWithConfig_HSTSOffByDefault(t *testing.T) {
	router := newTestRouter(SecureWithConfig(DefaultSecurityConfig()))
	w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Empty(t, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowHeaders, HeaderRequestID)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestAbortWithError_CarriesRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		abortWithError(c, http.StatusTeapot, "TEAPOT", "short and stout")
	})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "rid-1")

	w := serve(router, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	info := decodeError(t, w)
	assert.Equal(t, "TEAPOT", info.Code)
	assert.Equal(t, "rid-1", info.RequestID)
}
