package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/internal/infrastructure/logger"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyGinKey holds the validated Idempotency-Key header
const IdempotencyKeyGinKey = "idempotency_key"

// MaxIdempotencyKeyLength bounds the Idempotency-Key header
const MaxIdempotencyKeyLength = 255

// IdempotencyKey validates the Idempotency-Key header and exposes it to
// handlers and request logs. Requests without the header pass through;
// services decide whether a key is needed.
func IdempotencyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength || strings.ContainsFunc(key, isControl) {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeIdempotencyKey,
				"Idempotency-Key must be printable and at most 255 characters")
			return
		}
		c.Set(IdempotencyKeyGinKey, key)
		c.Request = c.Request.WithContext(logger.WithIdempotencyKey(c.Request.Context(), key))
		c.Next()
	}
}

// GetIdempotencyKey returns the validated key, or "" when none was sent
func GetIdempotencyKey(c *gin.Context) string {
	return c.GetString(IdempotencyKeyGinKey)
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
