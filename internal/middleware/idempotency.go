package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/neuron_ledger/internal/platform/idempotency"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader is the request header naming a command's idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

// Idempotency rejects a POST whose Idempotency-Key was already used by the same user on
// the same path within ttl. Requests without the header pass through. A key whose first
// use ended in a server error is released so the command can be retried.
func Idempotency(store idempotency.Store, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = idempotency.DefaultTTL
	}
	return func(c *gin.Context) {
		headerKey := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if c.Request.Method != http.MethodPost || headerKey == "" {
			c.Next()
			return
		}

		logger := GetLoggerFromCtx(c.Request.Context())
		userID, _ := GetUserIDFromContext(c)
		key := userID + "|" + c.Request.URL.Path + "|" + headerKey

		isNew, err := store.MarkProcessed(c.Request.Context(), key, ttl)
		if err != nil {
			logger.Error("Failed to check idempotency key", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Idempotency check unavailable", "code": "IDEMPOTENCY_UNAVAILABLE"})
			return
		}
		if !isNew {
			logger.Warn("Replayed idempotency key", slog.String("idempotency_key", headerKey))
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Request with this Idempotency-Key was already processed", "code": "IDEMPOTENCY_REPLAY"})
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			if err := store.Release(c.Request.Context(), key); err != nil {
				logger.Error("Failed to release idempotency key", slog.String("error", err.Error()))
			}
		}
	}
}
