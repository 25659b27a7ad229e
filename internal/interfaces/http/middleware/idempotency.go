package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/infrastructure/logger"
	"github.com/ferreteria/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader names the header clients retry commands with
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Store shared.IdempotencyStore
	TTL   time.Duration
	// Required rejects requests without the header
	Required bool
}

// Idempotency guards a command route with the Idempotency-Key header.
// The first request with a key runs; repeats inside the TTL get 409 DUPLICATE_REQUEST.
// Keys of requests that failed are released so the client can retry them.
// Store outages let the request through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyConfig().TTL
	}
	return func(c *gin.Context) {
		if cfg.Store == nil {
			c.Next()
			return
		}
		requestID := c.GetString(RequestIDKey)
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			if cfg.Required {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeBadRequest, IdempotencyKeyHeader+" header is required", requestID))
				return
			}
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, IdempotencyKeyHeader+" is too long", requestID))
			return
		}

		ctx := c.Request.Context()
		log := logger.L(ctx)
		scoped := idempotencyScope(c, key)

		fresh, err := cfg.Store.MarkProcessed(ctx, scoped, cfg.TTL)
		if err != nil {
			log.Warn("idempotency store unavailable, request not deduplicated", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			log.Info("duplicate request rejected", zap.String("idempotency_key", key))
			c.Set(ErrorCodeKey, dto.ErrCodeDuplicateRequest)
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest, "A request with this Idempotency-Key was already processed", requestID))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			// The request context may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := cfg.Store.Release(releaseCtx, scoped); err != nil {
				log.Warn("failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

// idempotencyScope keeps keys of different branches, users and routes apart
func idempotencyScope(c *gin.Context, key string) string {
	return strings.Join([]string{
		GetJWTBranchID(c),
		GetJWTUserID(c),
		c.Request.Method,
		c.Request.URL.Path,
		key,
	}, "|")
}
