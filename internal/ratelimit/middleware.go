package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quipuerp/quipu/pkg/sessionctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Module = fx.Module("ratelimit",
	fx.Provide(NewTokenBucket),
)

// PerUser gates an endpoint by session user. Requests without a session
// share the anonymous bucket.
func PerUser(bucket *TokenBucket, log *zap.Logger, name string, rate float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + name + ":anonymous"
		if userID, ok := sessionctx.UserIDFromContext(c.Request.Context()); ok {
			key = "ratelimit:" + name + ":" + userID.String()
		}

		result, err := bucket.Allow(c.Request.Context(), key, rate, burst)
		if err != nil && log.Core().Enabled(zapcore.WarnLevel) {
			log.Warn("rate limiter degraded to allow", zap.String("endpoint", name), zap.Error(err))
		}
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"type":    "rate_limited",
					"message": "too many requests",
				},
			})
			return
		}
		c.Next()
	}
}
