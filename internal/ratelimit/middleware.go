package ratelimit

import (
	"context"
	"net/http"

	"github.com/SlpAus/sistatistics-backend/internal/platform/apierr"
	"github.com/SlpAus/sistatistics-backend/internal/platform/database"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/gin-gonic/gin"
)

// Recorder 记录被拒绝的请求
type Recorder interface {
	AddRateLimited(ctx context.Context)
}

// Middleware 对写接口限流。limiter 为 nil 或 Redis 不可用时直接放行。
func Middleware(limiter *Limiter, recorder Recorder, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !database.IsRedisHealthy() {
			c.Next()
			return
		}

		ip := c.ClientIP()
		count, ok, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Warn("rate limiter unavailable, request allowed", "ip", ip, "error", err)
			c.Next()
			return
		}
		if !ok {
			recorder.AddRateLimited(c.Request.Context())
			log.Info("request rate limited", "ip", ip, "count", count)
			_ = c.Error(apierr.New(http.StatusTooManyRequests, apierr.CodeTooManyRequests, nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
