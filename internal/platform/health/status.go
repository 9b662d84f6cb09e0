package health

import (
	"net/http"

	"github.com/SlpAus/sistatistics-backend/internal/platform/database"
	"github.com/gin-gonic/gin"
)

// Status 是 /healthz 的响应
type Status struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func state(healthy bool) string {
	if healthy {
		return "up"
	}
	return "down"
}

// Handler 返回最近一次检查的结果。数据库不可用时返回503；
// Redis只用于限流，不影响状态码。
func Handler(redisConfigured bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := Status{Database: state(database.IsDatabaseHealthy()), Redis: "disabled"}
		if redisConfigured {
			status.Redis = state(database.IsRedisHealthy())
		}
		code := http.StatusOK
		if !database.IsDatabaseHealthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
