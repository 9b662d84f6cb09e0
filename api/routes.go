package api

import (
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/game"
	"github.com/SlpAus/sistatistics-backend/internal/platform/apierr"
	"github.com/SlpAus/sistatistics-backend/internal/platform/config"
	"github.com/SlpAus/sistatistics-backend/internal/platform/health"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/internal/question"
	"github.com/SlpAus/sistatistics-backend/internal/ratelimit"
	"github.com/SlpAus/sistatistics-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// ServiceName 是请求追踪中使用的服务名
const ServiceName = "sistatistics"

// Dependencies 是注册路由所需的全部模块
type Dependencies struct {
	Game            *game.Module
	Question        *question.Module
	Limiter         *ratelimit.Limiter
	LimitRecorder   ratelimit.Recorder
	Admin           *token.Verifier
	RedisConfigured bool
	Log             *logger.Logger
}

// NewRouter 创建带有通用中间件的 gin 引擎
func NewRouter(cfg config.ServerConfig, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(ServiceName))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", AdminSecretHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Cors.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Cors.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))
	router.Use(apierr.Middleware(log))
	return router
}

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/healthz", health.Handler(deps.RedisConfigured))

	limit := ratelimit.Middleware(deps.Limiter, deps.LimitRecorder, deps.Log)

	v1 := router.Group("/api/v1")
	{
		games := v1.Group("/games")
		{
			h := deps.Game.Handler
			games.GET("/results", h.GetResults)
			games.GET("/stats", h.GetStatistic)
			games.GET("/packages", h.GetPackages)
			games.POST("/packages/stats", h.PostPackageStats)
			games.GET("/packages/info", h.GetPackageInfo)
			games.POST("/reports", limit, h.PostReport)
		}

		admin := v1.Group("/admin", RequireAdmin(deps.Admin))
		{
			admin.GET("/questions", deps.Question.Handler.GetQuestionInfo)
			admin.POST("/packages", deps.Question.Handler.ImportPackage)
			admin.POST("/reports", deps.Game.Handler.PostAdminReport)
		}
	}
}
