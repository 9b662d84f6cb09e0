package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/SlpAus/sistatistics-backend/api"
	"github.com/SlpAus/sistatistics-backend/internal/game"
	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"github.com/SlpAus/sistatistics-backend/internal/platform/config"
	"github.com/SlpAus/sistatistics-backend/internal/platform/database"
	"github.com/SlpAus/sistatistics-backend/internal/platform/health"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/internal/platform/metrics"
	"github.com/SlpAus/sistatistics-backend/internal/platform/observability"
	"github.com/SlpAus/sistatistics-backend/internal/platform/shutdown"
	"github.com/SlpAus/sistatistics-backend/internal/platform/startup"
	"github.com/SlpAus/sistatistics-backend/internal/question"
	"github.com/SlpAus/sistatistics-backend/internal/ratelimit"
	"github.com/SlpAus/sistatistics-backend/pkg/lifecycle"
	"github.com/SlpAus/sistatistics-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Server.Mode == gin.ReleaseMode || cfg.Server.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	if err := database.InitDB(cfg.Database, cfg.Server.Mode); err != nil {
		log.Fatal("database init failed", "driver", cfg.Database.Driver, "error", err)
	}
	redisConfigured, err := database.InitRedis(ctx, cfg.Database.Redis)
	if err != nil {
		log.Fatal("redis init failed", "address", cfg.Database.Redis.Address, "error", err)
	}

	if err := startup.InitializeApplication(ctx, database.DB, log); err != nil {
		log.Fatal("application init failed", "error", err)
	}

	providers, err := observability.Setup(ctx, cfg.Observability, api.ServiceName, log)
	if err != nil {
		log.Fatal("observability init failed", "error", err)
	}

	m, err := metrics.NewGlobal()
	if err != nil {
		log.Fatal("metrics init failed", "error", err)
	}

	settings := cfg.Statistics
	resolver := identity.NewResolver(database.DB, settings.MaxIndexedTextBytes)
	questions := question.NewModule(database.DB, resolver, m, settings.CollectedAnswersThreshold, log)
	games := game.NewModule(database.DB, resolver, questions.Service, m, settings, log)

	var limiter *ratelimit.Limiter
	if redisConfigured && cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(database.RDB, cfg.RateLimit.Window, cfg.RateLimit.Limit)
	}

	var admin *token.Verifier
	if cfg.Server.AdminSecret != "" {
		if admin, err = token.NewVerifier(cfg.Server.AdminSecret); err != nil {
			log.Fatal("admin secret init failed", "error", err)
		}
	} else {
		log.Warn("server.adminSecret is empty, admin routes are disabled")
	}

	services := lifecycle.NewManager()

	checker := health.NewChecker(database.DB, database.RDB, log)
	checker.PerformCheck(ctx)
	if err := services.Go("health", checker.Run); err != nil {
		log.Fatal("health checker start failed", "error", err)
	}

	router := api.NewRouter(cfg.Server, log)
	api.SetupRoutes(router, api.Dependencies{
		Game:            games,
		Question:        questions,
		Limiter:         limiter,
		LimitRecorder:   m,
		Admin:           admin,
		RedisConfigured: redisConfigured,
		Log:             log,
	})

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}
	go func() {
		log.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	coordinator := shutdown.NewCoordinator(services, log)
	coordinator.Closers = append(coordinator.Closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return providers.Shutdown(ctx)
	})
	coordinator.Closers = append(coordinator.Closers, func() error {
		sqlDB, err := database.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	if database.RDB != nil {
		coordinator.Closers = append(coordinator.Closers, database.RDB.Close)
	}
	coordinator.ListenForSignalsAndShutdown(server)
}
