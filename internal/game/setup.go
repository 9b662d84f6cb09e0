package game

import (
	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"github.com/SlpAus/sistatistics-backend/internal/packagestats"
	"github.com/SlpAus/sistatistics-backend/internal/platform/config"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/internal/source"
	"gorm.io/gorm"
)

// Metrics 是游戏模块和累计统计合并共同需要的计数器
type Metrics interface {
	Recorder
	packagestats.ConflictRecorder
}

// Module 汇总游戏模块对外提供的服务和处理器
type Module struct {
	Service *Service
	Handler *Handler
}

// NewModule 组装游戏模块
func NewModule(db *gorm.DB, resolver *identity.Resolver, questions QuestionReporter, metrics Metrics, settings config.StatisticsConfig, log *logger.Logger) *Module {
	stats := packagestats.NewRepository(db, settings.MergeMaxAttempts, metrics)
	service := NewService(db, resolver, source.NewRegistry(db), stats, questions, metrics, settings, log)
	return &Module{Service: service, Handler: NewHandler(service)}
}
