package question

import (
	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/internal/tally"
	"gorm.io/gorm"
)

// Module 汇总问题模块对外提供的服务和处理器
type Module struct {
	Service *Service
	Handler *Handler
}

// NewModule 组装问题模块
func NewModule(db *gorm.DB, resolver *identity.Resolver, metrics Recorder, threshold int, log *logger.Logger) *Module {
	service := NewService(resolver, tally.NewRepository(db, resolver), metrics, threshold, log)
	return &Module{Service: service, Handler: NewHandler(service)}
}
