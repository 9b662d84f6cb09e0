package startup

import (
	"context"
	"fmt"

	"github.com/SlpAus/sistatistics-backend/internal/game"
	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"github.com/SlpAus/sistatistics-backend/internal/packagestats"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/internal/platform/metadata"
	"github.com/SlpAus/sistatistics-backend/internal/source"
	"github.com/SlpAus/sistatistics-backend/internal/tally"
	"gorm.io/gorm"
)

// SchemaVersion 在表结构发生不兼容变化时递增
const SchemaVersion = 1

// Models 返回全部需要迁移的模型
func Models() []interface{} {
	var models []interface{}
	models = append(models, metadata.Models()...)
	models = append(models, identity.Models()...)
	models = append(models, source.Models()...)
	models = append(models, tally.Models()...)
	models = append(models, packagestats.Models()...)
	models = append(models, game.Models()...)
	return models
}

// InitializeApplication 迁移数据库并记录结构版本，是服务启动时的总入口
func InitializeApplication(ctx context.Context, db *gorm.DB, log *logger.Logger) error {
	log.Info("migrating database")
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	previous, err := metadata.EnsureSchemaVersion(ctx, db, SchemaVersion)
	if err != nil {
		return err
	}
	if previous != SchemaVersion {
		log.Info("schema version updated", "from", previous, "to", SchemaVersion)
	}
	log.Info("application initialized")
	return nil
}
