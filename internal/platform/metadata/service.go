package metadata

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSchemaTooNew 表示数据库由更新版本的服务迁移过
var ErrSchemaTooNew = errors.New("metadata: database schema is newer than this binary")

// GetValue 读取一个键，不存在时返回空字符串
func GetValue(ctx context.Context, db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.WithContext(ctx).Where("key = ?", key).Take(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return meta.Value, nil
}

// SetValue 写入或覆盖一个键
func SetValue(ctx context.Context, db *gorm.DB, key, value string) error {
	meta := Metadata{Key: key, Value: value}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// EnsureSchemaVersion 检查并记录数据库结构版本。
// 库中的版本比 current 新时拒绝启动，避免旧版本服务写坏新结构。
func EnsureSchemaVersion(ctx context.Context, db *gorm.DB, current int) (previous int, err error) {
	stored, err := GetValue(ctx, db, SchemaVersionKey)
	if err != nil {
		return 0, err
	}
	if stored != "" {
		previous, err = strconv.Atoi(stored)
		if err != nil {
			return 0, fmt.Errorf("无法解析元数据 '%s' 的值: %w", SchemaVersionKey, err)
		}
		if previous > current {
			return previous, fmt.Errorf("%w: %d > %d", ErrSchemaTooNew, previous, current)
		}
	}
	if err := SetValue(ctx, db, SchemaVersionKey, strconv.Itoa(current)); err != nil {
		return previous, err
	}
	return previous, nil
}
