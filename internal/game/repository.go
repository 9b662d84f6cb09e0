package game

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 负责游戏记录的读写
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// Create 插入一条游戏记录，不写入关联的题包
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, rec *Record) error {
	return r.conn(ctx, tx).Omit(clause.Associations).Create(rec).Error
}

// filtered 按平台、时间范围和语言过滤游戏
func (r *Repository) filtered(ctx context.Context, filter StatisticFilter) *gorm.DB {
	q := r.conn(ctx, nil).Model(&Record{}).
		Where("(games.platform & ?) > 0", int(filter.Platform)).
		Where("games.finish_time >= ? AND games.finish_time <= ?", filter.From.UTC(), filter.To.UTC())
	if filter.LanguageCode != "" {
		q = q.Joins("JOIN languages ON languages.id = games.language_id AND languages.code = ?", filter.LanguageCode)
	}
	return q
}

// Find 返回最近结束的游戏，按结束时间倒序
func (r *Repository) Find(ctx context.Context, filter StatisticFilter, limit int) ([]Record, error) {
	var rows []Record
	err := r.filtered(ctx, filter).
		Preload("Package").
		Order("games.finish_time DESC").
		Order("games.id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Durations 返回所有匹配游戏的时长
func (r *Repository) Durations(ctx context.Context, filter StatisticFilter) ([]time.Duration, error) {
	var durations []time.Duration
	err := r.filtered(ctx, filter).Pluck("games.duration", &durations).Error
	return durations, err
}

// PackageCount 是一个题包的游戏局数
type PackageCount struct {
	PackageID uint
	GameCount int
}

// TopPackages 按游戏局数倒序返回题包，局数相同时按题包ID排序
func (r *Repository) TopPackages(ctx context.Context, filter StatisticFilter, limit int) ([]PackageCount, error) {
	var rows []PackageCount
	err := r.filtered(ctx, filter).
		Select("games.package_id AS package_id, COUNT(*) AS game_count").
		Group("games.package_id").
		Order("COUNT(*) DESC").
		Order("games.package_id").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// LanguageCodes 批量读取语言代码
func (r *Repository) LanguageCodes(ctx context.Context, ids []uint) (map[uint]string, error) {
	result := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []struct {
		ID   uint
		Code string
	}
	if err := r.conn(ctx, nil).Table("languages").Select("id, code").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row.Code
	}
	return result, nil
}
