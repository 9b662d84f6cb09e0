package packagestats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMergeConflict 表示在允许的尝试次数内始终输给了并发写者
var ErrMergeConflict = errors.New("packagestats: concurrent merge conflict")

// DefaultMaxAttempts 是乐观合并的默认最大尝试次数
const DefaultMaxAttempts = 5

// ConflictRecorder 记录一次乐观合并冲突
type ConflictRecorder interface {
	AddMergeConflict(ctx context.Context)
}

// Repository 把单局统计合并进题包的累计统计
type Repository struct {
	db          *gorm.DB
	maxAttempts int
	recorder    ConflictRecorder
}

// NewRepository 创建仓库，recorder 可以为 nil
func NewRepository(db *gorm.DB, maxAttempts int, recorder ConflictRecorder) *Repository {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Repository{db: db, maxAttempts: maxAttempts, recorder: recorder}
}

func (r *Repository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// Load 读取题包的累计统计，不存在时返回 (nil, nil)
func (r *Repository) Load(ctx context.Context, tx *gorm.DB, packageID uint) (*Stats, error) {
	var rec Record
	err := r.conn(ctx, tx).Where("package_id = ?", packageID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	stats := rec.Stats.Data()
	if stats.QuestionStats == nil {
		stats.QuestionStats = map[string]QuestionStats{}
	}
	return &stats, nil
}

// Merge 以“读取-合并-条件写回”的方式累加统计。
// 写回以版本号为条件，被并发写者抢先时重新读取并重试，超过次数返回 ErrMergeConflict。
// 每次写入前检查ctx，取消只会发生在写入之前。
func (r *Repository) Merge(ctx context.Context, tx *gorm.DB, packageID uint, incoming Stats) error {
	db := r.conn(ctx, tx)

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		var rec Record
		err := db.Where("package_id = ?", packageID).Take(&rec).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := ctx.Err(); err != nil {
				return err
			}
			created := Record{
				PackageID: packageID,
				Stats:     datatypes.NewJSONType(Merge(Stats{}, incoming)),
				Version:   1,
			}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&created)
			if res.Error != nil {
				return fmt.Errorf("创建累计统计失败: %w", res.Error)
			}
			if res.RowsAffected == 1 {
				return nil
			}
		case err != nil:
			return fmt.Errorf("读取累计统计失败: %w", err)
		default:
			merged := Merge(rec.Stats.Data(), incoming)
			if err := ctx.Err(); err != nil {
				return err
			}
			res := db.Model(&Record{}).
				Where("package_id = ? AND version = ?", packageID, rec.Version).
				Updates(map[string]interface{}{
					"stats":      datatypes.NewJSONType(merged),
					"version":    rec.Version + 1,
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return fmt.Errorf("写回累计统计失败: %w", res.Error)
			}
			if res.RowsAffected == 1 {
				return nil
			}
		}

		if r.recorder != nil {
			r.recorder.AddMergeConflict(ctx)
		}
	}
	return fmt.Errorf("%w: package %d after %d attempts", ErrMergeConflict, packageID, r.maxAttempts)
}
