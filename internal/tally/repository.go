package tally

import (
	"context"

	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultCollectThreshold 是答案被收集所需的默认最少次数
const DefaultCollectThreshold = 8

// collectedTypes 是导入题包后需要返回给调用方的关系类型
var collectedTypes = []RelationType{Apellated, Rejected}

// Repository 负责答案计数的原子递增与查询
type Repository struct {
	db       *gorm.DB
	resolver *identity.Resolver
}

func NewRepository(db *gorm.DB, resolver *identity.Resolver) *Repository {
	return &Repository{db: db, resolver: resolver}
}

func (r *Repository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// Increment 为答案文本在给定问题下的关系类型计数加一，首次出现时创建计数行。
// 答案文本超长时返回 identity.ErrLimitExceeded，计数不变。
func (r *Repository) Increment(ctx context.Context, tx *gorm.DB, themeID, questionID uint, entityText string, relation RelationType) error {
	code, err := toStorage(relation)
	if err != nil {
		return err
	}
	entityID, err := r.resolver.Entity(ctx, tx, entityText)
	if err != nil {
		return err
	}
	row := AnswerTally{
		ThemeID:      themeID,
		QuestionID:   questionID,
		EntityID:     entityID,
		RelationType: code,
		Count:        1,
	}
	return r.conn(ctx, tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "theme_id"}, {Name: "question_id"}, {Name: "entity_id"}, {Name: "relation_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count": gorm.Expr("answer_tallies.count + 1"),
		}),
	}).Create(&row).Error
}

type entityRow struct {
	Name         string
	RelationType int16
	Count        int
}

func (r *Repository) entities(ctx context.Context, tx *gorm.DB, themeID, questionID uint, types []RelationType, minCount int) ([]entityRow, error) {
	query := r.conn(ctx, tx).
		Table("answer_tallies AS t").
		Select("e.name AS name, t.relation_type AS relation_type, t.count AS count").
		Joins("JOIN entities e ON e.id = t.entity_id").
		Where("t.theme_id = ? AND t.question_id = ?", themeID, questionID)
	if len(types) > 0 {
		codes := make([]int16, 0, len(types))
		for _, t := range types {
			code, err := toStorage(t)
			if err != nil {
				return nil, err
			}
			codes = append(codes, code)
		}
		query = query.Where("t.relation_type IN ?", codes)
	}
	if minCount > 0 {
		query = query.Where("t.count >= ?", minCount)
	}
	var rows []entityRow
	err := query.Order("t.count DESC").Order("e.name").Scan(&rows).Error
	return rows, err
}

// Collected 返回计数达到阈值的申诉和驳回答案
func (r *Repository) Collected(ctx context.Context, tx *gorm.DB, themeID, questionID uint, threshold int) ([]CollectedAnswer, error) {
	if threshold <= 0 {
		threshold = DefaultCollectThreshold
	}
	rows, err := r.entities(ctx, tx, themeID, questionID, collectedTypes, threshold)
	if err != nil {
		return nil, err
	}
	answers := make([]CollectedAnswer, 0, len(rows))
	for _, row := range rows {
		t, err := fromStorage(row.RelationType)
		if err != nil {
			return nil, err
		}
		answers = append(answers, CollectedAnswer{AnswerText: row.Name, RelationType: t, Count: row.Count})
	}
	return answers, nil
}

// Entities 返回问题下记录的全部答案
func (r *Repository) Entities(ctx context.Context, tx *gorm.DB, themeID, questionID uint) ([]EntityInfo, error) {
	rows, err := r.entities(ctx, tx, themeID, questionID, nil, 0)
	if err != nil {
		return nil, err
	}
	infos := make([]EntityInfo, 0, len(rows))
	for _, row := range rows {
		t, err := fromStorage(row.RelationType)
		if err != nil {
			return nil, err
		}
		infos = append(infos, EntityInfo{EntityName: row.Name, RelationType: t, Count: row.Count})
	}
	return infos, nil
}
