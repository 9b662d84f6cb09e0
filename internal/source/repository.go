package source

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Registry 维护题包来源记录
type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

func (r *Registry) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// Register 记录题包的来源地址。
// 同一主机的记录被无条件覆盖，新主机追加一行。
func (r *Registry) Register(ctx context.Context, tx *gorm.DB, packageID uint, uri string) error {
	tag, err := StableHostTag(uri)
	if err != nil {
		return err
	}
	row := PackageSource{PackageID: packageID, SourceTag: tag, Source: uri}
	return r.conn(ctx, tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "package_id"}, {Name: "source_tag"}},
		DoUpdates: clause.AssignmentColumns([]string{"source"}),
	}).Create(&row).Error
}

// ListByPackage 返回一个题包的全部来源记录，按写入顺序排列
func (r *Registry) ListByPackage(ctx context.Context, tx *gorm.DB, packageID uint) ([]PackageSource, error) {
	var rows []PackageSource
	err := r.conn(ctx, tx).Where("package_id = ?", packageID).Order("id").Find(&rows).Error
	return rows, err
}

// ResolveSources 为每个题包选出一个来源地址。
// primary/fallback 为空字符串表示未指定；未命中的题包不出现在结果中。
func (r *Registry) ResolveSources(ctx context.Context, tx *gorm.DB, packageIDs []uint, primary, fallback string) (map[uint]string, error) {
	primaryTag, err := optionalTag(primary)
	if err != nil {
		return nil, err
	}
	fallbackTag, err := optionalTag(fallback)
	if err != nil {
		return nil, err
	}

	result := make(map[uint]string, len(packageIDs))
	if len(packageIDs) == 0 {
		return result, nil
	}

	query := r.conn(ctx, tx).Where("package_id IN ?", packageIDs)
	// 指定了标签时只需要读取匹配的行
	if tags := nonNilTags(primaryTag, fallbackTag); len(tags) > 0 {
		query = query.Where("source_tag IN ?", tags)
	}
	var rows []PackageSource
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	byPackage := make(map[uint][]PackageSource, len(packageIDs))
	for _, row := range rows {
		byPackage[row.PackageID] = append(byPackage[row.PackageID], row)
	}
	for id, recorded := range byPackage {
		if s := Resolve(recorded, primaryTag, fallbackTag); s != nil {
			result[id] = *s
		}
	}
	return result, nil
}

func optionalTag(uri string) (*int32, error) {
	if uri == "" {
		return nil, nil
	}
	tag, err := StableHostTag(uri)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func nonNilTags(tags ...*int32) []int32 {
	out := make([]int32, 0, len(tags))
	for _, t := range tags {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out
}
