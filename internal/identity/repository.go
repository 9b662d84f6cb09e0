package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SlpAus/sistatistics-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrLimitExceeded 表示文本超过了存储引擎可索引的长度。
// 调用方应跳过当前条目并继续处理批次中的其余条目。
var ErrLimitExceeded = errors.New("identity: value exceeds indexable length")

// DefaultMaxIndexedTextBytes 接近PostgreSQL B-tree索引单行上限
const DefaultMaxIndexedTextBytes = 2700

// Resolver 把自然键映射为稳定的整数ID，首次出现时创建。
// 不在进程内缓存任何结果，每次解析都访问数据库。
type Resolver struct {
	db           *gorm.DB
	maxTextBytes int
}

// NewResolver 创建解析器，maxTextBytes<=0 时使用默认值
func NewResolver(db *gorm.DB, maxTextBytes int) *Resolver {
	if maxTextBytes <= 0 {
		maxTextBytes = DefaultMaxIndexedTextBytes
	}
	return &Resolver{db: db, maxTextBytes: maxTextBytes}
}

func (r *Resolver) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *Resolver) checkLength(values ...string) error {
	for _, v := range values {
		if len(v) > r.maxTextBytes {
			return fmt.Errorf("%w: %d bytes", ErrLimitExceeded, len(v))
		}
	}
	return nil
}

// upsertThenFetch 先插入（冲突时忽略），再按唯一列读取ID。
// 两个并发写者同时插入同一个新值时，只有一个插入生效，二者读到相同的ID。
func upsertThenFetch[T any](db *gorm.DB, row *T, column, value string) (uint, error) {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: column}},
		DoNothing: true,
	}).Create(row).Error
	if err != nil {
		if database.IsLimitExceededError(err) {
			return 0, fmt.Errorf("%w: %v", ErrLimitExceeded, err)
		}
		return 0, err
	}
	return fetchID[T](db, column, value)
}

func fetchID[T any](db *gorm.DB, column, value string) (uint, error) {
	var ids []uint
	if err := db.Model(new(T)).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return ids[0], nil
}

// Theme 解析归一化后的主题名称
func (r *Resolver) Theme(ctx context.Context, tx *gorm.DB, name string) (uint, error) {
	name = Normalize(name)
	if err := r.checkLength(name); err != nil {
		return 0, err
	}
	return upsertThenFetch(r.conn(ctx, tx), &Theme{Name: name}, "name", name)
}

// Question 解析归一化后的问题文本
func (r *Resolver) Question(ctx context.Context, tx *gorm.DB, text string) (uint, error) {
	text = Normalize(text)
	if err := r.checkLength(text); err != nil {
		return 0, err
	}
	return upsertThenFetch(r.conn(ctx, tx), &Question{Text: text}, "text", text)
}

// Entity 解析归一化后的答案文本
func (r *Resolver) Entity(ctx context.Context, tx *gorm.DB, name string) (uint, error) {
	name = Normalize(name)
	if err := r.checkLength(name); err != nil {
		return 0, err
	}
	return upsertThenFetch(r.conn(ctx, tx), &Entity{Name: name}, "name", name)
}

// Language 解析语言代码
func (r *Resolver) Language(ctx context.Context, tx *gorm.DB, code string) (uint, error) {
	if err := r.checkLength(code); err != nil {
		return 0, err
	}
	return upsertThenFetch(r.conn(ctx, tx), &Language{Code: code}, "code", code)
}

// FindTheme 只查询不创建，不存在时返回 gorm.ErrRecordNotFound
func (r *Resolver) FindTheme(ctx context.Context, tx *gorm.DB, name string) (uint, error) {
	return fetchID[Theme](r.conn(ctx, tx), "name", Normalize(name))
}

// FindQuestion 只查询不创建，不存在时返回 gorm.ErrRecordNotFound
func (r *Resolver) FindQuestion(ctx context.Context, tx *gorm.DB, text string) (uint, error) {
	return fetchID[Question](r.conn(ctx, tx), "text", Normalize(text))
}

// FindLanguage 只查询不创建，不存在时返回 gorm.ErrRecordNotFound
func (r *Resolver) FindLanguage(ctx context.Context, tx *gorm.DB, code string) (uint, error) {
	return fetchID[Language](r.conn(ctx, tx), "code", code)
}

// Package 解析题包身份。
// 作者联系方式只在本次提交非空时写入，已有的联系方式不会被空值覆盖。
func (r *Resolver) Package(ctx context.Context, tx *gorm.DB, key PackageKey, contacts *string) (uint, error) {
	// 唯一索引覆盖三列，按三者之和检查
	authors, err := json.Marshal(key.authors())
	if err != nil {
		return 0, err
	}
	if err := r.checkLength(key.Name + key.Hash + string(authors)); err != nil {
		return 0, err
	}
	db := r.conn(ctx, tx)
	row := Package{
		Name:            key.Name,
		Hash:            key.Hash,
		Authors:         key.authors(),
		AuthorsContacts: contacts,
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}, {Name: "hash"}, {Name: "authors"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"authors_contacts": gorm.Expr("COALESCE(excluded.authors_contacts, packages.authors_contacts)"),
		}),
	}).Create(&row).Error
	if err != nil {
		if database.IsLimitExceededError(err) {
			return 0, fmt.Errorf("%w: %v", ErrLimitExceeded, err)
		}
		return 0, err
	}

	pkg, err := r.FindPackage(ctx, tx, key)
	if err != nil {
		return 0, err
	}
	if pkg == nil {
		return 0, gorm.ErrRecordNotFound
	}
	return pkg.ID, nil
}

// FindPackage 按自然键查询题包，不存在时返回 (nil, nil)
func (r *Resolver) FindPackage(ctx context.Context, tx *gorm.DB, key PackageKey) (*Package, error) {
	var pkg Package
	err := r.conn(ctx, tx).
		Where("name = ? AND hash = ? AND authors = ?", key.Name, key.Hash, key.authors()).
		Take(&pkg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// PackagesByID 批量读取题包
func (r *Resolver) PackagesByID(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]Package, error) {
	result := make(map[uint]Package, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []Package
	if err := r.conn(ctx, tx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		result[p.ID] = p
	}
	return result, nil
}
