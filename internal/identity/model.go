package identity

import "gorm.io/datatypes"

// Theme 是归一化后的主题名称
type Theme struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

// Question 是归一化后的问题文本
type Question struct {
	ID   uint   `gorm:"primaryKey"`
	Text string `gorm:"uniqueIndex;not null"`
}

// Entity 是归一化后的答案文本
type Entity struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

// Language 是游戏语言代码
type Language struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"uniqueIndex;not null"`
}

// Package 是题包身份
// (Name, Hash, Authors) 唯一确定一个题包，作者列表按顺序比较
type Package struct {
	ID              uint                        `gorm:"primaryKey"`
	Name            string                      `gorm:"not null;uniqueIndex:idx_packages_identity"`
	Hash            string                      `gorm:"not null;uniqueIndex:idx_packages_identity"`
	Authors         datatypes.JSONSlice[string] `gorm:"not null;uniqueIndex:idx_packages_identity"`
	AuthorsContacts *string
}

// PackageKey 是题包的自然键，原样比较，不做归一化
type PackageKey struct {
	Name    string   `json:"name"`
	Hash    string   `json:"hash"`
	Authors []string `json:"authors"`
}

func (k PackageKey) authors() datatypes.JSONSlice[string] {
	if k.Authors == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](k.Authors)
}

// Key 返回题包的自然键
func (p Package) Key() PackageKey {
	authors := []string(p.Authors)
	if authors == nil {
		authors = []string{}
	}
	return PackageKey{Name: p.Name, Hash: p.Hash, Authors: authors}
}
