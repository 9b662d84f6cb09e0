package game

import (
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"github.com/SlpAus/sistatistics-backend/internal/packagestats"
	"github.com/SlpAus/sistatistics-backend/internal/question"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Record 是一局已完成游戏的持久化记录
type Record struct {
	ID         uint                                  `gorm:"primarykey"`
	ReportID   *uuid.UUID                            `gorm:"type:uuid"`
	Name       string                                `gorm:"not null"`
	Platform   Platforms                             `gorm:"not null"`
	FinishTime time.Time                             `gorm:"not null;index"`
	Duration   time.Duration                         `gorm:"not null"`
	PackageID  uint                                  `gorm:"not null;index"`
	Package    identity.Package                      `gorm:"foreignKey:PackageID"`
	LanguageID *uint                                 `gorm:"index"`
	Scores     datatypes.JSONType[map[string]int]    `gorm:"not null"`
	Reviews    datatypes.JSONType[map[string]string] `gorm:"not null"`
	CreatedAt  time.Time
}

func (Record) TableName() string {
	return "games"
}

// Models 返回需要迁移的模型
func Models() []interface{} {
	return []interface{}{&Record{}}
}

// PackageInfo 是报告和查询结果中题包的描述
type PackageInfo struct {
	Name            string   `json:"name"`
	Hash            string   `json:"hash"`
	Authors         []string `json:"authors"`
	AuthorsContacts *string  `json:"authorsContacts,omitempty"`
	Source          *string  `json:"source,omitempty"`
}

func (p PackageInfo) key() identity.PackageKey {
	return identity.PackageKey{Name: p.Name, Hash: p.Hash, Authors: p.Authors}
}

func packageInfoOf(pkg identity.Package) PackageInfo {
	key := pkg.Key()
	return PackageInfo{
		Name:            key.Name,
		Hash:            key.Hash,
		Authors:         key.Authors,
		AuthorsContacts: pkg.AuthorsContacts,
	}
}

// GameResultInfo 描述一局游戏的结果
type GameResultInfo struct {
	Package      PackageInfo         `json:"package"`
	LanguageCode *string             `json:"languageCode,omitempty"`
	Name         string              `json:"name"`
	Platform     Platforms           `json:"platform"`
	FinishTime   time.Time           `json:"finishTime"`
	Duration     Duration            `json:"duration"`
	Results      map[string]int      `json:"results"`
	Reviews      map[string]string   `json:"reviews"`
	Stats        *packagestats.Stats `json:"stats,omitempty"`
}

// GameReport 是客户端提交的游戏报告
type GameReport struct {
	ReportID        *uuid.UUID        `json:"reportId,omitempty"`
	Info            *GameResultInfo   `json:"info"`
	QuestionReports []question.Report `json:"questionReports"`
}

// StatisticFilter 是统计查询的过滤条件，From 和 To 均包含在内
type StatisticFilter struct {
	Platform     Platforms
	From         time.Time
	To           time.Time
	LanguageCode string
	Count        int
}

type GamesResponse struct {
	Results []GameResultInfo `json:"results"`
}

type GamesStatistic struct {
	GameCount     int      `json:"gameCount"`
	TotalDuration Duration `json:"totalDuration"`
}

type PackageStatistic struct {
	Package   PackageInfo `json:"package"`
	GameCount int         `json:"gameCount"`
}

type PackagesStatistic struct {
	Packages []PackageStatistic `json:"packages"`
}

// PackageInfoRequest 按自然键查询单个题包
type PackageInfoRequest struct {
	Name         string   `json:"name"`
	Hash         string   `json:"hash"`
	Authors      []string `json:"authors"`
	Source       string   `json:"source,omitempty"`
	IncludeStats bool     `json:"includeStats"`
}

type PackageInfoResponse struct {
	Package PackageInfo         `json:"package"`
	Stats   *packagestats.Stats `json:"stats,omitempty"`
}
