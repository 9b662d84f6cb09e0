package packagestats

import (
	"time"

	"gorm.io/datatypes"
)

// Record 是题包的累计统计行，Version 用于乐观并发控制
type Record struct {
	PackageID uint                      `gorm:"primaryKey;autoIncrement:false"`
	Stats     datatypes.JSONType[Stats] `gorm:"not null"`
	Version   int64                     `gorm:"not null;default:1"`
	UpdatedAt time.Time
}

func (Record) TableName() string {
	return "package_stats"
}

// Models 返回本模块需要迁移的表
func Models() []interface{} {
	return []interface{}{&Record{}}
}
