package source

// PackageSource 记录一个题包在某个主机上的来源地址。
// 每个 (PackageID, SourceTag) 只保留一行，同一主机的新地址覆盖旧地址。
type PackageSource struct {
	ID        uint   `gorm:"primaryKey"`
	PackageID uint   `gorm:"not null;uniqueIndex:idx_package_sources_tag"`
	SourceTag int32  `gorm:"not null;uniqueIndex:idx_package_sources_tag"`
	Source    string `gorm:"not null"`
}

// Models 返回本模块需要迁移的表
func Models() []interface{} {
	return []interface{}{&PackageSource{}}
}
