package metadata

// Metadata 是系统元数据的键值表
type Metadata struct {
	Key   string `gorm:"primaryKey;type:varchar(255)"`
	Value string `gorm:"type:varchar(255);not null"`
}

func (Metadata) TableName() string {
	return "metadata"
}

// Models 返回需要迁移的模型
func Models() []interface{} {
	return []interface{}{&Metadata{}}
}

// SchemaVersionKey 记录当前数据库结构的版本号
const SchemaVersionKey = "schema_version"
