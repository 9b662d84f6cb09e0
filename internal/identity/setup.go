package identity

// Models 返回本模块需要迁移的表
func Models() []interface{} {
	return []interface{}{&Theme{}, &Question{}, &Entity{}, &Language{}, &Package{}}
}
