package tally

// AnswerTally 统计一个答案在某个 (主题, 问题, 关系类型) 下出现的次数
type AnswerTally struct {
	ID           uint  `gorm:"primaryKey"`
	ThemeID      uint  `gorm:"not null;uniqueIndex:idx_answer_tallies_key"`
	QuestionID   uint  `gorm:"not null;uniqueIndex:idx_answer_tallies_key"`
	EntityID     uint  `gorm:"not null;uniqueIndex:idx_answer_tallies_key"`
	RelationType int16 `gorm:"not null;uniqueIndex:idx_answer_tallies_key"`
	Count        int   `gorm:"not null;default:0"`
}

// CollectedAnswer 是达到阈值的申诉或驳回答案
type CollectedAnswer struct {
	AnswerText   string       `json:"answerText"`
	RelationType RelationType `json:"relationType"`
	Count        int          `json:"count"`
}

// EntityInfo 是某个问题下记录的一个答案及其次数
type EntityInfo struct {
	EntityName   string       `json:"entityName"`
	RelationType RelationType `json:"relationType"`
	Count        int          `json:"count"`
}

// Models 返回本模块需要迁移的表
func Models() []interface{} {
	return []interface{}{&AnswerTally{}}
}
