package question

import (
	"errors"
	"fmt"

	"github.com/SlpAus/sistatistics-backend/internal/tally"
)

// ErrUnsupportedReportType 表示问题报告使用了 right/wrong 等只能由题包导入产生的类型
var ErrUnsupportedReportType = errors.New("question: unsupported report type")

// Report 是玩家在游戏中对某个问题提交的答案报告
type Report struct {
	ThemeName    string             `json:"themeName"`
	QuestionText string             `json:"questionText"`
	ReportText   string             `json:"reportText"`
	ReportType   tally.RelationType `json:"reportType"`
}

// Validate 检查报告类型是否允许
func (r Report) Validate() error {
	switch r.ReportType {
	case tally.Apellated, tally.Accepted, tally.Rejected, tally.Complained:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedReportType, r.ReportType)
	}
}

// ImportResult 是一次题包导入返回给调用方的结果
type ImportResult struct {
	CollectedAnswers map[QuestionKey][]tally.CollectedAnswer `json:"collectedAnswers"`
}

// InfoResponse 是问题答案查询的响应
type InfoResponse struct {
	Entities []tally.EntityInfo `json:"entities"`
}
