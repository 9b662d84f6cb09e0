package question

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/internal/siq"
	"github.com/SlpAus/sistatistics-backend/internal/tally"
	"gorm.io/gorm"
)

// Recorder 是本模块用到的计数器
type Recorder interface {
	AddPackage(ctx context.Context)
	AddQuestions(ctx context.Context)
	AddLimitExceeded(ctx context.Context)
}

// Service 负责题包导入、问题报告计数与问题答案查询
type Service struct {
	resolver  *identity.Resolver
	tallies   *tally.Repository
	metrics   Recorder
	threshold int
	log       *logger.Logger
}

func NewService(resolver *identity.Resolver, tallies *tally.Repository, metrics Recorder, threshold int, log *logger.Logger) *Service {
	if threshold <= 0 {
		threshold = tally.DefaultCollectThreshold
	}
	return &Service{
		resolver:  resolver,
		tallies:   tallies,
		metrics:   metrics,
		threshold: threshold,
		log:       log.With("service", "question"),
	}
}

// skipped 处理超长文本：计数、记录日志并告诉调用方跳过当前条目
func (s *Service) skipped(ctx context.Context, err error, what, text string) bool {
	if !errors.Is(err, identity.ErrLimitExceeded) {
		return false
	}
	s.metrics.AddLimitExceeded(ctx)
	s.log.Info("limit exceeded, item skipped", "item", what, "textLength", len(text))
	return true
}

type importedQuestion struct {
	key        QuestionKey
	themeID    uint
	questionID uint
}

// ImportPackage 逐个主题、逐个问题地登记题包中的正确和错误答案，
// 全部计数完成后返回达到阈值的申诉和驳回答案，按问题在文档中的位置索引。
// 单个条目超长只跳过该条目，其余条目照常处理。
func (s *Service) ImportPackage(ctx context.Context, pkg *siq.Package) (*ImportResult, error) {
	var imported []importedQuestion

	for roundIndex, round := range pkg.Rounds {
		for themeIndex, theme := range round.Themes {
			themeID, err := s.resolver.Theme(ctx, nil, theme.Name)
			if err != nil {
				if s.skipped(ctx, err, "theme", theme.Name) {
					continue
				}
				return nil, fmt.Errorf("解析主题失败: %w", err)
			}

			for questionIndex, q := range theme.Questions {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				if !q.IsTextOnly() {
					continue
				}

				text := q.Text()
				questionID, err := s.resolver.Question(ctx, nil, text)
				if err != nil {
					if s.skipped(ctx, err, "question", text) {
						continue
					}
					return nil, fmt.Errorf("解析问题失败: %w", err)
				}

				if err := s.tallyAnswers(ctx, themeID, questionID, q.Right, tally.Right); err != nil {
					return nil, err
				}
				if err := s.tallyAnswers(ctx, themeID, questionID, q.Wrong, tally.Wrong); err != nil {
					return nil, err
				}

				imported = append(imported, importedQuestion{
					key:        QuestionKey{Round: roundIndex, Theme: themeIndex, Question: questionIndex},
					themeID:    themeID,
					questionID: questionID,
				})
			}
		}
	}

	result := &ImportResult{CollectedAnswers: make(map[QuestionKey][]tally.CollectedAnswer)}
	for _, iq := range imported {
		answers, err := s.tallies.Collected(ctx, nil, iq.themeID, iq.questionID, s.threshold)
		if err != nil {
			return nil, fmt.Errorf("读取收集答案失败: %w", err)
		}
		if len(answers) > 0 {
			result.CollectedAnswers[iq.key] = answers
		}
	}

	s.metrics.AddPackage(ctx)
	s.log.Debug("package imported", "package", pkg.Name, "questions", len(imported), "collected", len(result.CollectedAnswers))
	return result, nil
}

func (s *Service) tallyAnswers(ctx context.Context, themeID, questionID uint, answers []string, relation tally.RelationType) error {
	for _, answer := range answers {
		if err := s.tallies.Increment(ctx, nil, themeID, questionID, answer, relation); err != nil {
			if s.skipped(ctx, err, "answer", answer) {
				continue
			}
			return fmt.Errorf("登记答案失败: %w", err)
		}
		s.metrics.AddQuestions(ctx)
	}
	return nil
}

// ImportQuestionReport 为玩家提交的答案报告计数
func (s *Service) ImportQuestionReport(ctx context.Context, report Report) error {
	if err := report.Validate(); err != nil {
		return err
	}

	themeID, err := s.resolver.Theme(ctx, nil, report.ThemeName)
	if err != nil {
		if s.skipped(ctx, err, "theme", report.ThemeName) {
			return nil
		}
		return fmt.Errorf("解析主题失败: %w", err)
	}
	questionID, err := s.resolver.Question(ctx, nil, report.QuestionText)
	if err != nil {
		if s.skipped(ctx, err, "question", report.QuestionText) {
			return nil
		}
		return fmt.Errorf("解析问题失败: %w", err)
	}

	return s.tallyAnswers(ctx, themeID, questionID, []string{report.ReportText}, report.ReportType)
}

// QueryQuestionInfo 返回某个主题下某个问题记录的所有答案。
// 主题或问题从未出现过时返回空列表，不会创建记录。
func (s *Service) QueryQuestionInfo(ctx context.Context, themeName, questionText string) (*InfoResponse, error) {
	empty := &InfoResponse{Entities: []tally.EntityInfo{}}

	themeID, err := s.resolver.FindTheme(ctx, nil, themeName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}
	questionID, err := s.resolver.FindQuestion(ctx, nil, questionText)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return empty, nil
	}
	if err != nil {
		return nil, err
	}

	entities, err := s.tallies.Entities(ctx, nil, themeID, questionID)
	if err != nil {
		return nil, err
	}
	return &InfoResponse{Entities: entities}, nil
}
