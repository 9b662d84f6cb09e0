package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"github.com/SlpAus/sistatistics-backend/internal/packagestats"
	"github.com/SlpAus/sistatistics-backend/internal/platform/config"
	"github.com/SlpAus/sistatistics-backend/internal/platform/database"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/internal/question"
	"github.com/SlpAus/sistatistics-backend/internal/source"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder 是本模块用到的计数器
type Recorder interface {
	AddGameReport(ctx context.Context)
	AddLimitExceeded(ctx context.Context)
}

// QuestionReporter 登记游戏报告中附带的问题报告
type QuestionReporter interface {
	ImportQuestionReport(ctx context.Context, report question.Report) error
}

// Service 负责游戏报告的写入和各类统计查询
type Service struct {
	db        *gorm.DB
	games     *Repository
	resolver  *identity.Resolver
	sources   *source.Registry
	stats     *packagestats.Repository
	questions QuestionReporter
	metrics   Recorder
	settings  config.StatisticsConfig
	log       *logger.Logger
	now       func() time.Time
}

func NewService(
	db *gorm.DB,
	resolver *identity.Resolver,
	sources *source.Registry,
	stats *packagestats.Repository,
	questions QuestionReporter,
	metrics Recorder,
	settings config.StatisticsConfig,
	log *logger.Logger,
) *Service {
	defaults := config.DefaultStatistics()
	if settings.TopPackageCount <= 0 {
		settings.TopPackageCount = defaults.TopPackageCount
	}
	if settings.MaxResultCount <= 0 {
		settings.MaxResultCount = defaults.MaxResultCount
	}
	if settings.TxMaxAttempts <= 0 {
		settings.TxMaxAttempts = defaults.TxMaxAttempts
	}
	return &Service{
		db:        db,
		games:     NewRepository(db),
		resolver:  resolver,
		sources:   sources,
		stats:     stats,
		questions: questions,
		metrics:   metrics,
		settings:  settings,
		log:       log.With("service", "game"),
		now:       time.Now,
	}
}

// Validate 按服务配置校验报告，public 区分公开接口和管理接口
func (s *Service) Validate(report GameReport, public bool) error {
	opts := ValidationOptions{
		Public:              public,
		FreshnessWindow:     s.settings.ReportFreshnessWindow,
		MaximumGameDuration: s.settings.MaximumGameDuration,
	}
	return ValidateReport(report, opts, s.now())
}

// IngestGameReport 在一个事务中写入题包身份、来源、语言、游戏记录和累计统计。
// 任一步骤失败时整个报告都不会留下痕迹。
func (s *Service) IngestGameReport(ctx context.Context, report GameReport) (uint, error) {
	info := report.Info
	if info == nil {
		return 0, ErrGameInfoNotFound
	}
	if info.FinishTime.IsZero() {
		return 0, ErrInvalidFinishTime
	}

	var gameID uint
	err := database.TransactionWithRetry(ctx, s.db, s.settings.TxMaxAttempts, func(tx *gorm.DB) error {
		packageID, err := s.resolver.Package(ctx, tx, info.Package.key(), info.Package.AuthorsContacts)
		if err != nil {
			return fmt.Errorf("解析题包失败: %w", err)
		}
		if info.Package.Source != nil && *info.Package.Source != "" {
			if err := s.sources.Register(ctx, tx, packageID, *info.Package.Source); err != nil {
				return fmt.Errorf("登记题包来源失败: %w", err)
			}
		}

		var languageID *uint
		if info.LanguageCode != nil && *info.LanguageCode != "" {
			id, err := s.resolver.Language(ctx, tx, *info.LanguageCode)
			if err != nil {
				return fmt.Errorf("解析语言失败: %w", err)
			}
			languageID = &id
		}

		rec := Record{
			ReportID:   report.ReportID,
			Name:       info.Name,
			Platform:   info.Platform,
			FinishTime: info.FinishTime.UTC(),
			Duration:   time.Duration(info.Duration),
			PackageID:  packageID,
			LanguageID: languageID,
			Scores:     datatypes.NewJSONType(nonNil(info.Results)),
			Reviews:    datatypes.NewJSONType(nonNil(info.Reviews)),
		}
		if err := s.games.Create(ctx, tx, &rec); err != nil {
			return fmt.Errorf("写入游戏记录失败: %w", err)
		}

		if info.Stats != nil {
			if err := s.stats.Merge(ctx, tx, packageID, *info.Stats); err != nil {
				return err
			}
		}
		gameID = rec.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, identity.ErrLimitExceeded) {
			s.metrics.AddLimitExceeded(ctx)
		}
		return 0, err
	}

	s.metrics.AddGameReport(ctx)
	s.log.Debug("game report ingested", "game", gameID, "package", info.Package.Name, "platform", info.Platform)
	return gameID, nil
}

// SubmitReport 写入游戏报告，提交成功后再逐条登记问题报告。
// 超长的问题报告只被跳过，其他错误会中止剩余报告的处理。
func (s *Service) SubmitReport(ctx context.Context, report GameReport) error {
	if _, err := s.IngestGameReport(ctx, report); err != nil {
		return err
	}
	for i, qr := range report.QuestionReports {
		if err := s.questions.ImportQuestionReport(ctx, qr); err != nil {
			s.log.Error("question report failed", "index", i, "total", len(report.QuestionReports), "error", err)
			return fmt.Errorf("登记问题报告失败: %w", err)
		}
	}
	return nil
}

func nonNil[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return m
}

// normalize 补全过滤条件的默认值，并把数量限制在 limit 以内
func (s *Service) normalize(filter StatisticFilter, limit int) StatisticFilter {
	if filter.Platform == 0 {
		filter.Platform = AllPlatforms
	}
	if filter.To.IsZero() {
		filter.To = s.now()
	}
	if filter.Count <= 0 || filter.Count > limit {
		filter.Count = limit
	}
	return filter
}

// QueryGames 返回最近结束的游戏
func (s *Service) QueryGames(ctx context.Context, filter StatisticFilter) (*GamesResponse, error) {
	filter = s.normalize(filter, s.settings.MaxResultCount)

	rows, err := s.games.Find(ctx, filter, filter.Count)
	if err != nil {
		return nil, err
	}

	var languageIDs []uint
	for _, row := range rows {
		if row.LanguageID != nil {
			languageIDs = append(languageIDs, *row.LanguageID)
		}
	}
	codes, err := s.games.LanguageCodes(ctx, languageIDs)
	if err != nil {
		return nil, err
	}

	results := make([]GameResultInfo, 0, len(rows))
	for _, row := range rows {
		info := GameResultInfo{
			Package:    packageInfoOf(row.Package),
			Name:       row.Name,
			Platform:   row.Platform,
			FinishTime: row.FinishTime,
			Duration:   Duration(row.Duration),
			Results:    row.Scores.Data(),
			Reviews:    row.Reviews.Data(),
		}
		if row.LanguageID != nil {
			if code, ok := codes[*row.LanguageID]; ok {
				info.LanguageCode = &code
			}
		}
		results = append(results, info)
	}
	return &GamesResponse{Results: results}, nil
}

// QueryGameStatistic 统计游戏局数和总时长，总时长溢出时取最大值
func (s *Service) QueryGameStatistic(ctx context.Context, filter StatisticFilter) (*GamesStatistic, error) {
	filter = s.normalize(filter, s.settings.MaxResultCount)

	durations, err := s.games.Durations(ctx, filter)
	if err != nil {
		return nil, err
	}
	var total time.Duration
	for _, d := range durations {
		if d > 0 {
			total = addSaturating(total, d)
		}
	}
	return &GamesStatistic{GameCount: len(durations), TotalDuration: Duration(total)}, nil
}

// QueryPackageStatistics 返回游戏局数最多的题包。
// sourceURI 和 fallbackURI 用于为每个题包选择来源地址，可以为空。
func (s *Service) QueryPackageStatistics(ctx context.Context, filter StatisticFilter, sourceURI, fallbackURI string) (*PackagesStatistic, error) {
	filter = s.normalize(filter, s.settings.TopPackageCount)

	counts, err := s.games.TopPackages(ctx, filter, filter.Count)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.PackageID)
	}
	packages, err := s.resolver.PackagesByID(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	sources, err := s.sources.ResolveSources(ctx, nil, ids, sourceURI, fallbackURI)
	if err != nil {
		return nil, err
	}

	result := &PackagesStatistic{Packages: make([]PackageStatistic, 0, len(counts))}
	for _, c := range counts {
		pkg, ok := packages[c.PackageID]
		if !ok {
			continue
		}
		info := packageInfoOf(pkg)
		if src, ok := sources[c.PackageID]; ok {
			info.Source = &src
		}
		result.Packages = append(result.Packages, PackageStatistic{Package: info, GameCount: c.GameCount})
	}
	return result, nil
}

// QueryPackageStats 返回题包的累计统计。
// 题包未知或从未收到过统计时返回 (nil, nil)，查询不会创建题包。
func (s *Service) QueryPackageStats(ctx context.Context, key identity.PackageKey) (*packagestats.Stats, error) {
	pkg, err := s.resolver.FindPackage(ctx, nil, key)
	if err != nil || pkg == nil {
		return nil, err
	}
	return s.stats.Load(ctx, nil, pkg.ID)
}

// GetPackageInfo 返回单个题包的描述，可选附带累计统计。未知题包返回 (nil, nil)。
func (s *Service) GetPackageInfo(ctx context.Context, req PackageInfoRequest) (*PackageInfoResponse, error) {
	key := identity.PackageKey{Name: req.Name, Hash: req.Hash, Authors: req.Authors}
	pkg, err := s.resolver.FindPackage(ctx, nil, key)
	if err != nil || pkg == nil {
		return nil, err
	}

	sources, err := s.sources.ResolveSources(ctx, nil, []uint{pkg.ID}, req.Source, "")
	if err != nil {
		return nil, err
	}
	resp := &PackageInfoResponse{Package: packageInfoOf(*pkg)}
	if src, ok := sources[pkg.ID]; ok {
		resp.Package.Source = &src
	}
	if req.IncludeStats {
		if resp.Stats, err = s.stats.Load(ctx, nil, pkg.ID); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
