package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName 是服务注册到OpenTelemetry的仪表名称
const MeterName = "SIStatistics"

// Metrics 汇总统计服务对外暴露的计数器
type Metrics struct {
	gameReports    metric.Int64Counter
	packages       metric.Int64Counter
	questions      metric.Int64Counter
	limitExceeded  metric.Int64Counter
	mergeConflicts metric.Int64Counter
	rateLimited    metric.Int64Counter
}

// New 使用给定的 meter 创建全部计数器
func New(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.gameReports, err = meter.Int64Counter("game-reports-uploaded", metric.WithDescription("Number of accepted game reports")); err != nil {
		return nil, err
	}
	if m.packages, err = meter.Int64Counter("packages-content-uploaded", metric.WithDescription("Number of imported package contents")); err != nil {
		return nil, err
	}
	if m.questions, err = meter.Int64Counter("question-reports-uploaded", metric.WithDescription("Number of tallied answers")); err != nil {
		return nil, err
	}
	if m.limitExceeded, err = meter.Int64Counter("limit-exceeded", metric.WithDescription("Number of items skipped because a value exceeded the index limit")); err != nil {
		return nil, err
	}
	if m.mergeConflicts, err = meter.Int64Counter("stats-merge-conflicts", metric.WithDescription("Number of optimistic stats merge attempts lost to a concurrent writer")); err != nil {
		return nil, err
	}
	if m.rateLimited, err = meter.Int64Counter("requests-rate-limited", metric.WithDescription("Number of write requests rejected by the rate limiter")); err != nil {
		return nil, err
	}
	return &m, nil
}

// NewGlobal 从全局 MeterProvider 创建计数器
func NewGlobal() (*Metrics, error) {
	return New(otel.Meter(MeterName))
}

// Nop 返回不记录任何数据的计数器，供测试使用
func Nop() *Metrics {
	m, _ := New(noop.NewMeterProvider().Meter(MeterName))
	return m
}

func (m *Metrics) AddGameReport(ctx context.Context)    { m.gameReports.Add(ctx, 1) }
func (m *Metrics) AddPackage(ctx context.Context)       { m.packages.Add(ctx, 1) }
func (m *Metrics) AddQuestions(ctx context.Context)     { m.questions.Add(ctx, 1) }
func (m *Metrics) AddLimitExceeded(ctx context.Context) { m.limitExceeded.Add(ctx, 1) }
func (m *Metrics) AddMergeConflict(ctx context.Context) { m.mergeConflicts.Add(ctx, 1) }
func (m *Metrics) AddRateLimited(ctx context.Context)   { m.rateLimited.Add(ctx, 1) }
