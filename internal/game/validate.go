package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/source"
)

var (
	ErrGameInfoNotFound    = errors.New("game: report has no game info")
	ErrInvalidFinishTime   = errors.New("game: invalid finish time")
	ErrInvalidDuration     = errors.New("game: invalid duration")
	ErrUnsupportedPlatform = errors.New("game: unsupported platform")
	ErrMissingPackageHash  = errors.New("game: package hash is required")
)

// ValidationOptions 控制报告校验的严格程度
type ValidationOptions struct {
	// Public 为真时按公开接口的规则校验：只接受本地游戏，并检查时长
	Public              bool
	FreshnessWindow     time.Duration
	MaximumGameDuration time.Duration
}

// ValidateReport 校验报告，now 为服务器当前时间
func ValidateReport(report GameReport, opts ValidationOptions, now time.Time) error {
	info := report.Info
	if info == nil {
		return ErrGameInfoNotFound
	}
	if info.Package.Hash == "" {
		return ErrMissingPackageHash
	}
	if info.FinishTime.IsZero() {
		return fmt.Errorf("%w: %s", ErrInvalidFinishTime, info.FinishTime)
	}
	if opts.FreshnessWindow > 0 && now.Sub(info.FinishTime) > opts.FreshnessWindow {
		return fmt.Errorf("%w: %s is older than %s", ErrInvalidFinishTime, info.FinishTime, opts.FreshnessWindow)
	}
	if !info.Platform.Single() {
		return fmt.Errorf("%w: %d", ErrUnsupportedPlatform, info.Platform)
	}
	if info.Package.Source != nil {
		if _, err := source.StableHostTag(*info.Package.Source); err != nil {
			return err
		}
	}
	for _, qr := range report.QuestionReports {
		if err := qr.Validate(); err != nil {
			return err
		}
	}

	if !opts.Public {
		return nil
	}
	if info.Platform != Local {
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, info.Platform)
	}
	d := time.Duration(info.Duration)
	if d < 0 || (opts.MaximumGameDuration > 0 && d > opts.MaximumGameDuration) {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, info.Duration)
	}
	return nil
}
