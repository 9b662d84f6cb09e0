package health

import (
	"context"
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/platform/database"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// Checker 定期探测数据库和Redis，并把结果写入 database 包的全局状态
type Checker struct {
	db       *gorm.DB
	rdb      *redis.Client
	interval time.Duration
	log      *logger.Logger
}

// NewChecker 创建检查器，rdb 为 nil 表示没有配置Redis
func NewChecker(db *gorm.DB, rdb *redis.Client, log *logger.Logger) *Checker {
	return &Checker{db: db, rdb: rdb, interval: checkInterval, log: log.With("service", "health")}
}

func (c *Checker) pingDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (c *Checker) pingRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

// PerformCheck 执行一次检查，状态变化时记录日志
func (c *Checker) PerformCheck(ctx context.Context) {
	dbErr := c.pingDatabase(ctx)
	var redisErr error
	redisHealthy := false
	if c.rdb != nil {
		redisErr = c.pingRedis(ctx)
		redisHealthy = redisErr == nil
	}

	if database.UpdateStatus(dbErr == nil, redisHealthy) {
		if dbErr != nil || redisErr != nil {
			c.log.Warn("dependency status changed", "database", dbErr == nil, "redis", redisHealthy, "databaseError", dbErr, "redisError", redisErr)
		} else {
			c.log.Info("dependency status changed", "database", true, "redis", redisHealthy)
		}
	}
}

// Run 在收到停机信号前循环检查
func (c *Checker) Run(h *lifecycle.Handle) {
	c.log.Info("health checker started", "interval", c.interval)
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-h.Done():
			c.log.Info("health checker stopped")
			return
		case <-timer.C:
			c.PerformCheck(h.Ctx())
			timer.Reset(c.interval)
		}
	}
}
