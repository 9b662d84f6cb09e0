package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB 为每个测试打开一个独立的内存SQLite数据库并迁移给定的模型。
// 连接池限制为单连接，事务内的所有语句都必须使用同一个 tx。
func DB(tb testing.TB, models ...interface{}) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:memdb-%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			tb.Fatalf("migrate: %v", err)
		}
	}
	return db
}

// PostgresDB 连接 TEST_POSTGRES_DSN 指定的数据库，未设置时跳过测试
func PostgresDB(tb testing.TB, models ...interface{}) *gorm.DB {
	tb.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open postgres: %v", err)
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			tb.Fatalf("migrate: %v", err)
		}
	}
	return db
}

// Tx 开启一个事务，并在测试结束时回滚
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// Logger 返回一个丢弃输出的日志器
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

func Ptr[T any](v T) *T { return &v }
