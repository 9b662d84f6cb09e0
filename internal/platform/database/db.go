package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是应用进程内共享的数据库连接
var DB *gorm.DB

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open 按配置打开数据库连接，但不修改全局变量
func Open(cfg config.DatabaseConfig, mode string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSqlite, "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}

	// GORM日志配置，生产环境只记录慢查询
	level := logger.Silent
	if mode == "release" || mode == "prod" {
		level = logger.Warn
	}
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.Driver != DriverPostgres {
		// SQLite 只允许单写者
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// InitDB 初始化全局数据库连接
func InitDB(cfg config.DatabaseConfig, mode string) error {
	db, err := Open(cfg, mode)
	if err != nil {
		return err
	}
	DB = db
	return nil
}
