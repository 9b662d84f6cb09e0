package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB 是一个全局的Redis客户端实例，未配置Redis时为nil
var RDB *redis.Client

// InitRedis 初始化与Redis数据库的连接
// 地址为空时跳过，返回 (false, nil)
func InitRedis(ctx context.Context, cfg config.RedisConfig) (bool, error) {
	if cfg.Address == "" {
		return false, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return false, fmt.Errorf("无法连接到Redis: %w", err)
	}

	RDB = client
	return true, nil
}
