package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// Limiter 是基于Redis有序集合的滑动窗口限流器，按客户端IP计数。
// 多个进程共享同一个Redis时，限额在进程之间共享。
type Limiter struct {
	rdb    *redis.Client
	window time.Duration
	limit  int64
	now    func() time.Time
}

func NewLimiter(rdb *redis.Client, window time.Duration, limit int64) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{rdb: rdb, window: window, limit: limit, now: time.Now}
}

// memberID 生成16字节的成员ID：8字节纳秒时间戳（大端）加8字节随机数
func memberID(t time.Time) (string, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], uint64(t.UnixNano()))
	if _, err := rand.Read(b[8:16]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Allow 为ip记录一次请求，返回窗口内的请求数以及是否放行。
// 被拒绝的请求不计入窗口。
func (l *Limiter) Allow(ctx context.Context, ip string) (int64, bool, error) {
	if net.ParseIP(ip) == nil {
		return 0, false, errors.New("ratelimit: invalid client ip")
	}
	now := l.now()
	key := keyPrefix + ip
	member, err := memberID(now)
	if err != nil {
		return 0, false, fmt.Errorf("生成 memberID 失败: %w", err)
	}

	minScore := float64(now.Add(-l.window).UnixMicro())
	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("(%f", minScore))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	pipe.Expire(ctx, key, l.window+time.Second)
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, false, fmt.Errorf("执行限流事务失败: %w", err)
	}

	count, err := countCmd.Result()
	if err != nil {
		return 0, false, err
	}
	if count > l.limit {
		if err := l.rdb.ZRem(ctx, key, member).Err(); err != nil {
			return count, false, fmt.Errorf("回滚限流计数失败: %w", err)
		}
		return count - 1, false, nil
	}
	return count, true, nil
}
