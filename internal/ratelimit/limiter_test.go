package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/platform/apierr"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct{ n int }

func (r *countingRecorder) AddRateLimited(context.Context) { r.n++ }

// redisClient 连接 TEST_REDIS_ADDR 指定的Redis，未设置时跳过测试
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis limiter tests")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestMemberIDIsUnique(t *testing.T) {
	now := time.Now()
	a, err := memberID(now)
	require.NoError(t, err)
	b, err := memberID(now)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 22)
}

func newRouter(limiter *Limiter, rec Recorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apierr.Middleware(logger.Nop()))
	r.POST("/reports", Middleware(limiter, rec, logger.Nop()), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})
	return r
}

func post(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/reports", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareWithoutLimiterAllows(t *testing.T) {
	rec := &countingRecorder{}
	r := newRouter(nil, rec)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusAccepted, post(r, "10.0.0.1").Code)
	}
	assert.Zero(t, rec.n)
}

func TestLimiterSlidingWindow(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()
	ip := "10.1.2.3"
	l := NewLimiter(rdb, time.Minute, 2)
	start := time.Now()
	l.now = func() time.Time { return start }
	key := keyPrefix + ip
	require.NoError(t, rdb.Del(ctx, key).Err())
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	for i := int64(1); i <= 2; i++ {
		count, ok, err := l.Allow(ctx, ip)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, i, count)
	}
	count, ok, err := l.Allow(ctx, ip)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(2), count)

	// 窗口滑过之后重新放行
	l.now = func() time.Time { return start.Add(time.Minute + time.Second) }
	_, ok, err = l.Allow(ctx, ip)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiterRejectsInvalidIP(t *testing.T) {
	l := NewLimiter(nil, time.Minute, 1)
	_, _, err := l.Allow(context.Background(), "not-an-ip")
	assert.Error(t, err)
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	rdb := redisClient(t)
	const ip = "10.9.9.9"
	require.NoError(t, rdb.Del(context.Background(), keyPrefix+ip).Err())
	t.Cleanup(func() { rdb.Del(context.Background(), keyPrefix+ip) })

	rec := &countingRecorder{}
	r := newRouter(NewLimiter(rdb, time.Minute, 1), rec)

	require.Equal(t, http.StatusAccepted, post(r, ip).Code)
	w := post(r, ip)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"errorCode":"tooManyRequests"}`, w.Body.String())
	assert.Equal(t, 1, rec.n)
}
