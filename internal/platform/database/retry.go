package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const retryDelay = 50 * time.Millisecond

// TransactionWithRetry 在事务中执行fn，遇到可重试的并发冲突时最多重试 maxAttempts 次。
// 每次重试前检查ctx，已取消时直接返回，不会开启新的事务。
func TransactionWithRetry(ctx context.Context, db *gorm.DB, maxAttempts int, fn func(tx *gorm.DB) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var err error
	for i := 0; i < maxAttempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !IsRetryableError(err) {
			return err
		}
		if i < maxAttempts-1 {
			timer := time.NewTimer(retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return err
}
