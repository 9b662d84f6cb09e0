package database

import "sync"

// statusManager 负责线程安全地管理和提供存储依赖的健康状态。
type statusManager struct {
	mu                sync.RWMutex
	isDatabaseHealthy bool
	isRedisHealthy    bool
}

// 全局的状态管理器实例，默认启动时是健康的
var globalStatus = &statusManager{
	isDatabaseHealthy: true,
	isRedisHealthy:    true,
}

// IsDatabaseHealthy 返回最近一次检查时数据库的健康状态。
func IsDatabaseHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isDatabaseHealthy
}

// IsRedisHealthy 返回最近一次检查时Redis的健康状态。
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// UpdateStatus 线程安全地更新健康状态，返回状态是否发生变化。
func UpdateStatus(databaseHealthy, redisHealthy bool) (changed bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	changed = globalStatus.isDatabaseHealthy != databaseHealthy || globalStatus.isRedisHealthy != redisHealthy
	globalStatus.isDatabaseHealthy = databaseHealthy
	globalStatus.isRedisHealthy = redisHealthy
	return changed
}
