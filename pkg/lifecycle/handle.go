package lifecycle

import (
	"context"
	"time"
)

// Handle 是分发给后台服务的生命周期句柄
type Handle struct {
	name  string
	ctx   context.Context
	close func()
}

// Name 返回服务注册时使用的名称
func (h *Handle) Name() string {
	return h.name
}

// Ctx 返回在停机时被取消的上下文
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 在管理器广播停机信号后关闭
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Close 通知管理器服务已经退出，可以重复调用
func (h *Handle) Close() {
	h.close()
}

// Sleep 休眠指定时长，停机时提前返回上下文的错误
func (h *Handle) Sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.ctx.Done():
		return h.ctx.Err()
	case <-timer.C:
		return nil
	}
}
