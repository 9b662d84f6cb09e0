package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Manager 向后台服务分发句柄，并在停机时等待它们退出
type Manager struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	services map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager() *Manager {
	m := &Manager{services: make(map[string]struct{})}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// NewServiceHandle 注册一个服务，名称不能重复
func (m *Manager) NewServiceHandle(name string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.services[name]; exists {
		return nil, fmt.Errorf("lifecycle: service %q already registered", name)
	}
	m.services[name] = struct{}{}
	m.wg.Add(1)

	var once sync.Once
	return &Handle{
		name: name,
		ctx:  m.ctx,
		close: func() {
			once.Do(func() {
				m.mu.Lock()
				delete(m.services, name)
				m.mu.Unlock()
				m.wg.Done()
			})
		},
	}, nil
}

// Go 注册服务并在新的goroutine中运行fn，fn返回时自动关闭句柄
func (m *Manager) Go(name string, fn func(h *Handle)) error {
	h, err := m.NewServiceHandle(name)
	if err != nil {
		return err
	}
	go func() {
		defer h.Close()
		fn(h)
	}()
	return nil
}

// Shutdown 广播停机信号
func (m *Manager) Shutdown() {
	m.cancel()
}

// WaitWithTimeout 等待所有服务退出，超时时返回仍在运行的服务名称（已排序）
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		m.mu.Lock()
		defer m.mu.Unlock()
		remaining := make([]string, 0, len(m.services))
		for name := range m.services {
			remaining = append(remaining, name)
		}
		sort.Strings(remaining)
		return remaining
	}
}
