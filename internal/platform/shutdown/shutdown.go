package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/pkg/lifecycle"
)

const (
	httpTimeout    = 15 * time.Second
	serviceTimeout = 30 * time.Second
)

// Coordinator 编排停机流程：先关闭HTTP服务器，再停止后台服务，最后释放存储连接
type Coordinator struct {
	Services *lifecycle.Manager
	// Closers 在后台服务停止后依次执行，例如刷新指标、关闭数据库和Redis连接
	Closers []func() error

	log *logger.Logger
}

func NewCoordinator(services *lifecycle.Manager, log *logger.Logger) *Coordinator {
	return &Coordinator{
		Services: services,
		log:      log.With("service", "shutdown"),
	}
}

// ListenForSignalsAndShutdown 阻塞直到收到 SIGINT/SIGTERM，然后执行停机
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	c.log.Info("shutdown signal received", "signal", sig.String())
	c.Shutdown(server)
}

// Shutdown 执行完整的停机流程
func (c *Coordinator) Shutdown(server *http.Server) {
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
		if err := server.Shutdown(ctx); err != nil {
			c.log.Error("http server shutdown failed", "error", err)
		} else {
			c.log.Info("http server stopped")
		}
		cancel()
	}

	c.Services.Shutdown()
	if remaining := c.Services.WaitWithTimeout(serviceTimeout); len(remaining) > 0 {
		c.log.Error("services did not stop", "remaining", remaining)
	}

	for _, closeFn := range c.Closers {
		if err := closeFn(); err != nil {
			c.log.Error("closing resource failed", "error", err)
		}
	}
	c.log.Info("shutdown complete")
}
