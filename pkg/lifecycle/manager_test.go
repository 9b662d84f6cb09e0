package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerWaitsForServices(t *testing.T) {
	m := NewManager()
	stopped := make(chan struct{})
	require.NoError(t, m.Go("checker", func(h *Handle) {
		<-h.Done()
		close(stopped)
	}))

	m.Shutdown()
	assert.Empty(t, m.WaitWithTimeout(time.Second))
	<-stopped
}

func TestManagerReportsStuckServices(t *testing.T) {
	m := NewManager()
	_, err := m.NewServiceHandle("stuck-b")
	require.NoError(t, err)
	_, err = m.NewServiceHandle("stuck-a")
	require.NoError(t, err)

	m.Shutdown()
	assert.Equal(t, []string{"stuck-a", "stuck-b"}, m.WaitWithTimeout(10*time.Millisecond))
}

func TestDuplicateServiceName(t *testing.T) {
	m := NewManager()
	h, err := m.NewServiceHandle("svc")
	require.NoError(t, err)
	_, err = m.NewServiceHandle("svc")
	assert.Error(t, err)

	h.Close()
	h.Close()
	_, err = m.NewServiceHandle("svc")
	assert.NoError(t, err)
}

func TestHandleSleep(t *testing.T) {
	m := NewManager()
	h, err := m.NewServiceHandle("sleeper")
	require.NoError(t, err)
	defer h.Close()

	assert.NoError(t, h.Sleep(time.Millisecond))
	m.Shutdown()
	assert.ErrorIs(t, h.Sleep(time.Hour), context.Canceled)
}
