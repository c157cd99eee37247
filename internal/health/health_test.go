package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func TestCheckBasic(t *testing.T) {
	h := &HealthChecker{db: fakePinger{}, spoolDir: t.TempDir(), redis: func() bool { return false }}
	status := h.CheckBasic()

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "disabled", status.Redis)
	if assert.NotNil(t, status.Host) {
		assert.Greater(t, status.Host.DiskFreeBytes, uint64(0))
	}
}

func TestCheckBasicDatabaseDown(t *testing.T) {
	h := &HealthChecker{db: fakePinger{err: errors.New("connection refused")}, redis: func() bool { return true }}
	status := h.CheckBasic()

	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "unhealthy", status.Database.Status)
	assert.Equal(t, "healthy", status.Redis)
	assert.Nil(t, status.Host)
}
