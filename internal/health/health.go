package health

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"repairshop-backend/internal/cache"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db       Pinger
	spoolDir string
	redis    func() bool
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
	Redis    string         `json:"redis"`
	Host     *HostHealth    `json:"host,omitempty"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// HostHealth reports the disk holding the print spool, where documents pile up.
type HostHealth struct {
	SpoolDir          string  `json:"spool_dir"`
	DiskUsedPercent   float64 `json:"disk_used_percent"`
	DiskFreeBytes     uint64  `json:"disk_free_bytes"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
}

func NewHealthChecker(db Pinger, spoolDir string) *HealthChecker {
	return &HealthChecker{db: db, spoolDir: spoolDir, redis: cache.IsHealthy}
}

// CheckBasic is the readiness verdict: only the database decides it. Redis is optional.
func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	redis := "disabled"
	if h.redis() {
		redis = "healthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
		Redis:    redis,
		Host:     h.checkHost(),
	}
}

func (h *HealthChecker) checkDatabase() DatabaseHealth {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
		}
	}

	return DatabaseHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}

func (h *HealthChecker) checkHost() *HostHealth {
	if h.spoolDir == "" {
		return nil
	}
	host := &HostHealth{SpoolDir: h.spoolDir}
	if usage, err := disk.Usage(h.spoolDir); err == nil {
		host.DiskUsedPercent = usage.UsedPercent
		host.DiskFreeBytes = usage.Free
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		host.MemoryUsedPercent = vm.UsedPercent
	}
	return host
}
