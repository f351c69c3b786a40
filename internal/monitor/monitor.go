// Package monitor periodically logs the collector process's own resource
// usage so long-running deployments can spot runaway sampling cost.
package monitor

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Monitor tracks resource usage of this process.
type Monitor struct {
	interval time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
	proc     *process.Process
}

// New creates a monitor with the given collection interval. Returns nil when
// the process handle cannot be obtained; callers treat a nil monitor as
// disabled.
func New(interval time.Duration, logger *slog.Logger) *Monitor {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Error("failed to get process handle", "error", err)
		return nil
	}
	return &Monitor{interval: interval, logger: logger, proc: proc}
}

// Run starts the monitoring loop in a background goroutine. It collects once
// immediately, then on every tick until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.collect()
		for {
			select {
			case <-ctx.Done():
				m.logger.Debug("monitor shutdown complete")
				return
			case <-ticker.C:
				m.collect()
			}
		}
	})
}

// Wait blocks until the monitor goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

func (m *Monitor) collect() {
	cpuPct, err := m.proc.CPUPercent()
	if err != nil {
		m.logger.Warn("failed to get cpu percent", "error", err)
		cpuPct = 0
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.logger.Info("self",
		"cpu_pct", cpuPct,
		"goroutines", runtime.NumGoroutine(),
		"heap_mb", float64(ms.HeapAlloc)/(1024*1024),
		"gc", ms.NumGC,
	)
}
