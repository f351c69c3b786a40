// Package cpu is the CPU metric family: core count, aggregate utilization,
// load averages and uptime, backed by gopsutil.
package cpu

import (
	"fmt"
	"log/slog"
	"time"

	gcpu "github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
)

// Swappable for tests.
var (
	cpuCounts  = gcpu.Counts
	cpuPercent = gcpu.Percent
	cpuInfo    = gcpu.Info
	loadAvg    = load.Avg
	hostUptime = host.Uptime
)

const (
	fieldCount = iota
	fieldPercent
	fieldLoad1
	fieldLoad5
	fieldLoad15
	fieldUptime
	fieldModel
	fieldFreqMHz
)

type snapshot struct {
	percent float64
	load    *load.AvgStat
	uptime  uint64
}

// Family collects CPU metrics. Core count, model and base frequency are
// static and probed once at init; the rest refreshes as one snapshot.
type Family struct {
	logger *slog.Logger
	gate   sensor.RefreshGate
	snap   snapshot

	count   int
	model   string
	freqMHz float64
	hasLoad bool
	hasInfo bool
}

// New creates the CPU family.
func New(logger *slog.Logger) *Family {
	return &Family{logger: logger}
}

// Name implements sensor.Family.
func (f *Family) Name() string { return "cpu" }

// Init probes CPU statistics and caches the static fields.
func (f *Family) Init() error {
	count, err := cpuCounts(true)
	if err != nil {
		return fmt.Errorf("%w: cpu count probe: %v", sensor.ErrNotSupported, err)
	}
	f.count = count

	// Prime the utilization baseline; the first real reading is computed
	// against it.
	if _, err := cpuPercent(0, false); err != nil {
		return fmt.Errorf("%w: cpu utilization probe: %v", sensor.ErrNotSupported, err)
	}

	if infos, err := cpuInfo(); err == nil && len(infos) > 0 {
		f.model = infos[0].ModelName
		f.freqMHz = infos[0].Mhz
		f.hasInfo = true
	} else if err != nil {
		f.logger.Info("cpu info unavailable", "error", err)
	}

	if _, err := loadAvg(); err == nil {
		f.hasLoad = true
	} else {
		f.logger.Info("load averages unavailable", "error", err)
	}

	return nil
}

// Close implements sensor.Family.
func (f *Family) Close() error { return nil }

// Descriptors implements sensor.Family. Load and model fields appear only
// when the platform supports them.
func (f *Family) Descriptors() []sensor.Descriptor {
	descs := []sensor.Descriptor{
		{Family: "cpu", Field: fieldCount, Label: "count", Kind: value.Uint32},
		{Family: "cpu", Field: fieldPercent, Label: "percent", Kind: value.Float64},
		{Family: "cpu", Field: fieldUptime, Label: "uptime", Kind: value.Uint64},
	}
	if f.hasLoad {
		descs = append(descs,
			sensor.Descriptor{Family: "cpu", Field: fieldLoad1, Label: "load1", Kind: value.Float64},
			sensor.Descriptor{Family: "cpu", Field: fieldLoad5, Label: "load5", Kind: value.Float64},
			sensor.Descriptor{Family: "cpu", Field: fieldLoad15, Label: "load15", Kind: value.Float64},
		)
	}
	if f.hasInfo {
		descs = append(descs,
			sensor.Descriptor{Family: "cpu", Field: fieldModel, Label: "model", Kind: value.Text},
			sensor.Descriptor{Family: "cpu", Field: fieldFreqMHz, Label: "freq_mhz", Kind: value.Float64},
		)
	}
	return descs
}

// Update implements sensor.Family.
func (f *Family) Update(d sensor.Descriptor, v *value.Value, now time.Time, interval time.Duration) error {
	if v == nil {
		return sensor.ErrInvalidArgument
	}
	if f.gate.Due(now, interval) {
		if err := f.refresh(); err != nil {
			return err
		}
		f.gate.Mark(now)
	}

	switch d.Field {
	case fieldCount:
		return v.SetUint(uint64(f.count))
	case fieldPercent:
		return v.SetFloat(f.snap.percent)
	case fieldLoad1:
		return v.SetFloat(f.snap.load.Load1)
	case fieldLoad5:
		return v.SetFloat(f.snap.load.Load5)
	case fieldLoad15:
		return v.SetFloat(f.snap.load.Load15)
	case fieldUptime:
		return v.SetUint(f.snap.uptime)
	case fieldModel:
		return v.SetText(f.model)
	case fieldFreqMHz:
		return v.SetFloat(f.freqMHz)
	}
	return fmt.Errorf("cpu: unknown field %d: %w", d.Field, sensor.ErrInvalidArgument)
}

func (f *Family) refresh() error {
	percents, err := cpuPercent(0, false)
	if err != nil {
		return fmt.Errorf("read cpu utilization: %w", err)
	}
	if len(percents) > 0 {
		f.snap.percent = percents[0]
	}

	if f.hasLoad {
		avg, err := loadAvg()
		if err != nil {
			return fmt.Errorf("read load averages: %w", err)
		}
		f.snap.load = avg
	}

	uptime, err := hostUptime()
	if err != nil {
		return fmt.Errorf("read uptime: %w", err)
	}
	f.snap.uptime = uptime
	return nil
}
