// Package disk is the disk metric family: root filesystem usage plus
// cumulative I/O counters summed over all physical devices.
package disk

import (
	"fmt"
	"log/slog"
	"time"

	gdisk "github.com/shirou/gopsutil/v4/disk"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
)

// rootPath is the filesystem the usage fields describe.
const rootPath = "/"

// Swappable for tests.
var (
	diskUsage      = gdisk.Usage
	diskIOCounters = gdisk.IOCounters
)

const (
	fieldTotal = iota
	fieldFree
	fieldUsed
	fieldUsedPercent
	fieldReadBytes
	fieldWriteBytes
	fieldReads
	fieldWrites
)

type snapshot struct {
	usage *gdisk.UsageStat

	readBytes  uint64
	writeBytes uint64
	reads      uint64
	writes     uint64
}

// Family collects disk metrics.
type Family struct {
	logger *slog.Logger
	gate   sensor.RefreshGate
	snap   snapshot
	hasIO  bool
}

// New creates the disk family.
func New(logger *slog.Logger) *Family {
	return &Family{logger: logger}
}

// Name implements sensor.Family.
func (f *Family) Name() string { return "disk" }

// Init probes filesystem usage and I/O counter availability.
func (f *Family) Init() error {
	if _, err := diskUsage(rootPath); err != nil {
		return fmt.Errorf("%w: disk usage probe: %v", sensor.ErrNotSupported, err)
	}
	if _, err := diskIOCounters(); err == nil {
		f.hasIO = true
	} else {
		f.logger.Info("disk io counters unavailable", "error", err)
	}
	return nil
}

// Close implements sensor.Family.
func (f *Family) Close() error { return nil }

// Descriptors implements sensor.Family.
func (f *Family) Descriptors() []sensor.Descriptor {
	descs := []sensor.Descriptor{
		{Family: "disk", Field: fieldTotal, Label: "total", Kind: value.Uint64},
		{Family: "disk", Field: fieldFree, Label: "free", Kind: value.Uint64},
		{Family: "disk", Field: fieldUsed, Label: "used", Kind: value.Uint64},
		{Family: "disk", Field: fieldUsedPercent, Label: "used_percent", Kind: value.Float64},
	}
	if f.hasIO {
		descs = append(descs,
			sensor.Descriptor{Family: "disk", Field: fieldReadBytes, Label: "read_bytes", Kind: value.Uint64},
			sensor.Descriptor{Family: "disk", Field: fieldWriteBytes, Label: "write_bytes", Kind: value.Uint64},
			sensor.Descriptor{Family: "disk", Field: fieldReads, Label: "reads", Kind: value.Uint64},
			sensor.Descriptor{Family: "disk", Field: fieldWrites, Label: "writes", Kind: value.Uint64},
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
	case fieldTotal:
		return v.SetUint(f.snap.usage.Total)
	case fieldFree:
		return v.SetUint(f.snap.usage.Free)
	case fieldUsed:
		return v.SetUint(f.snap.usage.Used)
	case fieldUsedPercent:
		return v.SetFloat(f.snap.usage.UsedPercent)
	case fieldReadBytes:
		return v.SetUint(f.snap.readBytes)
	case fieldWriteBytes:
		return v.SetUint(f.snap.writeBytes)
	case fieldReads:
		return v.SetUint(f.snap.reads)
	case fieldWrites:
		return v.SetUint(f.snap.writes)
	}
	return fmt.Errorf("disk: unknown field %d: %w", d.Field, sensor.ErrInvalidArgument)
}

func (f *Family) refresh() error {
	usage, err := diskUsage(rootPath)
	if err != nil {
		return fmt.Errorf("read disk usage: %w", err)
	}
	f.snap.usage = usage

	if f.hasIO {
		counters, err := diskIOCounters()
		if err != nil {
			return fmt.Errorf("read disk io counters: %w", err)
		}
		f.snap.readBytes, f.snap.writeBytes = 0, 0
		f.snap.reads, f.snap.writes = 0, 0
		for _, c := range counters {
			f.snap.readBytes += c.ReadBytes
			f.snap.writeBytes += c.WriteBytes
			f.snap.reads += c.ReadCount
			f.snap.writes += c.WriteCount
		}
	}
	return nil
}
