// Package mem is the memory metric family, backed by gopsutil virtual
// memory and swap statistics.
package mem

import (
	"fmt"
	"log/slog"
	"time"

	gmem "github.com/shirou/gopsutil/v4/mem"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
)

// Swappable for tests.
var (
	virtualMemory = gmem.VirtualMemory
	swapMemory    = gmem.SwapMemory
)

const (
	fieldTotal = iota
	fieldAvailable
	fieldUsed
	fieldUsedPercent
	fieldFree
	fieldSwapTotal
	fieldSwapUsed
	fieldSwapPercent
)

type snapshot struct {
	virt *gmem.VirtualMemoryStat
	swap *gmem.SwapMemoryStat
}

// Family collects memory metrics. All fields derive from one snapshot
// refreshed as a unit.
type Family struct {
	logger *slog.Logger
	gate   sensor.RefreshGate
	snap   snapshot
}

// New creates the memory family.
func New(logger *slog.Logger) *Family {
	return &Family{logger: logger}
}

// Name implements sensor.Family.
func (f *Family) Name() string { return "mem" }

// Init probes memory statistics availability.
func (f *Family) Init() error {
	if _, err := virtualMemory(); err != nil {
		return fmt.Errorf("%w: virtual memory probe: %v", sensor.ErrNotSupported, err)
	}
	return nil
}

// Close implements sensor.Family. The snapshot holds no OS resources.
func (f *Family) Close() error { return nil }

// Descriptors implements sensor.Family.
func (f *Family) Descriptors() []sensor.Descriptor {
	return []sensor.Descriptor{
		{Family: "mem", Field: fieldTotal, Label: "total", Kind: value.Uint64},
		{Family: "mem", Field: fieldAvailable, Label: "available", Kind: value.Uint64},
		{Family: "mem", Field: fieldUsed, Label: "used", Kind: value.Uint64},
		{Family: "mem", Field: fieldUsedPercent, Label: "used_percent", Kind: value.Float64},
		{Family: "mem", Field: fieldFree, Label: "free", Kind: value.Uint64},
		{Family: "mem", Field: fieldSwapTotal, Label: "swap_total", Kind: value.Uint64},
		{Family: "mem", Field: fieldSwapUsed, Label: "swap_used", Kind: value.Uint64},
		{Family: "mem", Field: fieldSwapPercent, Label: "swap_percent", Kind: value.Float64},
	}
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
		return v.SetUint(f.snap.virt.Total)
	case fieldAvailable:
		return v.SetUint(f.snap.virt.Available)
	case fieldUsed:
		return v.SetUint(f.snap.virt.Used)
	case fieldUsedPercent:
		return v.SetFloat(f.snap.virt.UsedPercent)
	case fieldFree:
		return v.SetUint(f.snap.virt.Free)
	case fieldSwapTotal:
		return v.SetUint(f.snap.swap.Total)
	case fieldSwapUsed:
		return v.SetUint(f.snap.swap.Used)
	case fieldSwapPercent:
		return v.SetFloat(f.snap.swap.UsedPercent)
	}
	return fmt.Errorf("mem: unknown field %d: %w", d.Field, sensor.ErrInvalidArgument)
}

func (f *Family) refresh() error {
	virt, err := virtualMemory()
	if err != nil {
		return fmt.Errorf("read virtual memory: %w", err)
	}
	swap, err := swapMemory()
	if err != nil {
		return fmt.Errorf("read swap memory: %w", err)
	}
	f.snap.virt = virt
	f.snap.swap = swap
	return nil
}
