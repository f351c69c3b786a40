// Package battery is the battery metric family. The platform backend is
// swapped per target OS; only linux has one today, every other platform
// reports not supported at init.
package battery

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
)

// backend is the per-OS collection contract.
type backend interface {
	// probe reports whether a battery is present on this system.
	probe() error

	// read populates the shared snapshot.
	read(snap *snapshot) error
}

const (
	fieldPercent = iota
	fieldStatus
	fieldEnergyNow
	fieldEnergyFull
	fieldPowerNow
)

type snapshot struct {
	percent    float64
	status     string
	energyNow  uint64
	energyFull uint64
	powerNow   uint64
}

// Family collects battery metrics.
type Family struct {
	logger  *slog.Logger
	gate    sensor.RefreshGate
	snap    snapshot
	backend backend
}

// New creates the battery family with the platform backend.
func New(logger *slog.Logger) *Family {
	return &Family{logger: logger, backend: newBackend()}
}

// Name implements sensor.Family.
func (f *Family) Name() string { return "battery" }

// Init probes for a battery.
func (f *Family) Init() error {
	return f.backend.probe()
}

// Close implements sensor.Family.
func (f *Family) Close() error { return nil }

// Descriptors implements sensor.Family.
func (f *Family) Descriptors() []sensor.Descriptor {
	return []sensor.Descriptor{
		{Family: "battery", Field: fieldPercent, Label: "percent", Kind: value.Float64},
		{Family: "battery", Field: fieldStatus, Label: "status", Kind: value.Text},
		{Family: "battery", Field: fieldEnergyNow, Label: "energy_now", Kind: value.Uint64},
		{Family: "battery", Field: fieldEnergyFull, Label: "energy_full", Kind: value.Uint64},
		{Family: "battery", Field: fieldPowerNow, Label: "power_now", Kind: value.Uint64},
	}
}

// Update implements sensor.Family.
func (f *Family) Update(d sensor.Descriptor, v *value.Value, now time.Time, interval time.Duration) error {
	if v == nil {
		return sensor.ErrInvalidArgument
	}
	if f.gate.Due(now, interval) {
		if err := f.backend.read(&f.snap); err != nil {
			return fmt.Errorf("read battery: %w", err)
		}
		f.gate.Mark(now)
	}

	switch d.Field {
	case fieldPercent:
		return v.SetFloat(f.snap.percent)
	case fieldStatus:
		return v.SetText(f.snap.status)
	case fieldEnergyNow:
		return v.SetUint(f.snap.energyNow)
	case fieldEnergyFull:
		return v.SetUint(f.snap.energyFull)
	case fieldPowerNow:
		return v.SetUint(f.snap.powerNow)
	}
	return fmt.Errorf("battery: unknown field %d: %w", d.Field, sensor.ErrInvalidArgument)
}
