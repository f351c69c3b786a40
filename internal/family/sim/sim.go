// Package sim is a synthetic metric family backed by simv-generated values.
// It needs no hardware access, which makes it the family of choice for
// exercising watch schedules and export wiring on machines where the real
// collectors are unavailable.
package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/neox5/simv/clock"
	"github.com/neox5/simv/source"
	"github.com/neox5/simv/transform"
	simval "github.com/neox5/simv/value"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
)

// DefaultTick is the generation interval when none is configured.
const DefaultTick = 100 * time.Millisecond

const (
	fieldGauge = iota
	fieldCounter
)

type snapshot struct {
	gauge   int
	counter int
}

// Family produces one bounded random gauge and one monotonically
// accumulating counter.
type Family struct {
	logger *slog.Logger
	gate   sensor.RefreshGate
	snap   snapshot
	tick   time.Duration

	clock   clock.Clock
	gauge   *simval.Value[int]
	counter *simval.Value[int]
}

// New creates the synthetic family generating at the given tick.
func New(logger *slog.Logger, tick time.Duration) *Family {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Family{logger: logger, tick: tick}
}

// Name implements sensor.Family.
func (f *Family) Name() string { return "sim" }

// Init builds the generation graph and starts its clock.
func (f *Family) Init() error {
	clk := clock.NewPeriodicClock(f.tick)

	f.gauge = simval.New(source.NewRandomIntSource(clk, 0, 100))
	f.counter = simval.New(source.NewRandomIntSource(clk, 1, 10)).
		AddTransform(transform.NewAccumulate[int]())

	f.clock = clk
	f.clock.Start()
	return nil
}

// Close stops the generation clock. Safe after a failed Init.
func (f *Family) Close() error {
	if f.clock != nil {
		f.clock.Stop()
		f.clock = nil
	}
	return nil
}

// Descriptors implements sensor.Family.
func (f *Family) Descriptors() []sensor.Descriptor {
	return []sensor.Descriptor{
		{Family: "sim", Field: fieldGauge, Label: "gauge", Kind: value.Int64},
		{Family: "sim", Field: fieldCounter, Label: "counter", Kind: value.Int64},
	}
}

// Update implements sensor.Family.
func (f *Family) Update(d sensor.Descriptor, v *value.Value, now time.Time, interval time.Duration) error {
	if v == nil {
		return sensor.ErrInvalidArgument
	}
	if f.clock == nil {
		return fmt.Errorf("sim: not initialized: %w", sensor.ErrInvalidArgument)
	}
	if f.gate.Due(now, interval) {
		f.snap.gauge = f.gauge.Value()
		f.snap.counter = f.counter.Value()
		f.gate.Mark(now)
	}

	switch d.Field {
	case fieldGauge:
		return v.SetInt(int64(f.snap.gauge))
	case fieldCounter:
		return v.SetInt(int64(f.snap.counter))
	}
	return fmt.Errorf("sim: unknown field %d: %w", d.Field, sensor.ErrInvalidArgument)
}
