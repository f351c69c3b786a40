// Package smc is the hardware-sensor metric family: one temperature metric
// per discovered sensor key, backed by gopsutil sensors. Keys discovered at
// init define the descriptor set; readings are matched back by key at
// refresh time through a small synchronized cache, since the OS does not
// guarantee a stable ordering between reads.
package smc

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
)

// Swappable for tests.
var temperatures = sensors.SensorsTemperatures

type snapshot struct {
	stats []sensors.TemperatureStat
}

// Family collects hardware temperature metrics.
type Family struct {
	logger *slog.Logger
	gate   sensor.RefreshGate
	snap   snapshot
	keys   []string
	cache  keyCache
}

// New creates the hardware-sensor family.
func New(logger *slog.Logger) *Family {
	return &Family{logger: logger}
}

// Name implements sensor.Family.
func (f *Family) Name() string { return "smc" }

// Init discovers the sensor keys this system exposes.
func (f *Family) Init() error {
	stats, err := temperatures()
	if err != nil {
		return fmt.Errorf("%w: temperature probe: %v", sensor.ErrNotSupported, err)
	}
	if len(stats) == 0 {
		return fmt.Errorf("%w: no temperature sensors", sensor.ErrNotSupported)
	}

	seen := make(map[string]bool, len(stats))
	for _, s := range stats {
		if s.SensorKey == "" || seen[s.SensorKey] {
			continue
		}
		seen[s.SensorKey] = true
		f.keys = append(f.keys, s.SensorKey)
	}
	f.snap.stats = stats
	return nil
}

// Close implements sensor.Family.
func (f *Family) Close() error { return nil }

// Descriptors implements sensor.Family. The field selector indexes the key
// table, not the reading slice, so reordered OS output cannot dangle.
func (f *Family) Descriptors() []sensor.Descriptor {
	descs := make([]sensor.Descriptor, 0, len(f.keys))
	for i, key := range f.keys {
		descs = append(descs, sensor.Descriptor{
			Family: "smc",
			Field:  i,
			Label:  sanitizeLabel(key),
			Kind:   value.Float64,
		})
	}
	return descs
}

// Update implements sensor.Family.
func (f *Family) Update(d sensor.Descriptor, v *value.Value, now time.Time, interval time.Duration) error {
	if v == nil {
		return sensor.ErrInvalidArgument
	}
	if d.Field < 0 || d.Field >= len(f.keys) {
		return fmt.Errorf("smc: unknown field %d: %w", d.Field, sensor.ErrInvalidArgument)
	}

	if f.gate.Due(now, interval) {
		stats, err := temperatures()
		if err != nil {
			return fmt.Errorf("read temperatures: %w", err)
		}
		f.snap.stats = stats
		f.gate.Mark(now)
	}

	key := f.keys[d.Field]
	idx, ok := f.lookup(key)
	if !ok {
		return fmt.Errorf("smc: sensor %q disappeared: %w", key, sensor.ErrNotSupported)
	}
	return v.SetFloat(f.snap.stats[idx].Temperature)
}

// lookup resolves a sensor key to its position in the current snapshot,
// going through the key cache and falling back to a scan on miss or on a
// stale hit.
func (f *Family) lookup(key string) (int, bool) {
	if idx, ok := f.cache.get(key); ok {
		if idx < len(f.snap.stats) && f.snap.stats[idx].SensorKey == key {
			return idx, true
		}
	}
	for i, s := range f.snap.stats {
		if s.SensorKey == key {
			f.cache.put(key, i)
			return i, true
		}
	}
	return 0, false
}

func sanitizeLabel(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
