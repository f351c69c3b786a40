// Package watch binds metric descriptors to sampling intervals and drives
// periodic re-sampling with change detection. All sampling happens
// synchronously inside Run, driven by an external caller-supplied loop;
// there is no internal timer or background goroutine.
package watch

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
)

// Outcome reports the result of one binding check.
type Outcome int

const (
	// Unchanged means the binding was not due, or was refreshed and the
	// value did not move.
	Unchanged Outcome = iota

	// Updated means the binding was refreshed and the value changed.
	Updated
)

// Binding pairs one descriptor with a requested sampling interval and a live
// value of the descriptor's kind. The value's kind never changes after
// creation; only the payload mutates on refresh.
type Binding struct {
	Desc     sensor.Descriptor
	Interval time.Duration
	Value    *value.Value

	last time.Time
}

// due returns the binding's next-due instant.
func (b *Binding) due() time.Time {
	return b.last.Add(b.Interval)
}

// List is the watch list: the set of bindings plus the registry they read
// through. Sampling itself stays single-threaded per the driver contract,
// but readers on other goroutines (the export bridge) observe payloads
// through Snapshot; the mutex covers that boundary.
type List struct {
	logger   *slog.Logger
	registry *sensor.Registry

	mu       sync.Mutex
	bindings []*Binding
}

// Sample is a point-in-time copy of one binding, safe to read after the
// binding itself has moved on.
type Sample struct {
	Desc  sensor.Descriptor
	Value *value.Value
}

// NewList creates an empty watch list over the given registry.
func NewList(logger *slog.Logger, registry *sensor.Registry) *List {
	return &List{logger: logger, registry: registry}
}

// Add creates one binding for the given descriptor. The binding's value is
// built from the descriptor's declared kind and its last-refresh timestamp
// is unset, so it is due on the first pass.
func (l *List) Add(d sensor.Descriptor, interval time.Duration) (*Binding, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("watch %s: %w: interval must be positive", d.Name(), sensor.ErrInvalidArgument)
	}
	if _, ok := l.registry.Lookup(d.Family); !ok {
		return nil, fmt.Errorf("watch %s: unknown family %q", d.Name(), d.Family)
	}

	b := &Binding{
		Desc:     d,
		Interval: interval,
		Value:    value.New(d.Kind),
	}

	l.mu.Lock()
	l.bindings = append(l.bindings, b)
	l.mu.Unlock()
	return b, nil
}

// AddAll creates one binding per registered descriptor (the wildcard form).
func (l *List) AddAll(interval time.Duration) ([]*Binding, error) {
	var added []*Binding
	for _, d := range l.registry.Descriptors() {
		b, err := l.Add(d, interval)
		if err != nil {
			return added, err
		}
		added = append(added, b)
	}
	return added, nil
}

// Bindings returns all current bindings.
func (l *List) Bindings() []*Binding {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Binding(nil), l.bindings...)
}

// Snapshot returns a cloned copy of every binding's descriptor and payload.
// This is the only read path other goroutines may use while the driver loop
// is sampling.
func (l *List) Snapshot() []Sample {
	l.mu.Lock()
	defer l.mu.Unlock()

	samples := make([]Sample, 0, len(l.bindings))
	for _, b := range l.bindings {
		samples = append(samples, Sample{Desc: b.Desc, Value: b.Value.Clone()})
	}
	return samples
}

// Clear drops all bindings. Called before family teardown.
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bindings = nil
}

// Check applies the single-binding update rule at the given instant. Before
// the due instant it reports Unchanged without touching the family. Once
// due, the owning family refreshes the backing snapshot field, the binding's
// last-refresh timestamp is stamped, and the previous and new payloads are
// compared. A failed family update leaves the stored value and timestamp
// untouched.
func (l *List) Check(b *Binding, now time.Time) (Outcome, error) {
	if b == nil {
		return Unchanged, sensor.ErrInvalidArgument
	}
	if !b.last.IsZero() && now.Before(b.due()) {
		return Unchanged, nil
	}

	f, ok := l.registry.Lookup(b.Desc.Family)
	if !ok {
		return Unchanged, fmt.Errorf("watch %s: unknown family %q", b.Desc.Name(), b.Desc.Family)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev := b.Value.Clone()
	if err := f.Update(b.Desc, b.Value, now, b.Interval); err != nil {
		return Unchanged, fmt.Errorf("update %s: %w", b.Desc.Name(), err)
	}
	b.last = now

	if b.Value.Equal(prev) {
		return Unchanged, nil
	}
	return Updated, nil
}

// Run applies Check to every binding at the given instant (time.Now when
// zero) and returns the bindings that reported Updated. Per-binding errors
// are logged and excluded; they never abort the pass.
func (l *List) Run(now time.Time) []*Binding {
	if now.IsZero() {
		now = time.Now()
	}

	var updated []*Binding
	for _, b := range l.Bindings() {
		outcome, err := l.Check(b, now)
		if err != nil {
			l.logger.Error("watch update failed", "metric", b.Desc.Name(), "error", err)
			continue
		}
		if outcome == Updated {
			updated = append(updated, b)
		}
	}
	return updated
}

// Tick returns the greatest common divisor of all bound intervals at
// millisecond granularity: a driver loop polling at this period hits every
// binding's due instants without wasted wakeups. Advisory only; Check's own
// due-time test stays authoritative. Zero when the list is empty.
func (l *List) Tick() time.Duration {
	var g int64
	for _, b := range l.Bindings() {
		ms := b.Interval.Milliseconds()
		if ms <= 0 {
			ms = 1
		}
		g = gcd(g, ms)
	}
	return time.Duration(g) * time.Millisecond
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
