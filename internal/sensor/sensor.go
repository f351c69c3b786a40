// Package sensor defines the metric-family plugin contract and the registry
// that owns family instances and their declared descriptors.
package sensor

import (
	"errors"
	"time"

	"github.com/neox5/sensorbox/internal/value"
)

var (
	// ErrNotSupported marks a family or field that is absent on this
	// platform. Expected and non-fatal; the registry logs it at info level.
	ErrNotSupported = errors.New("sensor: not supported")

	// ErrInvalidArgument marks an absent required argument.
	ErrInvalidArgument = errors.New("sensor: invalid argument")
)

// Descriptor identifies one measurable quantity of a family. The field is an
// index into the owning family's snapshot, resolved at refresh time, so a
// descriptor never dangles into reallocated storage. Immutable once listed.
type Descriptor struct {
	Family string
	Field  int
	Label  string
	Kind   value.Kind
}

// Name returns the fully qualified metric name ("family.label").
func (d Descriptor) Name() string {
	return d.Family + "." + d.Label
}

// Family is the plugin contract implemented by each metric family. A family
// exclusively owns one private snapshot shared by all of its metrics, so one
// refresh pass can update many descriptors at once.
type Family interface {
	// Name returns the family identifier ("cpu", "mem", ...).
	Name() string

	// Init allocates private state and probes platform availability.
	// Returning ErrNotSupported is an expected skip, not a failure.
	Init() error

	// Close releases private state. Safe to call after a failed or partial
	// Init.
	Close() error

	// Descriptors declares this family's metrics. Order carries no guarantee.
	Descriptors() []Descriptor

	// Update refreshes the snapshot field backing d as needed and stores the
	// re-derived reading into v. interval is the requesting watch's sampling
	// interval; a family whose snapshot is younger than that re-derives from
	// the current snapshot instead of re-reading the OS.
	Update(d Descriptor, v *value.Value, now time.Time, interval time.Duration) error
}

// Notifier is an optional capability for push-based families. Not exercised
// by the scheduler.
type Notifier interface {
	Notify(d Descriptor) error
}

// Writer is an optional capability for externally writable sensors. Not
// exercised by the scheduler.
type Writer interface {
	Write(d Descriptor, v *value.Value) error
}
