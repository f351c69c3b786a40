package sensor

import (
	"errors"
	"fmt"
	"log/slog"
)

// Registry owns the set of live family instances and a memoized flat list of
// their descriptors.
type Registry struct {
	logger   *slog.Logger
	families []Family
	cache    []Descriptor
}

// NewRegistry initializes every given family. Families reporting
// ErrNotSupported are skipped at info level; other init failures are logged
// and the instance discarded. Partial initialization is not fatal.
func NewRegistry(logger *slog.Logger, families ...Family) *Registry {
	r := &Registry{logger: logger}

	for _, f := range families {
		if err := f.Init(); err != nil {
			if errors.Is(err, ErrNotSupported) {
				logger.Info("family not supported on this platform", "family", f.Name())
			} else {
				logger.Error("family init failed", "family", f.Name(), "error", err)
			}
			// Best effort: a partially initialized family may still hold
			// resources.
			_ = f.Close()
			continue
		}
		r.families = append(r.families, f)
		logger.Debug("family initialized", "family", f.Name())
	}

	return r
}

// Families returns the live family instances.
func (r *Registry) Families() []Family {
	return r.families
}

// Lookup returns the live family with the given name.
func (r *Registry) Lookup(name string) (Family, bool) {
	for _, f := range r.families {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Descriptors returns the concatenated descriptor lists of all live
// families. The result is memoized until Invalidate is called.
func (r *Registry) Descriptors() []Descriptor {
	if r.cache == nil {
		for _, f := range r.families {
			r.cache = append(r.cache, f.Descriptors()...)
		}
	}
	return r.cache
}

// Invalidate drops the memoized descriptor list.
func (r *Registry) Invalidate() {
	r.cache = nil
}

// Close invalidates the descriptor cache and frees every family. Safe on a
// registry whose initialization partially failed.
func (r *Registry) Close() error {
	r.Invalidate()

	var errs []error
	for _, f := range r.families {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close family %s: %w", f.Name(), err))
		}
	}
	r.families = nil
	return errors.Join(errs...)
}
