//go:build !linux

package battery

import (
	"fmt"

	"github.com/neox5/sensorbox/internal/sensor"
)

// stubBackend reports not supported on platforms without a battery reader.
type stubBackend struct{}

func newBackend() backend {
	return stubBackend{}
}

func (stubBackend) probe() error {
	return fmt.Errorf("%w: no battery backend for this platform", sensor.ErrNotSupported)
}

func (stubBackend) read(*snapshot) error {
	return fmt.Errorf("%w: no battery backend for this platform", sensor.ErrNotSupported)
}
