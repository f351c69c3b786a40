//go:build linux

package battery

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/neox5/sensorbox/internal/sensor"
)

// powerSupplyRoot is a var so tests can point the backend at a fixture tree.
var powerSupplyRoot = "/sys/class/power_supply"

// sysfsBackend reads the first battery-class power supply under sysfs.
type sysfsBackend struct {
	dir string
}

func newBackend() backend {
	return &sysfsBackend{}
}

func (b *sysfsBackend) probe() error {
	entries, err := os.ReadDir(powerSupplyRoot)
	if err != nil {
		return fmt.Errorf("%w: %v", sensor.ErrNotSupported, err)
	}
	for _, e := range entries {
		dir := filepath.Join(powerSupplyRoot, e.Name())
		kind, err := readString(dir, "type")
		if err == nil && kind == "Battery" {
			b.dir = dir
			return nil
		}
	}
	return fmt.Errorf("%w: no battery-class power supply", sensor.ErrNotSupported)
}

func (b *sysfsBackend) read(snap *snapshot) error {
	capacity, err := readUint(b.dir, "capacity")
	if err != nil {
		return err
	}
	status, err := readString(b.dir, "status")
	if err != nil {
		return err
	}

	snap.percent = float64(capacity)
	snap.status = status

	// Energy and power files are absent on charge-counter batteries; their
	// fields stay zero there.
	snap.energyNow, _ = readUint(b.dir, "energy_now")
	snap.energyFull, _ = readUint(b.dir, "energy_full")
	snap.powerNow, _ = readUint(b.dir, "power_now")
	return nil
}

func readString(dir, name string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func readUint(dir, name string) (uint64, error) {
	s, err := readString(dir, name)
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return u, nil
}
