package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
families:
  enabled: [mem, sim]
  sim_tick: 250ms
watches:
  - metric: mem.used
    interval: 500ms
  - sim.counter
export:
  prometheus:
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.FamilyEnabled("mem"))
	require.True(t, cfg.FamilyEnabled("sim"))
	require.False(t, cfg.FamilyEnabled("cpu"))
	require.Equal(t, 250*time.Millisecond, cfg.Families.SimTick)

	require.Len(t, cfg.Watches, 2)
	require.Equal(t, "mem.used", cfg.Watches[0].Metric)
	require.Equal(t, 500*time.Millisecond, cfg.Watches[0].Interval)

	// Short form gets the default interval.
	require.Equal(t, "sim.counter", cfg.Watches[1].Metric)
	require.Equal(t, DefaultWatchInterval, cfg.Watches[1].Interval)

	require.NotNil(t, cfg.Export.Prometheus)
	require.Equal(t, DefaultPrometheusPort, cfg.Export.Prometheus.Port)
	require.Equal(t, DefaultPrometheusPath, cfg.Export.Prometheus.Path)
}

func TestLoadRejectsUnknownFamily(t *testing.T) {
	path := writeConfig(t, `
families:
  enabled: [gpu]
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown family")
}

func TestLoadRejectsEmptyMetric(t *testing.T) {
	path := writeConfig(t, `
watches:
  - metric: ""
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	for _, name := range KnownFamilies {
		require.True(t, cfg.FamilyEnabled(name))
	}
	require.Len(t, cfg.Watches, 1)
	require.Equal(t, "*", cfg.Watches[0].Metric)
	require.Nil(t, cfg.Export.Prometheus)
}
