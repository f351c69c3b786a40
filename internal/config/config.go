// Package config holds the YAML configuration: which families to register,
// which metrics to watch at which intervals, and how to expose them.
package config

import (
	"fmt"
	"slices"
	"time"

	"go.yaml.in/yaml/v4"
)

const (
	// DefaultWatchInterval applies to watch entries given in short form.
	DefaultWatchInterval = 1 * time.Second

	// Prometheus defaults
	DefaultPrometheusPort = 9090
	DefaultPrometheusPath = "/metrics"
)

// KnownFamilies lists every family name the application can register.
var KnownFamilies = []string{"cpu", "mem", "disk", "net", "battery", "smc", "sim"}

// Config holds the complete application configuration.
type Config struct {
	Families FamiliesConfig `yaml:"families"`
	Watches  []WatchConfig  `yaml:"watches"`
	Export   ExportConfig   `yaml:"export"`
}

// FamiliesConfig selects the metric families to register.
type FamiliesConfig struct {
	// Enabled names the families to register; empty means all of them.
	// Families that probe as unsupported are skipped either way.
	Enabled []string `yaml:"enabled,omitempty"`

	// SimTick is the generation interval of the synthetic family.
	SimTick time.Duration `yaml:"sim_tick,omitempty"`
}

// WatchConfig binds a metric pattern to a sampling interval. The pattern is
// a full metric name ("mem.used"), a family wildcard ("mem.*") or the global
// wildcard ("*").
type WatchConfig struct {
	Metric   string
	Interval time.Duration
}

// UnmarshalYAML handles both the short string form ("mem.used") and the full
// object form (metric + interval).
func (w *WatchConfig) UnmarshalYAML(node *yaml.Node) error {
	var short string
	if err := node.Decode(&short); err == nil {
		w.Metric = short
		w.Interval = DefaultWatchInterval
		return nil
	}

	type watchConfig struct {
		Metric   string        `yaml:"metric"`
		Interval time.Duration `yaml:"interval"`
	}
	var full watchConfig
	if err := node.Decode(&full); err != nil {
		return err
	}
	w.Metric = full.Metric
	w.Interval = full.Interval
	return nil
}

// ExportConfig defines how sampled values are exposed.
type ExportConfig struct {
	Prometheus *PrometheusExportConfig `yaml:"prometheus,omitempty"`
}

// PrometheusExportConfig defines the pull endpoint settings.
type PrometheusExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Validate applies defaults and rejects inconsistent settings.
func (c *Config) Validate() error {
	for _, name := range c.Families.Enabled {
		if !slices.Contains(KnownFamilies, name) {
			return fmt.Errorf("unknown family %q", name)
		}
	}

	if len(c.Watches) == 0 {
		c.Watches = []WatchConfig{{Metric: "*", Interval: DefaultWatchInterval}}
	}
	for i := range c.Watches {
		w := &c.Watches[i]
		if w.Metric == "" {
			return fmt.Errorf("watch %d: metric must not be empty", i)
		}
		if w.Interval == 0 {
			w.Interval = DefaultWatchInterval
		}
		if w.Interval < 0 {
			return fmt.Errorf("watch %q: interval must be positive", w.Metric)
		}
	}

	if p := c.Export.Prometheus; p != nil && p.Enabled {
		if p.Port == 0 {
			p.Port = DefaultPrometheusPort
		}
		if p.Path == "" {
			p.Path = DefaultPrometheusPath
		}
	}

	return nil
}

// FamilyEnabled reports whether the named family should be registered.
func (c *Config) FamilyEnabled(name string) bool {
	if len(c.Families.Enabled) == 0 {
		return true
	}
	return slices.Contains(c.Families.Enabled, name)
}

// Default returns the configuration used when no file is given: every
// family, everything watched at the default interval, no export.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		panic(err) // defaults never fail validation
	}
	return cfg
}
