// Package app wires the process-wide aggregate: family registry, watch list
// and optional exporter, built from configuration and torn down in
// dependency order.
package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/neox5/sensorbox/internal/config"
	"github.com/neox5/sensorbox/internal/export"
	"github.com/neox5/sensorbox/internal/family/battery"
	"github.com/neox5/sensorbox/internal/family/cpu"
	"github.com/neox5/sensorbox/internal/family/disk"
	"github.com/neox5/sensorbox/internal/family/mem"
	familynet "github.com/neox5/sensorbox/internal/family/net"
	"github.com/neox5/sensorbox/internal/family/sim"
	"github.com/neox5/sensorbox/internal/family/smc"
	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/watch"
)

// App holds initialized application components.
type App struct {
	Config             *config.Config
	Registry           *sensor.Registry
	Watches            *watch.List
	PrometheusExporter *export.PrometheusExporter

	logger *slog.Logger
}

// New initializes the application from configuration: registers the enabled
// families, creates the configured watch bindings and, when enabled, the
// Prometheus exporter.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	var families []sensor.Family
	for _, name := range config.KnownFamilies {
		if !cfg.FamilyEnabled(name) {
			continue
		}
		switch name {
		case "cpu":
			families = append(families, cpu.New(logger))
		case "mem":
			families = append(families, mem.New(logger))
		case "disk":
			families = append(families, disk.New(logger))
		case "net":
			families = append(families, familynet.New(logger))
		case "battery":
			families = append(families, battery.New(logger))
		case "smc":
			families = append(families, smc.New(logger))
		case "sim":
			families = append(families, sim.New(logger, cfg.Families.SimTick))
		}
	}

	registry := sensor.NewRegistry(logger, families...)
	watches := watch.NewList(logger, registry)

	for _, wc := range cfg.Watches {
		matched := matchDescriptors(registry.Descriptors(), wc.Metric)
		if len(matched) == 0 {
			// Not fatal: the pattern may name a family that probed as
			// unsupported on this platform.
			logger.Warn("watch pattern matched no metrics", "pattern", wc.Metric)
			continue
		}
		for _, d := range matched {
			if _, err := watches.Add(d, wc.Interval); err != nil {
				return nil, fmt.Errorf("failed to add watch: %w", err)
			}
		}
	}

	a := &App{
		Config:   cfg,
		Registry: registry,
		Watches:  watches,
		logger:   logger,
	}

	if p := cfg.Export.Prometheus; p != nil && p.Enabled {
		a.PrometheusExporter = export.NewPrometheusExporter(p.Port, p.Path, watches)
	}

	return a, nil
}

// Close tears the aggregate down in dependency order: watches and the
// descriptor cache first, then the families. Safe when initialization was
// partial.
func (a *App) Close() error {
	a.Watches.Clear()
	return a.Registry.Close()
}

// matchDescriptors resolves a watch pattern against the descriptor list:
// "*" matches everything, "fam.*" a whole family, anything else one metric.
func matchDescriptors(descs []sensor.Descriptor, pattern string) []sensor.Descriptor {
	var matched []sensor.Descriptor
	for _, d := range descs {
		switch {
		case pattern == "*":
			matched = append(matched, d)
		case strings.HasSuffix(pattern, ".*"):
			if d.Family == strings.TrimSuffix(pattern, ".*") {
				matched = append(matched, d)
			}
		case d.Name() == pattern:
			matched = append(matched, d)
		}
	}
	return matched
}
