// Package export bridges the watch list to Prometheus. The collector reads
// the last sampled payloads; it never triggers sampling itself, that stays
// with the driver loop.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/watch"
)

const (
	scrapesTotalName   = "sensorbox_prometheus_scrapes_total"
	scrapeDurationName = "sensorbox_prometheus_scrape_duration_seconds"
)

// collector implements prometheus.Collector over the watch list. It never
// holds binding pointers: each scrape reads a cloned snapshot, so scrapes
// and the driver loop's sampling stay on opposite sides of the list's lock.
type collector struct {
	list  *watch.List
	descs map[string]*prometheus.Desc
}

// newCollector builds one gauge per numeric binding. When several bindings
// watch the same descriptor at different intervals, the first one wins; the
// payloads only differ in staleness.
func newCollector(list *watch.List) *collector {
	descs := make(map[string]*prometheus.Desc)

	for _, b := range list.Bindings() {
		if !b.Desc.Kind.Numeric() {
			continue
		}
		name := metricName(b.Desc)
		if _, ok := descs[name]; ok {
			continue
		}

		descs[name] = prometheus.NewDesc(
			name,
			fmt.Sprintf("Last sampled value of %s", b.Desc.Name()),
			nil,
			nil,
		)
		slog.Info("registered prometheus metric", "name", name, "kind", b.Desc.Kind.String())
	}

	return &collector{list: list, descs: descs}
}

// metricName returns the exported name for a descriptor.
func metricName(d sensor.Descriptor) string {
	return fmt.Sprintf("sensorbox_%s_%s", d.Family, d.Label)
}

// Describe implements prometheus.Collector.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	emitted := make(map[string]bool, len(c.descs))
	for _, s := range c.list.Snapshot() {
		name := metricName(s.Desc)
		desc, ok := c.descs[name]
		if !ok || emitted[name] {
			continue
		}
		f, err := s.Value.Float()
		if err != nil {
			continue
		}
		emitted[name] = true
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, f)
	}
}

// PrometheusExporter serves the watch list over a Prometheus pull endpoint.
type PrometheusExporter struct {
	addr   string
	path   string
	server *http.Server

	scrapesTotal   prometheus.Counter
	scrapeDuration prometheus.Histogram
}

// NewPrometheusExporter creates the exporter for the given watch list.
func NewPrometheusExporter(port int, path string, list *watch.List) *PrometheusExporter {
	registry := prometheus.NewRegistry()
	registry.MustRegister(newCollector(list))

	e := &PrometheusExporter{
		addr: fmt.Sprintf(":%d", port),
		path: path,
		scrapesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: scrapesTotalName,
			Help: "Total number of scrape requests",
		}),
		scrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    scrapeDurationName,
			Help:    "Duration of scrape requests in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
	registry.MustRegister(e.scrapesTotal, e.scrapeDuration)

	mux := http.NewServeMux()
	mux.Handle(path, e.instrumentedHandler(promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	)))
	e.server = &http.Server{Addr: e.addr, Handler: mux}

	return e
}

// instrumentedHandler wraps the scrape handler with the self metrics.
func (e *PrometheusExporter) instrumentedHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			e.scrapesTotal.Inc()
			e.scrapeDuration.Observe(time.Since(start).Seconds())
		}()
		next.ServeHTTP(w, r)
	})
}

// Start serves scrape requests until the context is cancelled.
func (e *PrometheusExporter) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		slog.Info("starting prometheus exporter", "addr", e.addr, "path", e.path)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return e.Stop()
	}
}

// Stop gracefully shuts the endpoint down.
func (e *PrometheusExporter) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("stopping prometheus exporter")
	return e.server.Shutdown(ctx)
}
