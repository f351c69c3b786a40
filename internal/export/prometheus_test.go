package export

import (
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
	"github.com/neox5/sensorbox/internal/watch"
)

// counterFamily exposes one uint64 metric that ticks up on every refresh.
type counterFamily struct {
	n uint64
}

func (f *counterFamily) Name() string { return "fake" }
func (f *counterFamily) Init() error  { return nil }
func (f *counterFamily) Close() error { return nil }

func (f *counterFamily) Descriptors() []sensor.Descriptor {
	return []sensor.Descriptor{
		{Family: "fake", Field: 0, Label: "count", Kind: value.Uint64},
		{Family: "fake", Field: 1, Label: "name", Kind: value.Text},
	}
}

func (f *counterFamily) Update(d sensor.Descriptor, v *value.Value, now time.Time, interval time.Duration) error {
	if d.Kind == value.Text {
		return v.SetText("fake")
	}
	f.n++
	return v.SetUint(f.n)
}

func newTestList(t *testing.T) *watch.List {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	reg := sensor.NewRegistry(logger, &counterFamily{})
	return watch.NewList(logger, reg)
}

func TestCollectorExportsNumericBindings(t *testing.T) {
	list := newTestList(t)
	_, err := list.AddAll(time.Millisecond)
	require.NoError(t, err)
	list.Run(time.Now())

	registry := prometheus.NewRegistry()
	registry.MustRegister(newCollector(list))

	mfs, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	require.Equal(t, "sensorbox_fake_count", mfs[0].GetName())
	require.Equal(t, 1.0, mfs[0].GetMetric()[0].GetGauge().GetValue())
}

func TestCollectorSkipsNonNumericKinds(t *testing.T) {
	list := newTestList(t)
	_, err := list.AddAll(time.Second)
	require.NoError(t, err)

	c := newCollector(list)
	require.Len(t, c.descs, 1)
	require.Contains(t, c.descs, "sensorbox_fake_count")
}

func TestScrapeDuringSampling(t *testing.T) {
	list := newTestList(t)
	_, err := list.AddAll(time.Millisecond)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(newCollector(list))

	done := make(chan struct{})
	go func() {
		defer close(done)
		now := time.Now()
		for i := 0; i < 200; i++ {
			list.Run(now)
			now = now.Add(time.Millisecond)
		}
	}()

	// Gather concurrently with sampling; under the race detector this fails
	// if scrapes ever read a payload the driver loop is writing.
	for i := 0; i < 200; i++ {
		_, err := registry.Gather()
		require.NoError(t, err)
	}
	<-done
}
