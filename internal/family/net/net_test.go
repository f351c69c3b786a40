package net

import (
	"log/slog"
	"testing"
	"time"

	gnet "github.com/shirou/gopsutil/v4/net"
	"github.com/stretchr/testify/require"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
)

func stubCounters(t *testing.T) *gnet.IOCountersStat {
	t.Helper()
	current := &gnet.IOCountersStat{Name: "all"}

	orig := netIOCounters
	netIOCounters = func(pernic bool) ([]gnet.IOCountersStat, error) {
		return []gnet.IOCountersStat{*current}, nil
	}
	t.Cleanup(func() { netIOCounters = orig })
	return current
}

func descriptorByLabel(t *testing.T, f *Family, label string) sensor.Descriptor {
	t.Helper()
	for _, d := range f.Descriptors() {
		if d.Label == label {
			return d
		}
	}
	t.Fatalf("no descriptor %q", label)
	return sensor.Descriptor{}
}

func TestUpdateReportsCumulativeCounters(t *testing.T) {
	current := stubCounters(t)
	current.BytesSent = 1234

	f := New(slog.New(slog.DiscardHandler))
	require.NoError(t, f.Init())

	v := value.New(value.Uint64)
	require.NoError(t, f.Update(descriptorByLabel(t, f, "bytes_sent"), v, time.Now(), time.Second))

	i, err := v.Int()
	require.NoError(t, err)
	require.Equal(t, int64(1234), i)
}

func TestRateDerivedFromElapsed(t *testing.T) {
	current := stubCounters(t)
	current.BytesRecv = 1000

	f := New(slog.New(slog.DiscardHandler))
	require.NoError(t, f.Init())

	d := descriptorByLabel(t, f, "recv_rate")
	v := value.New(value.Float64)
	t0 := time.Now()

	// First refresh primes the counters; no rate yet.
	require.NoError(t, f.Update(d, v, t0, time.Second))
	fl, err := v.Float()
	require.NoError(t, err)
	require.Equal(t, 0.0, fl)

	// 2000 bytes over 2 seconds elapsed: 1000 B/s.
	current.BytesRecv = 3000
	require.NoError(t, f.Update(d, v, t0.Add(2*time.Second), time.Second))
	fl, err = v.Float()
	require.NoError(t, err)
	require.InDelta(t, 1000.0, fl, 0.001)
}

func TestRateSurvivesCounterReset(t *testing.T) {
	current := stubCounters(t)
	current.BytesRecv = 5000

	f := New(slog.New(slog.DiscardHandler))
	require.NoError(t, f.Init())

	d := descriptorByLabel(t, f, "recv_rate")
	v := value.New(value.Float64)
	t0 := time.Now()
	require.NoError(t, f.Update(d, v, t0, time.Second))

	// Counter went backwards (interface reset): rate clamps to zero
	// instead of going hugely negative or wrapping.
	current.BytesRecv = 10
	require.NoError(t, f.Update(d, v, t0.Add(time.Second), time.Second))
	fl, err := v.Float()
	require.NoError(t, err)
	require.Equal(t, 0.0, fl)
}
