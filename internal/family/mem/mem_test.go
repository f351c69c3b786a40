package mem

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	gmem "github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/require"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
)

func stubBackend(t *testing.T, virt *gmem.VirtualMemoryStat, swap *gmem.SwapMemoryStat) *int {
	t.Helper()
	reads := 0

	origVirt, origSwap := virtualMemory, swapMemory
	virtualMemory = func() (*gmem.VirtualMemoryStat, error) {
		reads++
		return virt, nil
	}
	swapMemory = func() (*gmem.SwapMemoryStat, error) {
		return swap, nil
	}
	t.Cleanup(func() {
		virtualMemory, swapMemory = origVirt, origSwap
	})
	return &reads
}

func TestUpdateDerivesFields(t *testing.T) {
	stubBackend(t,
		&gmem.VirtualMemoryStat{Total: 16 << 30, Used: 8 << 30, UsedPercent: 50},
		&gmem.SwapMemoryStat{Total: 1 << 30},
	)

	f := New(slog.New(slog.DiscardHandler))
	require.NoError(t, f.Init())

	descs := f.Descriptors()
	byLabel := make(map[string]sensor.Descriptor, len(descs))
	for _, d := range descs {
		byLabel[d.Label] = d
	}

	now := time.Now()

	used := value.New(value.Uint64)
	require.NoError(t, f.Update(byLabel["used"], used, now, time.Second))
	i, err := used.Int()
	require.NoError(t, err)
	require.Equal(t, int64(8<<30), i)

	pct := value.New(value.Float64)
	require.NoError(t, f.Update(byLabel["used_percent"], pct, now, time.Second))
	fl, err := pct.Float()
	require.NoError(t, err)
	require.Equal(t, 50.0, fl)
}

func TestUpdateSharesSnapshotAcrossFields(t *testing.T) {
	reads := stubBackend(t,
		&gmem.VirtualMemoryStat{Total: 1},
		&gmem.SwapMemoryStat{},
	)

	f := New(slog.New(slog.DiscardHandler))
	require.NoError(t, f.Init())
	*reads = 0

	now := time.Now()
	for _, d := range f.Descriptors() {
		v := value.New(d.Kind)
		require.NoError(t, f.Update(d, v, now, time.Second))
	}

	// One snapshot read serves the whole pass.
	require.Equal(t, 1, *reads)
}

func TestInitReportsNotSupported(t *testing.T) {
	orig := virtualMemory
	virtualMemory = func() (*gmem.VirtualMemoryStat, error) {
		return nil, errors.New("no such subsystem")
	}
	t.Cleanup(func() { virtualMemory = orig })

	f := New(slog.New(slog.DiscardHandler))
	require.ErrorIs(t, f.Init(), sensor.ErrNotSupported)
}

func TestUpdateUnknownField(t *testing.T) {
	stubBackend(t, &gmem.VirtualMemoryStat{}, &gmem.SwapMemoryStat{})

	f := New(slog.New(slog.DiscardHandler))
	require.NoError(t, f.Init())

	v := value.New(value.Uint64)
	err := f.Update(sensor.Descriptor{Family: "mem", Field: 99}, v, time.Now(), time.Second)
	require.ErrorIs(t, err, sensor.ErrInvalidArgument)
}
