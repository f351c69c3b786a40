package sensor

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/neox5/sensorbox/internal/value"
)

type stubFamily struct {
	name    string
	initErr error
	closed  int
}

func (f *stubFamily) Name() string { return f.name }
func (f *stubFamily) Init() error  { return f.initErr }
func (f *stubFamily) Close() error {
	f.closed++
	return nil
}

func (f *stubFamily) Descriptors() []Descriptor {
	return []Descriptor{{Family: f.name, Field: 0, Label: "val", Kind: value.Uint64}}
}

func (f *stubFamily) Update(Descriptor, *value.Value, time.Time, time.Duration) error {
	return nil
}

func TestRegistryToleratesPartialInit(t *testing.T) {
	unsupported := &stubFamily{name: "unsupported", initErr: ErrNotSupported}
	broken := &stubFamily{name: "broken", initErr: errors.New("device missing")}
	ok := &stubFamily{name: "ok"}

	reg := NewRegistry(slog.New(slog.DiscardHandler), unsupported, broken, ok)

	require.Len(t, reg.Families(), 1)
	require.Len(t, reg.Descriptors(), 1)

	// Failed families were released at init time.
	require.Equal(t, 1, unsupported.closed)
	require.Equal(t, 1, broken.closed)

	require.NoError(t, reg.Close())
	require.Equal(t, 1, ok.closed)
	require.Empty(t, reg.Descriptors())
}

func TestRegistryLookup(t *testing.T) {
	fam := &stubFamily{name: "fam"}
	reg := NewRegistry(slog.New(slog.DiscardHandler), fam)

	got, ok := reg.Lookup("fam")
	require.True(t, ok)
	require.Equal(t, "fam", got.Name())

	_, ok = reg.Lookup("nosuch")
	require.False(t, ok)
}

func TestRegistryDescriptorMemoization(t *testing.T) {
	fam := &stubFamily{name: "fam"}
	reg := NewRegistry(slog.New(slog.DiscardHandler), fam)

	first := reg.Descriptors()
	require.Len(t, first, 1)

	reg.Invalidate()
	require.Len(t, reg.Descriptors(), 1)
}

func TestRefreshGate(t *testing.T) {
	var g RefreshGate
	t0 := time.Now()

	require.True(t, g.Due(t0, time.Second))
	require.Equal(t, time.Duration(0), g.Elapsed(t0))

	g.Mark(t0)
	require.False(t, g.Due(t0.Add(500*time.Millisecond), time.Second))
	require.True(t, g.Due(t0.Add(time.Second), time.Second))
	require.Equal(t, 2*time.Second, g.Elapsed(t0.Add(2*time.Second)))
}
