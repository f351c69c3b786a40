package app

import (
	"testing"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
	"github.com/stretchr/testify/require"
)

func TestMatchDescriptors(t *testing.T) {
	descs := []sensor.Descriptor{
		{Family: "mem", Field: 0, Label: "used", Kind: value.Uint64},
		{Family: "mem", Field: 1, Label: "free", Kind: value.Uint64},
		{Family: "cpu", Field: 0, Label: "percent", Kind: value.Float64},
	}

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"global wildcard", "*", []string{"mem.used", "mem.free", "cpu.percent"}},
		{"family wildcard", "mem.*", []string{"mem.used", "mem.free"}},
		{"exact", "cpu.percent", []string{"cpu.percent"}},
		{"no match", "disk.*", nil},
		{"no partial names", "mem.use", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := matchDescriptors(descs, tt.pattern)
			var names []string
			for _, d := range matched {
				names = append(names, d.Name())
			}
			require.Equal(t, tt.want, names)
		})
	}
}
