// Package net is the network metric family: cumulative interface counters
// aggregated over all NICs, plus byte-rate fields derived from the elapsed
// time between snapshot refreshes.
package net

import (
	"fmt"
	"log/slog"
	"time"

	gnet "github.com/shirou/gopsutil/v4/net"

	"github.com/neox5/sensorbox/internal/sensor"
	"github.com/neox5/sensorbox/internal/value"
)

// Swappable for tests.
var netIOCounters = gnet.IOCounters

const (
	fieldBytesSent = iota
	fieldBytesRecv
	fieldPacketsSent
	fieldPacketsRecv
	fieldErrIn
	fieldErrOut
	fieldSendRate
	fieldRecvRate
)

type snapshot struct {
	counters gnet.IOCountersStat

	// Bytes per second since the previous refresh; zero until two
	// refreshes have happened.
	sendRate float64
	recvRate float64
}

// Family collects network metrics.
type Family struct {
	logger *slog.Logger
	gate   sensor.RefreshGate
	snap   snapshot
	primed bool
}

// New creates the network family.
func New(logger *slog.Logger) *Family {
	return &Family{logger: logger}
}

// Name implements sensor.Family.
func (f *Family) Name() string { return "net" }

// Init probes interface counter availability.
func (f *Family) Init() error {
	counters, err := netIOCounters(false)
	if err != nil || len(counters) == 0 {
		return fmt.Errorf("%w: net io probe: %v", sensor.ErrNotSupported, err)
	}
	return nil
}

// Close implements sensor.Family.
func (f *Family) Close() error { return nil }

// Descriptors implements sensor.Family.
func (f *Family) Descriptors() []sensor.Descriptor {
	return []sensor.Descriptor{
		{Family: "net", Field: fieldBytesSent, Label: "bytes_sent", Kind: value.Uint64},
		{Family: "net", Field: fieldBytesRecv, Label: "bytes_recv", Kind: value.Uint64},
		{Family: "net", Field: fieldPacketsSent, Label: "packets_sent", Kind: value.Uint64},
		{Family: "net", Field: fieldPacketsRecv, Label: "packets_recv", Kind: value.Uint64},
		{Family: "net", Field: fieldErrIn, Label: "err_in", Kind: value.Uint64},
		{Family: "net", Field: fieldErrOut, Label: "err_out", Kind: value.Uint64},
		{Family: "net", Field: fieldSendRate, Label: "send_rate", Kind: value.Float64},
		{Family: "net", Field: fieldRecvRate, Label: "recv_rate", Kind: value.Float64},
	}
}

// Update implements sensor.Family.
func (f *Family) Update(d sensor.Descriptor, v *value.Value, now time.Time, interval time.Duration) error {
	if v == nil {
		return sensor.ErrInvalidArgument
	}
	if f.gate.Due(now, interval) {
		if err := f.refresh(f.gate.Elapsed(now)); err != nil {
			return err
		}
		f.gate.Mark(now)
	}

	switch d.Field {
	case fieldBytesSent:
		return v.SetUint(f.snap.counters.BytesSent)
	case fieldBytesRecv:
		return v.SetUint(f.snap.counters.BytesRecv)
	case fieldPacketsSent:
		return v.SetUint(f.snap.counters.PacketsSent)
	case fieldPacketsRecv:
		return v.SetUint(f.snap.counters.PacketsRecv)
	case fieldErrIn:
		return v.SetUint(f.snap.counters.Errin)
	case fieldErrOut:
		return v.SetUint(f.snap.counters.Errout)
	case fieldSendRate:
		return v.SetFloat(f.snap.sendRate)
	case fieldRecvRate:
		return v.SetFloat(f.snap.recvRate)
	}
	return fmt.Errorf("net: unknown field %d: %w", d.Field, sensor.ErrInvalidArgument)
}

// refresh reads the aggregated counters and, given a non-zero elapsed hint,
// derives the byte rates from the counter deltas.
func (f *Family) refresh(elapsed time.Duration) error {
	counters, err := netIOCounters(false)
	if err != nil {
		return fmt.Errorf("read net io counters: %w", err)
	}
	if len(counters) == 0 {
		return fmt.Errorf("read net io counters: no interfaces")
	}

	cur := counters[0]
	if f.primed && elapsed > 0 {
		secs := elapsed.Seconds()
		f.snap.sendRate = delta(cur.BytesSent, f.snap.counters.BytesSent) / secs
		f.snap.recvRate = delta(cur.BytesRecv, f.snap.counters.BytesRecv) / secs
	}
	f.snap.counters = cur
	f.primed = true
	return nil
}

// delta guards against counter resets; a going-backwards counter yields 0.
func delta(cur, prev uint64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur - prev)
}
