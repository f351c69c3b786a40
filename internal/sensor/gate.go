package sensor

import "time"

// RefreshGate tracks when a family snapshot was last refreshed and
// implements the elapsed-time short-circuit: when several watches at
// different intervals share one family, only the first due watch of a pass
// triggers an OS read, the rest re-derive from the current snapshot.
//
// The zero value is ready to use and reports due on first ask.
type RefreshGate struct {
	last time.Time
}

// Due reports whether the snapshot is older than the requesting watch's
// interval and therefore needs an OS read.
func (g *RefreshGate) Due(now time.Time, interval time.Duration) bool {
	return g.last.IsZero() || now.Sub(g.last) >= interval
}

// Elapsed returns the time since the last refresh, or zero before the first
// one. Backends use it to derive rate-style fields.
func (g *RefreshGate) Elapsed(now time.Time) time.Duration {
	if g.last.IsZero() {
		return 0
	}
	return now.Sub(g.last)
}

// Mark records a successful refresh.
func (g *RefreshGate) Mark(now time.Time) {
	g.last = now
}
