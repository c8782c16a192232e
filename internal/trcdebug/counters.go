package trcdebug

import "sync/atomic"

// RecorderCounters track the lifetime activity of a recorder.
type RecorderCounters struct {
	Sessions     atomic.Uint64
	Spans        atomic.Uint64
	MemoryEvents atomic.Uint64
	Dropped      atomic.Uint64
}

// Values returns the current values of the counters.
func (rc *RecorderCounters) Values() (sessions, spans, memory, dropped uint64) {
	var (
		s = rc.Sessions.Load()
		p = rc.Spans.Load()
		m = rc.MemoryEvents.Load()
		d = rc.Dropped.Load()
	)
	return s, p, m, d
}

// DropPercent returns the percent (0..100) of recorded events that were
// dropped because no session was open.
func (rc *RecorderCounters) DropPercent() float64 {
	var (
		_, spans, memory, dropped = rc.Values()
		total                     = spans + memory + dropped
	)
	if total <= 0 {
		return 0.0
	}
	return 100 * float64(dropped) / float64(total)
}
