package trcprof

import "time"

// Clock produces timestamps in microseconds since an arbitrary fixed epoch.
// Implementations must be safe for concurrent use.
type Clock interface {
	Now() int64
}

// ClockFunc adapts a plain function to a Clock.
type ClockFunc func() int64

// Now implements Clock.
func (f ClockFunc) Now() int64 { return f() }

var processEpoch = time.Now()

type monotonicClock struct{}

// MonotonicClock returns a clock measuring microseconds elapsed since the
// process started, using the monotonic reading of the runtime clock. It is the
// default clock of a Recorder.
func MonotonicClock() Clock { return monotonicClock{} }

func (monotonicClock) Now() int64 {
	return time.Since(processEpoch).Microseconds()
}
