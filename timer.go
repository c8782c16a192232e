package trcprof

import "sync/atomic"

// Timer measures a single span. It's created by Recorder.Start, and reports
// exactly one span event to its recorder when it's stopped.
//
// Typical usage is as follows.
//
//	func foo(r *trcprof.Recorder) {
//	    defer r.Start("foo").Stop()
//	    ...
//	}
//
// A deferred Stop runs on every exit path, including panics, so the span is
// always reported. Stop may also be called explicitly to end the span early;
// any later calls, including a deferred one, are no-ops.
type Timer struct {
	rec     *Recorder
	name    string
	start   int64
	stopped atomic.Bool
	ended   atomic.Bool
	end     atomic.Int64
}

// Start begins a span with the given name.
func (r *Recorder) Start(name string) *Timer {
	return &Timer{
		rec:   r,
		name:  name,
		start: r.clock.Now(),
	}
}

// Name of the span.
func (t *Timer) Name() string {
	return t.name
}

// Elapsed returns the microseconds since the timer was started. Once the
// timer is stopped, it returns the duration of the recorded span.
func (t *Timer) Elapsed() int64 {
	if t.ended.Load() {
		return t.end.Load() - t.start
	}
	return t.rec.clock.Now() - t.start
}

// Stop ends the span and records it, attributed to the calling goroutine.
// Only the first call has any effect. It returns ErrNoSession if the recorder
// had no open session, in which case the span is dropped.
func (t *Timer) Stop() error {
	if !t.stopped.CompareAndSwap(false, true) {
		return nil
	}

	end := t.rec.clock.Now()
	if end < t.start {
		end = t.start
	}
	t.end.Store(end)
	t.ended.Store(true)

	return t.rec.RecordSpan(SpanEvent{
		Name:     t.name,
		Start:    t.start,
		End:      end,
		ThreadID: threadID(),
	})
}
