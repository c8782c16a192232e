package trcprof_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/peterbourgon/trcprof"
)

func TestTimerStopOnce(t *testing.T) {
	t.Parallel()

	r, dir := newTestRecorder(t, trcprof.WithClock(scriptedClock(100, 350, 999)))
	path := filepath.Join(dir, "trace.json")
	AssertNoError(t, r.BeginSession("timer", path))

	timer := r.Start("X")
	AssertEqual(t, "X", timer.Name())
	AssertNoError(t, timer.Stop())
	AssertNoError(t, timer.Stop())
	AssertNoError(t, r.EndSession())

	tf, err := trcprof.ParseTraceFile(path)
	AssertNoError(t, err)
	spans := tf.Spans()
	AssertEqual(t, 1, len(spans))
	AssertEqual(t, int64(100), spans[0].Start)
	AssertEqual(t, int64(350), spans[0].End)
	AssertEqual(t, uint64(1), r.Stats().Spans)
	AssertDeepEqual(t, map[string]int64{"X": 250}, r.Durations())
}

func TestTimerDeferredStop(t *testing.T) {
	t.Parallel()

	r, dir := newTestRecorder(t)
	AssertNoError(t, r.BeginSession("deferred", filepath.Join(dir, "trace.json")))

	errEarly := errors.New("early return")
	work := func(fail bool) error {
		defer r.Start("work").Stop()
		if fail {
			return errEarly
		}
		return nil
	}
	AssertEqual(t, errEarly, work(true))
	AssertNoError(t, work(false))

	func() {
		defer func() { recover() }()
		defer r.Start("panics").Stop()
		panic("boom")
	}()

	AssertNoError(t, r.EndSession())
	AssertEqual(t, uint64(3), r.Stats().Spans)

	durations := r.Durations()
	_, ok := durations["panics"]
	AssertEqual(t, true, ok)
	_, ok = durations["work"]
	AssertEqual(t, true, ok)
}

func TestTimerClampsNegativeDuration(t *testing.T) {
	t.Parallel()

	r, dir := newTestRecorder(t, trcprof.WithClock(scriptedClock(500, 400)))
	AssertNoError(t, r.BeginSession("clamp", filepath.Join(dir, "trace.json")))
	AssertNoError(t, r.Start("backwards").Stop())
	AssertNoError(t, r.EndSession())

	AssertDeepEqual(t, map[string]int64{"backwards": 0}, r.Durations())
}

func TestTimerElapsed(t *testing.T) {
	t.Parallel()

	r, dir := newTestRecorder(t, trcprof.WithClock(scriptedClock(100, 160, 400, 999)))
	AssertNoError(t, r.BeginSession("elapsed", filepath.Join(dir, "trace.json")))

	timer := r.Start("X")
	AssertEqual(t, int64(60), timer.Elapsed())
	AssertNoError(t, timer.Stop())
	AssertEqual(t, int64(300), timer.Elapsed())
	AssertEqual(t, int64(300), timer.Elapsed())
	AssertNoError(t, r.EndSession())

	AssertDeepEqual(t, map[string]int64{"X": 300}, r.Durations())
}

func TestMonotonicClock(t *testing.T) {
	t.Parallel()

	c := trcprof.MonotonicClock()
	prev := c.Now()
	for i := 0; i < 1000; i++ {
		now := c.Now()
		if now < prev {
			t.Fatalf("clock went backwards: %d after %d", now, prev)
		}
		prev = now
	}
}
