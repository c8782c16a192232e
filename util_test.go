package trcprof_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/peterbourgon/trcprof"
)

func AssertEqual[X comparable](t *testing.T, want, have X) {
	t.Helper()
	if want != have {
		t.Fatalf("want %v, have %v", want, have)
	}
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("error %v", err)
	}
}

func AssertDeepEqual[X any](t *testing.T, want, have X) {
	t.Helper()
	if !cmp.Equal(want, have) {
		t.Fatal(cmp.Diff(want, have))
	}
}

// scriptedClock returns the given readings in order, and then keeps returning
// the last one.
func scriptedClock(readings ...int64) trcprof.Clock {
	var mtx sync.Mutex
	return trcprof.ClockFunc(func() int64 {
		mtx.Lock()
		defer mtx.Unlock()
		now := readings[0]
		if len(readings) > 1 {
			readings = readings[1:]
		}
		return now
	})
}
