package trcprof_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/peterbourgon/trcprof"
)

func TestRegion(t *testing.T) {
	t.Parallel()

	r, dir := newTestRecorder(t)
	path := filepath.Join(dir, "trace.json")
	AssertNoError(t, r.BeginSession("region", path))

	ctx := trcprof.NewContext(context.Background(), r)
	have, ok := trcprof.FromContext(ctx)
	AssertEqual(t, true, ok)
	AssertEqual(t, r, have)

	func() {
		defer trcprof.Region(ctx, "outer")()
		func() {
			defer trcprof.Region(ctx, "inner")()
			AssertNoError(t, trcprof.Alloc(ctx, 128))
			AssertNoError(t, trcprof.Free(ctx))
		}()
	}()

	AssertNoError(t, r.EndSession())

	tf, err := trcprof.ParseTraceFile(path)
	AssertNoError(t, err)

	spans := tf.Spans()
	AssertEqual(t, 2, len(spans))
	AssertEqual(t, "inner", spans[0].Name)
	AssertEqual(t, "outer", spans[1].Name)
	AssertEqual(t, true, spans[1].Start <= spans[0].Start)
	AssertEqual(t, true, spans[1].End >= spans[0].End)

	events := tf.MemoryEvents()
	AssertEqual(t, 2, len(events))
	AssertEqual(t, "context_test.go", filepath.Base(events[0].File))
	AssertEqual(t, uint64(128), events[0].Size)
}

func TestRegionWithoutRecorder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := trcprof.FromContext(ctx)
	AssertEqual(t, false, ok)

	func() {
		defer trcprof.Region(ctx, "nothing")()
	}()
	AssertNoError(t, trcprof.Alloc(ctx, 1))
	AssertNoError(t, trcprof.Free(ctx))
}
