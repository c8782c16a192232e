package trcprof

import (
	"context"
	"runtime/trace"
)

type recorderContextKey struct{}

var recorderContextVal recorderContextKey

// NewContext returns a new context carrying the given recorder.
func NewContext(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderContextVal, r)
}

// FromContext returns the recorder in the context, if it exists.
func FromContext(ctx context.Context) (*Recorder, bool) {
	r, ok := ctx.Value(recorderContextVal).(*Recorder)
	return r, ok
}

// Region measures a region of code, usually a function, as a span named name
// in the recorder carried by the context. It also produces a standard library
// [runtime/trace.Region] with the same name, which is visible when analyzing
// program execution with go tool trace.
//
// Typical usage is as follows.
//
//	func foo(ctx context.Context) {
//	    defer trcprof.Region(ctx, "foo")()
//	    ...
//	}
//
// If the context doesn't carry a recorder, only the runtime region is
// produced. Errors from the recorder are discarded.
func Region(ctx context.Context, name string) func() {
	region := trace.StartRegion(ctx, name)

	r, ok := FromContext(ctx)
	if !ok {
		return region.End
	}

	timer := r.Start(name)
	return func() {
		timer.Stop()
		region.End()
	}
}

// Alloc records an allocation of size bytes, attributed to the caller, in the
// recorder carried by the context. It's a no-op if the context doesn't carry
// a recorder.
func Alloc(ctx context.Context, size uint64) error {
	r, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	file, line := callerFileLine()
	return r.AllocAt(size, file, line)
}

// Free records a release, attributed to the caller, in the recorder carried by
// the context. It's a no-op if the context doesn't carry a recorder.
func Free(ctx context.Context) error {
	r, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	file, line := callerFileLine()
	return r.FreeAt(file, line)
}
