package trcprof

import (
	"bytes"
	"runtime"
	"strconv"
)

// SpanEvent is a completed, named interval of execution. Start and End are
// clock readings in microseconds, and End is never before Start.
type SpanEvent struct {
	Name     string
	Start    int64
	End      int64
	ThreadID uint32
}

// Duration of the span in microseconds.
func (ev SpanEvent) Duration() int64 {
	return ev.End - ev.Start
}

// MemoryOp is the kind of a memory event.
type MemoryOp uint8

const (
	// OpAlloc marks an allocation of Size bytes.
	OpAlloc MemoryOp = iota

	// OpFree marks a release. Size is always zero.
	OpFree
)

// String returns the event name used in trace files.
func (op MemoryOp) String() string {
	switch op {
	case OpAlloc:
		return "malloc"
	case OpFree:
		return "free"
	default:
		return "unknown"
	}
}

// MemoryEvent is an instantaneous marker of an allocation or free, tagged
// with the source location that reported it.
type MemoryEvent struct {
	Op        MemoryOp
	Size      uint64
	File      string
	Line      int32
	ThreadID  uint32
	Timestamp int64 // assigned by the recorder when the event is written
}

// threadID returns an identifier for the calling goroutine. Go doesn't expose
// OS threads to user code, so the goroutine ID stands in for the thread ID of
// the trace event format. The ID is parsed from the first line of the
// goroutine's stack trace, which always reads "goroutine N [status]:".
func threadID() uint32 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return uint32(id)
}
