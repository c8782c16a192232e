package trcprof

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// TraceFile is the structure of a trace file in the trace event format.
type TraceFile struct {
	OtherData   map[string]any `json:"otherData"`
	TraceEvents []TraceEvent   `json:"traceEvents"`
}

// TraceEvent is one element of a trace file's event array.
type TraceEvent struct {
	Category  string      `json:"cat"`
	Duration  int64       `json:"dur,omitempty"`
	Name      string      `json:"name"`
	Phase     string      `json:"ph"`
	PID       int         `json:"pid"`
	TID       uint32      `json:"tid"`
	Timestamp int64       `json:"ts"`
	Args      *MemoryArgs `json:"args,omitempty"`
}

// MemoryArgs are the args of a memory event.
type MemoryArgs struct {
	Size uint64 `json:"size"`
	File string `json:"file"`
	Line int32  `json:"line"`
}

// Trace event phases and categories written by a Recorder.
const (
	PhaseComplete  = "X"
	PhaseMark      = "M"
	CategorySpan   = "function"
	CategoryMemory = "memory"
)

// ParseTrace decodes a complete trace file. Unlike LoadPreviousDurations, it
// accepts any well-formed trace, but fails on a truncated one.
func ParseTrace(r io.Reader) (*TraceFile, error) {
	var tf TraceFile
	if err := json.NewDecoder(r).Decode(&tf); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return &tf, nil
}

// ParseTraceFile decodes the trace file at path.
func ParseTraceFile(path string) (*TraceFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseTrace(f)
}

// Spans returns the complete span events of the trace, in file order.
func (tf *TraceFile) Spans() []SpanEvent {
	var spans []SpanEvent
	for _, ev := range tf.TraceEvents {
		if ev.Phase != PhaseComplete {
			continue
		}
		spans = append(spans, SpanEvent{
			Name:     ev.Name,
			Start:    ev.Timestamp,
			End:      ev.Timestamp + ev.Duration,
			ThreadID: ev.TID,
		})
	}
	return spans
}

// MemoryEvents returns the memory events of the trace, in file order.
func (tf *TraceFile) MemoryEvents() []MemoryEvent {
	var events []MemoryEvent
	for _, ev := range tf.TraceEvents {
		if ev.Category != CategoryMemory || ev.Phase != PhaseMark || ev.Args == nil {
			continue
		}
		op := OpAlloc
		if ev.Name == OpFree.String() {
			op = OpFree
		}
		events = append(events, MemoryEvent{
			Op:        op,
			Size:      ev.Args.Size,
			File:      ev.Args.File,
			Line:      ev.Args.Line,
			ThreadID:  ev.TID,
			Timestamp: ev.Timestamp,
		})
	}
	return events
}

// Durations returns the duration of every span, keyed by name, with later
// spans replacing earlier ones of the same name.
func (tf *TraceFile) Durations() map[string]int64 {
	durations := map[string]int64{}
	for _, ev := range tf.Spans() {
		durations[ev.Name] = ev.Duration()
	}
	return durations
}
