package trcprof_test

import (
	"strings"
	"testing"

	"github.com/peterbourgon/trcprof"
)

func TestParseTrace(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"otherData": {"host":"h1"},"traceEvents":[`,
		`{"cat":"function","dur":20,"name":"a","ph":"X","pid":0,"tid":1,"ts":5},`,
		`{"cat":"memory","name":"malloc","ph":"M","pid":0,"tid":1,"ts":9,"args":{"size":16,"file":"x.go","line":3}},`,
		`{"cat":"function","dur":30,"name":"a","ph":"X","pid":0,"tid":2,"ts":40},`,
		`{"cat":"memory","name":"free","ph":"M","pid":0,"tid":1,"ts":50,"args":{"size":0,"file":"x.go","line":4}}`,
		`]}`,
	}, "\n")

	tf, err := trcprof.ParseTrace(strings.NewReader(input))
	AssertNoError(t, err)
	AssertEqual(t, "h1", tf.OtherData["host"].(string))
	AssertEqual(t, 4, len(tf.TraceEvents))

	AssertDeepEqual(t, []trcprof.SpanEvent{
		{Name: "a", Start: 5, End: 25, ThreadID: 1},
		{Name: "a", Start: 40, End: 70, ThreadID: 2},
	}, tf.Spans())

	AssertDeepEqual(t, []trcprof.MemoryEvent{
		{Op: trcprof.OpAlloc, Size: 16, File: "x.go", Line: 3, ThreadID: 1, Timestamp: 9},
		{Op: trcprof.OpFree, Size: 0, File: "x.go", Line: 4, ThreadID: 1, Timestamp: 50},
	}, tf.MemoryEvents())

	AssertDeepEqual(t, map[string]int64{"a": 30}, tf.Durations())
}

func TestParseTraceForeignEvents(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		`{"otherData": {},"traceEvents":[`,
		`{"cat":"gc","dur":7,"name":"sweep","ph":"X","pid":1,"tid":9,"ts":1},`,
		`{"cat":"memory","name":"malloc","ph":"i","pid":0,"tid":1,"ts":2,"args":{"size":16,"file":"x.go","line":3}},`,
		`{"cat":"memory","name":"malloc","ph":"M","pid":0,"tid":1,"ts":3,"args":{"size":32,"file":"x.go","line":5}},`,
		`{"cat":"function","name":"thread_name","ph":"M","pid":0,"tid":1,"ts":0}`,
		`]}`,
	}, "\n")

	tf, err := trcprof.ParseTrace(strings.NewReader(input))
	AssertNoError(t, err)

	AssertDeepEqual(t, []trcprof.SpanEvent{
		{Name: "sweep", Start: 1, End: 8, ThreadID: 9},
	}, tf.Spans())

	AssertDeepEqual(t, []trcprof.MemoryEvent{
		{Op: trcprof.OpAlloc, Size: 32, File: "x.go", Line: 5, ThreadID: 1, Timestamp: 3},
	}, tf.MemoryEvents())
}

func TestParseTraceTruncated(t *testing.T) {
	t.Parallel()

	input := `{"otherData": {},"traceEvents":[` + "\n" + `{"cat":"function","dur":20,"name":"a","ph":"X","pid":0,"tid":1,"ts":5},`
	_, err := trcprof.ParseTrace(strings.NewReader(input))
	AssertEqual(t, true, err != nil)
}
