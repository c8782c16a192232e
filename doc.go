// Package trcprof records timed spans and memory events from a running
// program into a trace file, and compares successive recordings.
//
// The basic idea is to open a session with a [Recorder], which writes every
// recorded event straight to a trace file in the trace event format understood
// by tools like Perfetto and chrome://tracing. The file is flushed after each
// event, so it's usable even if the process dies before the session ends,
// although a truncated file lacks its closing brackets.
//
// Spans are measured with a [Timer], usually as follows.
//
//	func work(r *trcprof.Recorder) {
//	    defer r.Start("work").Stop()
//	    ...
//	}
//
// When a session ends, the recorder compares the most recent duration of each
// span name against the durations found in the trace file that the session
// replaced, and writes the result to a comparison report. Recording the same
// program twice to the same path therefore shows how each span got faster or
// slower between runs.
//
// Recorders are explicitly constructed, and usually owned by the main
// function. Use [NewContext] and [Region] to make one available to code that
// takes a context.
package trcprof
