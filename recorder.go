package trcprof

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/oklog/ulid/v2"
	"github.com/peterbourgon/trcprof/internal/trcdebug"
)

// ErrNoSession is returned when an event is recorded while no session is open.
// The event is dropped.
var ErrNoSession = errors.New("no open session")

// DefaultComparisonPath is where a recorder writes the comparison report when
// a session ends, unless configured otherwise.
const DefaultComparisonPath = "comparison.json"

// Session describes an open recording.
type Session struct {
	ID      ulid.ULID
	Name    string
	Path    string
	Started time.Time
	Events  int
}

// Recorder writes span and memory events to the trace file of the currently
// open session, and compares each finished session against the previous trace
// found at the same path.
//
// All methods are safe for concurrent use. Every method holds a single lock
// for its duration, so events appear in the trace file in the order in which
// they were recorded, and never straddle a session boundary.
type Recorder struct {
	mtx            sync.Mutex
	clock          Clock
	logger         *log.Logger
	comparisonPath string
	resetDurations bool
	counters       trcdebug.RecorderCounters

	session   *openSession
	durations map[string]int64
	previous  map[string]int64
	buf       []byte
}

type openSession struct {
	Session
	file *os.File
	w    *bufio.Writer
}

// Option configures a recorder.
type Option func(*Recorder)

// WithClock sets the clock used for span timers and memory event timestamps.
// The default is MonotonicClock.
func WithClock(c Clock) Option {
	return func(r *Recorder) { r.clock = c }
}

// WithLogger sets a logger for session lifecycle messages. By default nothing
// is logged.
func WithLogger(logger *log.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// WithComparisonPath sets the path of the comparison report written when a
// session ends. The default is DefaultComparisonPath, relative to the working
// directory.
func WithComparisonPath(path string) Option {
	return func(r *Recorder) { r.comparisonPath = path }
}

// WithSessionScopedDurations clears the duration table whenever a session
// begins. By default, durations accumulate across sessions, so a span that ran
// in an earlier session but not the current one still appears in the current
// session's comparison report.
func WithSessionScopedDurations() Option {
	return func(r *Recorder) { r.resetDurations = true }
}

// New returns a recorder with no open session.
func New(options ...Option) *Recorder {
	r := &Recorder{
		clock:          MonotonicClock(),
		logger:         log.New(io.Discard, "", 0),
		comparisonPath: DefaultComparisonPath,
		durations:      map[string]int64{},
		previous:       map[string]int64{},
	}
	for _, option := range options {
		option(r)
	}
	return r
}

var sessionIDEntropy = ulid.DefaultEntropy()

// BeginSession opens a new session writing to path. If a session is already
// open, it's ended first, exactly as if EndSession had been called.
//
// Any trace already at path is scanned for span durations before it's
// overwritten, and those durations become the baseline for the comparison
// report produced when the new session ends. A missing or unreadable file
// yields an empty baseline.
func (r *Recorder) BeginSession(name, path string) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.session != nil {
		r.logger.Printf("session %s (%s): implicitly ended by new session %q", r.session.ID, r.session.Name, name)
		if err := r.endSessionLocked(); err != nil {
			return fmt.Errorf("end previous session: %w", err)
		}
	}

	previous := LoadPreviousDurations(path)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("begin session %q: %w", name, err)
	}

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(traceHeader); err != nil {
		f.Close()
		return fmt.Errorf("begin session %q: write header: %w", name, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("begin session %q: write header: %w", name, err)
	}

	if r.resetDurations {
		r.durations = map[string]int64{}
	}
	r.previous = previous

	now := time.Now().UTC()
	r.session = &openSession{
		Session: Session{
			ID:      ulid.MustNew(ulid.Timestamp(now), sessionIDEntropy),
			Name:    name,
			Path:    path,
			Started: now,
		},
		file: f,
		w:    w,
	}
	r.counters.Sessions.Add(1)

	r.logger.Printf("session %s (%s): begin, writing %s, baseline span count %d", r.session.ID, name, path, len(previous))

	return nil
}

// EndSession finalizes the trace file of the open session, closes it, and
// writes the comparison report. It's a no-op if no session is open.
//
// The trace file is always closed and the session always ended, even if an
// error is returned.
func (r *Recorder) EndSession() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.endSessionLocked()
}

func (r *Recorder) endSessionLocked() error {
	s := r.session
	if s == nil {
		return nil
	}
	r.session = nil

	var finalizeErr error
	if _, err := s.w.WriteString(traceFooter); err != nil {
		finalizeErr = fmt.Errorf("write footer: %w", err)
	} else if err := s.w.Flush(); err != nil {
		finalizeErr = fmt.Errorf("write footer: %w", err)
	}
	if err := s.file.Close(); err != nil && finalizeErr == nil {
		finalizeErr = fmt.Errorf("close trace: %w", err)
	}
	if finalizeErr != nil {
		finalizeErr = fmt.Errorf("end session %q: %s: %w", s.Name, s.Path, finalizeErr)
	}

	comparison := Compare(r.durations, r.previous)
	compareErr := WriteComparison(r.comparisonPath, comparison)
	if compareErr != nil {
		compareErr = fmt.Errorf("end session %q: %w", s.Name, compareErr)
	}

	r.logger.Printf("session %s (%s): end, event count %d, compared span count %d, took %s", s.ID, s.Name, s.Events, len(comparison.Records), time.Since(s.Started))

	return errors.Join(finalizeErr, compareErr)
}

// Session returns details of the open session, if any.
func (r *Recorder) Session() (Session, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.session == nil {
		return Session{}, false
	}
	return r.session.Session, true
}

// RecordSpan writes a complete span event to the open session, and records
// its duration under its name, replacing any earlier duration for that name.
// It returns ErrNoSession if no session is open.
func (r *Recorder) RecordSpan(ev SpanEvent) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.session == nil {
		r.counters.Dropped.Add(1)
		return ErrNoSession
	}

	if ev.End < ev.Start {
		ev.End = ev.Start
	}
	r.durations[ev.Name] = ev.Duration()
	r.counters.Spans.Add(1)

	r.buf = appendSpan(r.nextEventLocked(), ev)
	return r.writeLocked()
}

// RecordMemoryEvent writes a memory marker to the open session, stamped with
// the current time. It returns ErrNoSession if no session is open.
func (r *Recorder) RecordMemoryEvent(ev MemoryEvent) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.session == nil {
		r.counters.Dropped.Add(1)
		return ErrNoSession
	}

	if ev.Op == OpFree {
		ev.Size = 0
	}
	ev.Timestamp = r.clock.Now()
	r.counters.MemoryEvents.Add(1)

	r.buf = appendMemory(r.nextEventLocked(), ev)
	return r.writeLocked()
}

// Alloc records an allocation of size bytes, attributed to the caller's
// source file and line.
func (r *Recorder) Alloc(size uint64) error {
	file, line := callerFileLine()
	return r.AllocAt(size, file, line)
}

// AllocAt records an allocation of size bytes at the given source location.
func (r *Recorder) AllocAt(size uint64, file string, line int) error {
	return r.RecordMemoryEvent(MemoryEvent{Op: OpAlloc, Size: size, File: file, Line: int32(line), ThreadID: threadID()})
}

// Free records a release, attributed to the caller's source file and line.
func (r *Recorder) Free() error {
	file, line := callerFileLine()
	return r.FreeAt(file, line)
}

// FreeAt records a release at the given source location.
func (r *Recorder) FreeAt(file string, line int) error {
	return r.RecordMemoryEvent(MemoryEvent{Op: OpFree, File: file, Line: int32(line), ThreadID: threadID()})
}

// callerFileLine reports the location of the code calling the function that
// called callerFileLine.
func callerFileLine() (string, int) {
	fr := stack.Caller(2).Frame()
	return fr.File, fr.Line
}

// Durations returns a copy of the duration table: the most recent duration of
// every span name recorded so far.
func (r *Recorder) Durations() map[string]int64 {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return copyDurations(r.durations)
}

// Stats returns counters describing the lifetime activity of the recorder.
func (r *Recorder) Stats() Stats {
	sessions, spans, memory, dropped := r.counters.Values()
	return Stats{
		Sessions:     sessions,
		Spans:        spans,
		MemoryEvents: memory,
		Dropped:      dropped,
		DropPercent:  r.counters.DropPercent(),
	}
}

// Stats are lifetime counters of a recorder.
type Stats struct {
	Sessions     uint64  `json:"sessions"`
	Spans        uint64  `json:"spans"`
	MemoryEvents uint64  `json:"memory_events"`
	Dropped      uint64  `json:"dropped"`
	DropPercent  float64 `json:"drop_percent"`
}

// nextEventLocked resets the scratch buffer with the separator that must
// precede the next event object, and counts the event.
func (r *Recorder) nextEventLocked() []byte {
	buf := r.buf[:0]
	if r.session.Events > 0 {
		buf = append(buf, ',')
	}
	buf = append(buf, '\n')
	r.session.Events++
	return buf
}

func (r *Recorder) writeLocked() error {
	if _, err := r.session.w.Write(r.buf); err != nil {
		return fmt.Errorf("write event: %s: %w", r.session.Path, err)
	}
	if err := r.session.w.Flush(); err != nil {
		return fmt.Errorf("write event: %s: %w", r.session.Path, err)
	}
	return nil
}

func copyDurations(m map[string]int64) map[string]int64 {
	c := make(map[string]int64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
