package trcprof

import "strconv"

const (
	traceHeader = `{"otherData": {},"traceEvents":[`
	traceFooter = "\n]}"
)

// appendSpan appends the trace event object for a complete span.
func appendSpan(dst []byte, ev SpanEvent) []byte {
	dst = append(dst, `{"cat":"`+CategorySpan+`","dur":`...)
	dst = strconv.AppendInt(dst, ev.Duration(), 10)
	dst = append(dst, `,"name":"`...)
	dst = appendEscaped(dst, ev.Name)
	dst = append(dst, `","ph":"`+PhaseComplete+`","pid":0,"tid":`...)
	dst = strconv.AppendUint(dst, uint64(ev.ThreadID), 10)
	dst = append(dst, `,"ts":`...)
	dst = strconv.AppendInt(dst, ev.Start, 10)
	dst = append(dst, '}')
	return dst
}

// appendMemory appends the trace event object for a memory marker.
func appendMemory(dst []byte, ev MemoryEvent) []byte {
	dst = append(dst, `{"cat":"`+CategoryMemory+`","name":"`...)
	dst = append(dst, ev.Op.String()...)
	dst = append(dst, `","ph":"`+PhaseMark+`","pid":0,"tid":`...)
	dst = strconv.AppendUint(dst, uint64(ev.ThreadID), 10)
	dst = append(dst, `,"ts":`...)
	dst = strconv.AppendInt(dst, ev.Timestamp, 10)
	dst = append(dst, `,"args":{"size":`...)
	dst = strconv.AppendUint(dst, ev.Size, 10)
	dst = append(dst, `,"file":"`...)
	dst = appendEscaped(dst, ev.File)
	dst = append(dst, `","line":`...)
	dst = strconv.AppendInt(dst, int64(ev.Line), 10)
	dst = append(dst, `}}`...)
	return dst
}

// appendEscaped appends s with quote, backslash and the common control
// characters escaped. All other bytes, including multi-byte UTF-8 sequences,
// are copied through unchanged.
func appendEscaped(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// EscapeString returns s escaped for use inside a JSON string literal, in the
// same way the recorder escapes names and file paths.
func EscapeString(s string) string {
	return string(appendEscaped(make([]byte, 0, len(s)), s))
}
