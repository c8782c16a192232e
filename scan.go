package trcprof

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

const (
	durField  = `"dur":`
	nameField = `"name":"`
)

// LoadPreviousDurations scans the trace file at path and returns the duration
// of every span in it, keyed by span name. When a name occurs more than once,
// the last occurrence wins. A missing or unreadable file yields an empty map.
//
// This isn't a JSON parser. The file is read line by line, and each "dur"
// field is paired with the "name" field of the same event object. That's only
// reliable for traces written by a Recorder, which puts every event on its own
// line. Durations without a name, or with a malformed value, are skipped. Use
// ParseTrace to read arbitrary trace files.
func LoadPreviousDurations(path string) map[string]int64 {
	durations := map[string]int64{}

	f, err := os.Open(path)
	if err != nil {
		return durations
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for s.Scan() {
		scanLine(s.Text(), durations)
	}

	return durations // a read error truncates the baseline, which is fine
}

func scanLine(line string, durations map[string]int64) {
	for offset := 0; ; {
		i := strings.Index(line[offset:], durField)
		if i < 0 {
			return
		}
		i += offset
		offset = i + len(durField)

		dur, ok := parseDuration(line[offset:])
		if !ok {
			continue
		}

		name, ok := findName(line, i)
		if !ok {
			continue
		}

		durations[name] = dur
	}
}

// parseDuration parses the integer at the start of s, which ends at the next
// comma or closing brace.
func parseDuration(s string) (int64, bool) {
	end := strings.IndexAny(s, ",}")
	if end < 0 {
		end = len(s)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s[:end]), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// findName finds the name field of the event object containing the dur field
// at index i of line. The nearest preceding name field within the same object
// is preferred. Otherwise the first name field following dur, before the
// object closes, is used.
func findName(line string, i int) (string, bool) {
	begin := strings.LastIndexByte(line[:i], '}') + 1
	if j := strings.LastIndex(line[begin:i], nameField); j >= 0 {
		return parseName(line[begin+j+len(nameField):])
	}

	rest := line[i:]
	if j := strings.Index(rest, nameField); j >= 0 {
		if k := strings.IndexByte(rest, '}'); k < 0 || j < k {
			return parseName(rest[j+len(nameField):])
		}
	}

	return "", false
}

// parseName reads an escaped string value up to its closing quote, and
// reverses the escaping applied by the recorder.
func parseName(s string) (string, bool) {
	var (
		sb      strings.Builder
		escaped bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			sb.WriteByte(unescapeByte(c))
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			return sb.String(), true
		default:
			sb.WriteByte(c)
		}
	}
	return "", false // unterminated
}

func unescapeByte(c byte) byte {
	switch c {
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		return c // quote, backslash, solidus
	}
}
