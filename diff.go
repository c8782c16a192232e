package trcprof

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// notAvailable is written in place of previous durations and differences for
// spans that didn't occur in the previous session.
const notAvailable = "N/A"

// Comparison reports how span durations changed between two sessions.
type Comparison struct {
	Records []ComparisonRecord
}

// ComparisonRecord compares the duration of one span name. Previous and
// Difference are only meaningful if HasPrevious is true.
type ComparisonRecord struct {
	Name        string
	Current     int64
	Previous    int64
	HasPrevious bool
}

// Difference returns current minus previous duration, and false if the span
// has no previous duration.
func (rec ComparisonRecord) Difference() (int64, bool) {
	if !rec.HasPrevious {
		return 0, false
	}
	return rec.Current - rec.Previous, true
}

// Compare produces one record for every name in current, sorted by name.
// Names that only appear in previous are ignored.
func Compare(current, previous map[string]int64) Comparison {
	names := make([]string, 0, len(current))
	for name := range current {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]ComparisonRecord, len(names))
	for i, name := range names {
		prev, ok := previous[name]
		records[i] = ComparisonRecord{
			Name:        name,
			Current:     current[name],
			Previous:    prev,
			HasPrevious: ok,
		}
	}

	return Comparison{Records: records}
}

// DiffFiles compares the spans in two trace files, as written by a Recorder.
func DiffFiles(currentPath, previousPath string) Comparison {
	return Compare(LoadPreviousDurations(currentPath), LoadPreviousDurations(previousPath))
}

// WriteComparison writes the comparison to path, replacing any existing file.
func WriteComparison(path string, c Comparison) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write comparison: %w", err)
	}

	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write comparison: %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("write comparison: %w", err)
	}

	return nil
}

// WriteTo writes the comparison document to w.
func (c Comparison) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}

	buf := []byte(`{"comparison": [`)
	for i, rec := range c.Records {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '\n')
		buf = appendComparisonRecord(buf, rec)
		if _, err := cw.Write(buf); err != nil {
			return cw.n, err
		}
		buf = buf[:0]
	}
	buf = append(buf, "\n]}\n"...)
	if _, err := cw.Write(buf); err != nil {
		return cw.n, err
	}

	return cw.n, bw.Flush()
}

func appendComparisonRecord(dst []byte, rec ComparisonRecord) []byte {
	dst = append(dst, `{"name": "`...)
	dst = appendEscaped(dst, rec.Name)
	dst = append(dst, `","current_duration": `...)
	dst = strconv.AppendInt(dst, rec.Current, 10)
	dst = append(dst, `,"previous_duration": `...)
	if rec.HasPrevious {
		dst = strconv.AppendInt(dst, rec.Previous, 10)
	} else {
		dst = strconv.AppendQuote(dst, notAvailable)
	}
	dst = append(dst, `,"difference": `...)
	if diff, ok := rec.Difference(); ok {
		dst = strconv.AppendInt(dst, diff, 10)
	} else {
		dst = strconv.AppendQuote(dst, notAvailable)
	}
	dst = append(dst, '}')
	return dst
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// ReadComparison parses a comparison document, as written by WriteComparison.
func ReadComparison(r io.Reader) (Comparison, error) {
	var doc struct {
		Comparison []struct {
			Name     string          `json:"name"`
			Current  int64           `json:"current_duration"`
			Previous json.RawMessage `json:"previous_duration"`
		} `json:"comparison"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Comparison{}, fmt.Errorf("decode comparison: %w", err)
	}

	records := make([]ComparisonRecord, len(doc.Comparison))
	for i, jrec := range doc.Comparison {
		rec := ComparisonRecord{Name: jrec.Name, Current: jrec.Current}
		var na string
		switch {
		case json.Unmarshal(jrec.Previous, &rec.Previous) == nil:
			rec.HasPrevious = true
		case json.Unmarshal(jrec.Previous, &na) == nil && na == notAvailable:
			rec.HasPrevious = false
		default:
			return Comparison{}, fmt.Errorf("decode comparison: %s: invalid previous duration %s", jrec.Name, jrec.Previous)
		}
		records[i] = rec
	}

	return Comparison{Records: records}, nil
}

// ReadComparisonFile parses the comparison document at path.
func ReadComparisonFile(path string) (Comparison, error) {
	f, err := os.Open(path)
	if err != nil {
		return Comparison{}, err
	}
	defer f.Close()

	return ReadComparison(f)
}
