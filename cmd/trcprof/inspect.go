package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/peterbourgon/trcprof"
	"github.com/peterbourgon/trcprof/internal/trcutil"
)

type inspectConfig struct {
	*rootConfig

	format string
}

func (cfg *inspectConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{ShortName: 'f', LongName: "format", Value: ffval.NewEnum(&cfg.format, "table", "json"), Usage: "output format: table, json"})
}

// spanSummary aggregates every span with the same name.
type spanSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Total int64  `json:"total_us"`
	Max   int64  `json:"max_us"`
	Last  int64  `json:"last_us"`
}

type memorySummary struct {
	Allocs     int    `json:"allocs"`
	Frees      int    `json:"frees"`
	AllocBytes uint64 `json:"alloc_bytes"`
}

type inspectResult struct {
	Events int            `json:"events"`
	Spans  []*spanSummary `json:"spans"`
	Memory memorySummary  `json:"memory"`
	Other  map[string]any `json:"other_data,omitempty"`
}

func (cfg *inspectConfig) Exec(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("need exactly one trace file")
	}

	tf, err := trcprof.ParseTraceFile(args[0])
	if err != nil {
		return err
	}

	res := summarize(tf)

	cfg.debug.Printf("event count: %d", res.Events)

	switch cfg.format {
	case "json":
		enc := json.NewEncoder(cfg.stdout)
		enc.SetIndent("", "    ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		return nil
	default:
		return cfg.writeTable(res)
	}
}

func summarize(tf *trcprof.TraceFile) inspectResult {
	index := map[string]*spanSummary{}
	res := inspectResult{
		Events: len(tf.TraceEvents),
		Other:  tf.OtherData,
	}

	for _, ev := range tf.Spans() {
		s, ok := index[ev.Name]
		if !ok {
			s = &spanSummary{Name: ev.Name}
			index[ev.Name] = s
			res.Spans = append(res.Spans, s)
		}
		d := ev.Duration()
		s.Count++
		s.Total += d
		s.Last = d
		if d > s.Max {
			s.Max = d
		}
	}
	sort.SliceStable(res.Spans, func(i, j int) bool {
		return res.Spans[i].Total > res.Spans[j].Total
	})

	for _, ev := range tf.MemoryEvents() {
		switch ev.Op {
		case trcprof.OpAlloc:
			res.Memory.Allocs++
			res.Memory.AllocBytes += ev.Size
		case trcprof.OpFree:
			res.Memory.Frees++
		}
	}

	return res
}

func (cfg *inspectConfig) writeTable(res inspectResult) error {
	t := tablewriter.NewTable(cfg.stdout)
	t.Header([]string{"Span", "Count", "Total", "Max", "Last"})
	for _, s := range res.Spans {
		row := []string{
			s.Name,
			fmt.Sprint(s.Count),
			trcutil.HumanizeMicros(s.Total),
			trcutil.HumanizeMicros(s.Max),
			trcutil.HumanizeMicros(s.Last),
		}
		if err := t.Append(row); err != nil {
			return err
		}
	}
	if err := t.Render(); err != nil {
		return err
	}

	fmt.Fprintf(cfg.stdout, "events %d, allocs %d (%s), frees %d\n",
		res.Events,
		res.Memory.Allocs,
		trcutil.HumanizeBytes(res.Memory.AllocBytes),
		res.Memory.Frees,
	)

	return nil
}
