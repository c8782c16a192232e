package main

import (
	"io"
	"log"

	"github.com/olekukonko/tablewriter"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/peterbourgon/trcprof"
	"github.com/peterbourgon/trcprof/internal/trcutil"
)

type rootConfig struct {
	stdout io.Writer
	stderr io.Writer

	logLevel string

	info, debug *log.Logger
}

func (cfg *rootConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'l',
		LongName:    "log",
		Value:       ffval.NewEnum(&cfg.logLevel, "info", "i", "debug", "d", "none", "n"),
		Usage:       "log level: i/info, d/debug, n/none",
		Placeholder: "LEVEL",
	})
}

// writeComparisonTable renders a comparison as a table, with durations in
// human-friendly units.
func writeComparisonTable(w io.Writer, c trcprof.Comparison) error {
	t := tablewriter.NewTable(w)
	t.Header([]string{"Span", "Current", "Previous", "Difference"})
	for _, rec := range c.Records {
		var (
			previous   = "N/A"
			difference = "N/A"
		)
		if rec.HasPrevious {
			previous = trcutil.HumanizeMicros(rec.Previous)
		}
		if diff, ok := rec.Difference(); ok {
			difference = trcutil.HumanizeMicros(diff)
			if diff > 0 {
				difference = "+" + difference
			}
		}
		if err := t.Append([]string{rec.Name, trcutil.HumanizeMicros(rec.Current), previous, difference}); err != nil {
			return err
		}
	}
	return t.Render()
}
