package main

import (
	"context"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/peterbourgon/trcprof"
)

type diffConfig struct {
	*rootConfig

	outputPath string
	format     string
}

func (cfg *diffConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{ShortName: 'o', LongName: "output" /*  */, Value: ffval.NewValue(&cfg.outputPath) /*                   */, Usage: "write the comparison report to this path", Placeholder: "PATH"})
	fs.AddFlag(ff.FlagConfig{ShortName: 'f', LongName: "format" /*  */, Value: ffval.NewEnum(&cfg.format, "table", "json") /*       */, Usage: "stdout format: table, json"})
}

func (cfg *diffConfig) Exec(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("need exactly two trace files, CURRENT and PREVIOUS")
	}

	currentPath, previousPath := args[0], args[1]
	for _, path := range args {
		if _, err := os.Stat(path); err != nil {
			return err
		}
	}

	cfg.debug.Printf("current: %s", currentPath)
	cfg.debug.Printf("previous: %s", previousPath)

	c := trcprof.DiffFiles(currentPath, previousPath)

	cfg.debug.Printf("compared span count: %d", len(c.Records))

	if cfg.outputPath != "" {
		if err := trcprof.WriteComparison(cfg.outputPath, c); err != nil {
			return err
		}
		cfg.info.Printf("wrote %s", cfg.outputPath)
	}

	switch cfg.format {
	case "json":
		if _, err := c.WriteTo(cfg.stdout); err != nil {
			return fmt.Errorf("write comparison: %w", err)
		}
	default:
		if err := writeComparisonTable(cfg.stdout, c); err != nil {
			return fmt.Errorf("render comparison: %w", err)
		}
	}

	return nil
}
