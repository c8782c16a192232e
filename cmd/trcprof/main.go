// trcprof is a CLI tool for working with trace files and comparison reports
// produced by package trcprof.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	var (
		ctx    = context.Background()
		stdout = os.Stdout
		stderr = os.Stderr
		args   = os.Args[1:]
	)
	err := exec(ctx, stdout, stderr, args)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.As(err, &(run.SignalError{})):
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func exec(ctx context.Context, stdout, stderr io.Writer, args []string) (err error) {
	rootConfig := &rootConfig{
		stdout: stdout,
		stderr: stderr,
	}

	rootFlags := ff.NewFlagSet("trcprof")
	rootConfig.register(rootFlags)

	rootCommand := &ff.Command{
		Name:      "trcprof",
		ShortHelp: "work with trcprof trace files and comparison reports",
		Flags:     rootFlags,
	}

	// Config for `trcprof diff`.
	diffConfig := &diffConfig{rootConfig: rootConfig}
	diffFlags := ff.NewFlagSet("diff").SetParent(rootFlags)
	diffConfig.register(diffFlags)
	diffCommand := &ff.Command{
		Name:      "diff",
		Usage:     "trcprof diff [FLAGS] CURRENT PREVIOUS",
		ShortHelp: "compare span durations in two trace files",
		LongHelp:  "Produce a comparison report for the spans in CURRENT against those in PREVIOUS.",
		Flags:     diffFlags,
		Exec:      diffConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, diffCommand)

	// Config for `trcprof inspect`.
	inspectConfig := &inspectConfig{rootConfig: rootConfig}
	inspectFlags := ff.NewFlagSet("inspect").SetParent(rootFlags)
	inspectConfig.register(inspectFlags)
	inspectCommand := &ff.Command{
		Name:      "inspect",
		Usage:     "trcprof inspect [FLAGS] FILE",
		ShortHelp: "summarize the spans and memory events in a trace file",
		Flags:     inspectFlags,
		Exec:      inspectConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, inspectCommand)

	// Config for `trcprof demo`.
	demoConfig := &demoConfig{rootConfig: rootConfig}
	demoFlags := ff.NewFlagSet("demo").SetParent(rootFlags)
	demoConfig.register(demoFlags)
	demoCommand := &ff.Command{
		Name:      "demo",
		ShortHelp: "record a sample workload over several sessions",
		LongHelp:  "Record the same workload repeatedly to one trace file, getting slower each time, and print the final comparison.",
		Flags:     demoFlags,
		Exec:      demoConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, demoCommand)

	// Config for `trcprof serve`.
	serveConfig := &serveConfig{rootConfig: rootConfig}
	serveFlags := ff.NewFlagSet("serve").SetParent(rootFlags)
	serveConfig.register(serveFlags)
	serveCommand := &ff.Command{
		Name:      "serve",
		ShortHelp: "serve trace files and comparison reports over HTTP",
		Flags:     serveFlags,
		Exec:      serveConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, serveCommand)

	// Print help when appropriate.
	showHelp := true
	defer func() {
		errHelp := errors.Is(err, ff.ErrHelp) || errors.Is(err, ff.ErrNoExec)
		if showHelp || errHelp {
			fmt.Fprintf(stderr, "\n%s\n", ffhelp.Command(rootCommand))
		}
		if errHelp {
			err = nil
		}
	}()

	// Initial parsing.
	if err := rootCommand.Parse(args, ff.WithEnvVarPrefix("TRCPROF")); err != nil {
		return err
	}

	// Validation and set-up.
	{
		var infodst, debugdst io.Writer
		switch rootConfig.logLevel {
		case "n", "none":
			infodst, debugdst = io.Discard, io.Discard
		case "i", "info":
			infodst, debugdst = stderr, io.Discard
		case "d", "debug":
			infodst, debugdst = stderr, stderr
		default:
			return fmt.Errorf("invalid log level %q", rootConfig.logLevel)
		}
		rootConfig.info = log.New(infodst, "", 0)
		rootConfig.debug = log.New(debugdst, "[DEBUG] ", log.Lmsgprefix)
	}

	// Run errors shouldn't show help by default.
	showHelp = false

	// Run the selected command.
	return rootCommand.Run(ctx)
}
