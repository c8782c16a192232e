package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/peterbourgon/trcprof"
	"github.com/peterbourgon/trcprof/internal/trcutil"
)

type demoConfig struct {
	*rootConfig

	dir      string
	sessions int
	workers  int
	baseline time.Duration
}

func (cfg *demoConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{ShortName: 'd', LongName: "dir" /*       */, Value: ffval.NewValueDefault(&cfg.dir, ".") /*                       */, Usage: "directory for trace files and the comparison report", Placeholder: "DIR"})
	fs.AddFlag(ff.FlagConfig{ShortName: 'n', LongName: "sessions" /*  */, Value: ffval.NewValueDefault(&cfg.sessions, 2) /*                    */, Usage: "number of sessions to record"})
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "workers" /*   */, Value: ffval.NewValueDefault(&cfg.workers, 2) /*                     */, Usage: "number of concurrent workers per session"})
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "baseline" /*  */, Value: ffval.NewValueDefault(&cfg.baseline, 100*time.Millisecond) /* */, Usage: "duration of the main scope in the first session"})
}

func (cfg *demoConfig) Exec(ctx context.Context, args []string) error {
	if cfg.sessions <= 0 {
		return fmt.Errorf("session count must be positive")
	}

	var (
		tracePath      = filepath.Join(cfg.dir, "demo.json")
		comparisonPath = filepath.Join(cfg.dir, trcprof.DefaultComparisonPath)
		r              = trcprof.New(
			trcprof.WithComparisonPath(comparisonPath),
			trcprof.WithLogger(cfg.debug),
		)
	)

	var g run.Group

	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return cfg.runSessions(ctx, r, tracePath)
		}, func(error) {
			cancel()
		})
	}

	{
		g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))
	}

	if err := g.Run(); err != nil {
		return err
	}

	cfg.info.Printf("trace: %s", tracePath)
	cfg.info.Printf("comparison: %s", comparisonPath)

	c, err := trcprof.ReadComparisonFile(comparisonPath)
	if err != nil {
		return err
	}

	return writeComparisonTable(cfg.stdout, c)
}

// runSessions records the workload once per session, each time to the same
// trace file, so that every session is compared against the one before it.
// Each session is slower than the last.
func (cfg *demoConfig) runSessions(ctx context.Context, r *trcprof.Recorder, path string) error {
	ctx = trcprof.NewContext(ctx, r)

	for i := 0; i < cfg.sessions; i++ {
		name := fmt.Sprintf("session %d", i+1)
		if err := r.BeginSession(name, path); err != nil {
			return err
		}
		if s, ok := r.Session(); ok {
			cfg.debug.Printf("%s: ID %s", name, s.ID)
		}

		slowdown := time.Duration(i) * cfg.baseline / 2
		workErr := cfg.workload(ctx, i, cfg.baseline+slowdown)

		if err := r.EndSession(); err != nil {
			return err
		}
		if workErr != nil {
			return workErr
		}

		cfg.info.Printf("%s: done", name)
	}

	cfg.debug.Print(formatStats(r.Stats()))

	return nil
}

// workload is a main scope which allocates and frees a buffer, followed by
// several concurrent workers. The buffer grows by 1KB with every session.
func (cfg *demoConfig) workload(ctx context.Context, session int, d time.Duration) error {
	if err := func() error {
		defer trcprof.Region(ctx, "main scope")()

		buf := make([]byte, 1024+1024*session)
		if err := trcprof.Alloc(ctx, uint64(len(buf))); err != nil {
			cfg.debug.Printf("alloc: %v", err)
		}
		defer func() {
			if err := trcprof.Free(ctx); err != nil {
				cfg.debug.Printf("free: %v", err)
			}
		}()

		return sleep(ctx, d)
	}(); err != nil {
		return err
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, cfg.workers)
	)
	for i := 0; i < cfg.workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer trcprof.Region(ctx, "work")()
			errs[i] = sleep(ctx, d)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func formatStats(s trcprof.Stats) string {
	return fmt.Sprintf(
		"sessions %d, spans %d, memory events %d, dropped %d (%s)",
		s.Sessions, s.Spans, s.MemoryEvents, s.Dropped, trcutil.HumanizePercent(s.DropPercent),
	)
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
