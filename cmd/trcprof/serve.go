package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/peterbourgon/trcprof"
	"github.com/peterbourgon/unixtransport/unixproxy"
)

type serveConfig struct {
	*rootConfig

	dir        string
	listenAddr string
}

func (cfg *serveConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'd',
		LongName:    "dir",
		Value:       ffval.NewValueDefault(&cfg.dir, "."),
		Usage:       "directory containing trace files and the comparison report",
		Placeholder: "DIR",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName: "listen-addr",
		Value:    ffval.NewValueDefault(&cfg.listenAddr, "localhost:8002"),
		Usage:    "HTTP listen address, or unix:///path/to/socket",
	})
}

func (cfg *serveConfig) Exec(ctx context.Context, args []string) error {
	ln, err := unixproxy.ListenURI(ctx, cfg.listenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	cfg.info.Printf("listening on %s", cfg.listenAddr)
	cfg.info.Printf("serving %s", cfg.dir)

	server := &http.Server{
		Handler: newFileHandler(cfg.dir),
	}

	var g run.Group

	{
		g.Add(func() error {
			if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}, func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			server.Shutdown(ctx)
		})
	}

	{
		g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))
	}

	return g.Run()
}

// fileHandler serves the trace files in a directory, readable by browser
// based trace viewers on other origins, and the comparison report as a table.
type fileHandler struct {
	dir   string
	files http.Handler
}

func newFileHandler(dir string) *fileHandler {
	return &fileHandler{
		dir:   dir,
		files: http.StripPrefix("/traces/", http.FileServer(http.Dir(dir))),
	}
}

func (h *fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	switch {
	case r.URL.Path == "/":
		h.serveIndex(w, r)
	case r.URL.Path == "/comparison":
		h.serveComparison(w, r)
	case strings.HasPrefix(r.URL.Path, "/traces/"):
		h.files.ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *fileHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	matches, err := filepath.Glob(filepath.Join(h.dir, "*.json"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sort.Strings(matches)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, m := range matches {
		name := filepath.Base(m)
		if name == trcprof.DefaultComparisonPath {
			continue
		}
		fmt.Fprintf(w, "/traces/%s\n", name)
	}
	fmt.Fprintf(w, "/comparison\n")
}

func (h *fileHandler) serveComparison(w http.ResponseWriter, r *http.Request) {
	c, err := trcprof.ReadComparisonFile(filepath.Join(h.dir, trcprof.DefaultComparisonPath))
	switch {
	case errors.Is(err, os.ErrNotExist):
		http.Error(w, "no comparison report", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	switch r.URL.Query().Get("format") {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		_, _ = c.WriteTo(w)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_ = writeComparisonTable(w, c)
	}
}
