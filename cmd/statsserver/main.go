// Command statsserver is the process entrypoint: it recreates the
// results directory, loads the dataset, wires the worker pool, job
// manager and HTTP boundary, and serves until SIGINT/SIGTERM.
// Grounded on the teacher's cmd/server/main.go (env-driven pool sizing,
// signal.Notify triggering an orderly close) and the original Rust
// app.rs's startup sequencing (prep_results_dir, load_csv, serve).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutristats/internal/applog"
	"nutristats/internal/config"
	"nutristats/internal/dataset"
	"nutristats/internal/httpapi"
	"nutristats/internal/jobmanager"
	"nutristats/internal/metrics"
	"nutristats/internal/workerpool"
)

func main() {
	cfg := config.Load()

	if err := prepResultsDir(cfg.ResultsDir); err != nil {
		applog.Errorf("cannot prepare results dir %s: %v", cfg.ResultsDir, err)
		os.Exit(1)
	}

	ds, err := dataset.Load(cfg.CSVPath)
	if err != nil {
		applog.Errorf("cannot load dataset %s: %v", cfg.CSVPath, err)
		os.Exit(1)
	}
	applog.Infof("loaded %d rows from %s", ds.Len(), cfg.CSVPath)

	pool := workerpool.New(cfg.NumWorkers)
	jm := jobmanager.New(pool, ds, cfg.ResultsDir)
	mr := metrics.New(pool)
	api := httpapi.New(jm, mr)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Handler(),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		applog.Info("signal received, shutting down")
		jm.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			applog.Errorf("http server shutdown: %v", err)
		}
	}()

	applog.Infof("HTTP server starting on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		applog.Errorf("listen failed: %v", err)
		os.Exit(1)
	}
}

// prepResultsDir deletes any existing ./results (file or directory) and
// recreates it empty, per spec.md §6: persisted state is non-durable
// across restarts.
func prepResultsDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	return os.MkdirAll(path, 0o755)
}
