// Package config loads the server's runtime configuration from the
// environment, optionally preloaded from a ".env" file. It mirrors the
// teacher's env-driven configuration style (getenvInt in cmd/server) but
// centralizes it in one place the way a deployable service would.
package config

import (
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"nutristats/internal/applog"
)

// Config holds every environment-tunable knob of the server.
type Config struct {
	// HTTPAddr is the listen address for the HTTP boundary.
	HTTPAddr string
	// CSVPath is the path to the nutrition/activity/obesity dataset.
	CSVPath string
	// ResultsDir is the directory job result files are written to.
	ResultsDir string
	// NumWorkers is the fixed worker-pool size.
	NumWorkers int
}

const (
	envNumThreads = "TP_NUM_OF_THREADS"
	envHTTPAddr   = "HTTP_ADDR"
	envCSVPath    = "CSV_PATH"
	envResultsDir = "RESULTS_DIR"
)

// Load reads configuration from a ".env" file (if present) and the
// process environment. Missing or invalid values fall back to the
// documented defaults; TP_NUM_OF_THREADS falls back to the number of
// logical CPUs when absent or unparseable, per spec.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		applog.Errorf("could not load .env file: %v", err)
	}

	cfg := Config{
		HTTPAddr:   getenv(envHTTPAddr, "0.0.0.0:8000"),
		CSVPath:    getenv(envCSVPath, "../nutrition_activity_obesity_usa_subset.csv"),
		ResultsDir: getenv(envResultsDir, "./results"),
		NumWorkers: numWorkers(),
	}
	return cfg
}

func numWorkers() int {
	v := os.Getenv(envNumThreads)
	if v == "" {
		return runtime.NumCPU()
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		applog.Errorf("invalid %s=%q, falling back to logical CPU count", envNumThreads, v)
		return runtime.NumCPU()
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
