// Package jobmanager is the coordination layer between HTTP submissions
// and worker-pool execution: it issues job identifiers, tracks the
// Running/Done state machine, enqueues wrapped work units onto the
// worker pool, and persists each job's result JSON under exclusive
// per-job locking. Grounded on the teacher's internal/jobs.Manager,
// generalized to the fixed kernel dispatch table of spec.md §4.4.
package jobmanager

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"nutristats/internal/applog"
	"nutristats/internal/dataset"
	"nutristats/internal/kernels"
	"nutristats/internal/workerpool"
)

// Status is the job state machine: Running -> Done, no other
// transition is legal.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
)

// Kind identifies which analytical kernel a job dispatches to.
type Kind string

const (
	KindStatesMean            Kind = "STATES_MEAN"
	KindStateMean             Kind = "STATE_MEAN"
	KindBest5                 Kind = "BEST_5"
	KindWorst5                Kind = "WORST_5"
	KindGlobalMean            Kind = "GLOBAL_MEAN"
	KindDiffFromMean          Kind = "DIFF_FROM_MEAN"
	KindMeanByCategory        Kind = "MEAN_BY_CATEGORY"
	KindStateMeanByCategory   Kind = "STATE_MEAN_BY_CATEGORY"
)

// ErrShuttingDown is returned by Submit once Shutdown has been called.
var ErrShuttingDown = errors.New("jobmanager: server is already shut down")

// questionPayload is the wire schema for kinds taking only a question.
type questionPayload struct {
	Question string `json:"question"`
}

// questionStatePayload is the wire schema for kinds also taking a state.
type questionStatePayload struct {
	Question string `json:"question"`
	State    string `json:"state"`
}

// Manager issues job identifiers, records per-job status, and persists
// results to resultsDir/{id}.json.
type Manager struct {
	pool       *workerpool.Pool
	ds         *dataset.Dataset
	resultsDir string

	nextID uint32

	mu       sync.RWMutex
	statuses map[uint32]Status

	fileLocks sync.Map // id uint32 -> *sync.Mutex, present only while a worker writes

	shuttingDown atomic.Bool
}

// New constructs a Manager bound to pool, ds and resultsDir. resultsDir
// must already exist (the caller recreates it empty at startup, per
// spec.md §6).
func New(pool *workerpool.Pool, ds *dataset.Dataset, resultsDir string) *Manager {
	return &Manager{
		pool:       pool,
		ds:         ds,
		resultsDir: resultsDir,
		statuses:   make(map[uint32]Status),
	}
}

// Submit allocates the next monotonic job id, records it Running, and
// enqueues a work unit that computes and persists the result
// asynchronously. Returns ErrShuttingDown if shutdown has begun.
func (m *Manager) Submit(kind Kind, payloadJSON string) (uint32, error) {
	if m.shuttingDown.Load() {
		return 0, ErrShuttingDown
	}

	id := atomic.AddUint32(&m.nextID, 1)

	m.mu.Lock()
	m.statuses[id] = StatusRunning
	m.mu.Unlock()

	m.pool.Submit(func() {
		m.execute(id, kind, payloadJSON)
	})

	return id, nil
}

// execute runs on a worker goroutine: it resolves the kernel JSON for
// (kind, payloadJSON), writes it to the job's result file under an
// exclusive guard, and transitions the job to Done. Any I/O or
// deserialization failure is logged and leaves the job Running (spec.md
// §9, open question (b)).
func (m *Manager) execute(id uint32, kind Kind, payloadJSON string) {
	if err := os.MkdirAll(m.resultsDir, 0o755); err != nil {
		applog.Errorf("job %d: cannot create results dir: %v", id, err)
		return
	}

	resultPath := filepath.Join(m.resultsDir, fmt.Sprintf("%d.json", id))
	f, err := os.OpenFile(resultPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		applog.Errorf("job %d: cannot create result file %s: %v", id, resultPath, err)
		return
	}
	defer f.Close()

	guard := &sync.Mutex{}
	guard.Lock()
	m.fileLocks.Store(id, guard)
	defer func() {
		guard.Unlock()
		m.fileLocks.Delete(id)
	}()

	body, err := m.dispatch(kind, payloadJSON)
	if err != nil {
		applog.Errorf("job %d: %v", id, err)
		return
	}

	if _, err := f.WriteString(body + "\n"); err != nil {
		applog.Errorf("job %d: cannot write result file: %v", id, err)
		return
	}

	m.mu.Lock()
	m.statuses[id] = StatusDone
	m.mu.Unlock()
}

// dispatch deserializes payloadJSON per kind's wire schema and invokes
// the matching analytical kernel, per the dispatch table of spec.md
// §4.4.
func (m *Manager) dispatch(kind Kind, payloadJSON string) (string, error) {
	switch kind {
	case KindStatesMean:
		var p questionPayload
		if err := json.Unmarshal([]byte(payloadJSON), &p); err != nil {
			return "", fmt.Errorf("bad payload for %s: %w", kind, err)
		}
		return kernels.StatesMean(m.ds, p.Question), nil

	case KindStateMean:
		var p questionStatePayload
		if err := json.Unmarshal([]byte(payloadJSON), &p); err != nil {
			return "", fmt.Errorf("bad payload for %s: %w", kind, err)
		}
		return kernels.StateMean(m.ds, p.Question, p.State), nil

	case KindBest5:
		var p questionPayload
		if err := json.Unmarshal([]byte(payloadJSON), &p); err != nil {
			return "", fmt.Errorf("bad payload for %s: %w", kind, err)
		}
		return kernels.Best5(m.ds, p.Question), nil

	case KindWorst5:
		var p questionPayload
		if err := json.Unmarshal([]byte(payloadJSON), &p); err != nil {
			return "", fmt.Errorf("bad payload for %s: %w", kind, err)
		}
		return kernels.Worst5(m.ds, p.Question), nil

	case KindGlobalMean:
		var p questionPayload
		if err := json.Unmarshal([]byte(payloadJSON), &p); err != nil {
			return "", fmt.Errorf("bad payload for %s: %w", kind, err)
		}
		return kernels.GlobalMean(m.ds, p.Question), nil

	case KindDiffFromMean:
		var p questionPayload
		if err := json.Unmarshal([]byte(payloadJSON), &p); err != nil {
			return "", fmt.Errorf("bad payload for %s: %w", kind, err)
		}
		return kernels.DiffFromMean(m.ds, p.Question), nil

	case KindMeanByCategory:
		var p questionPayload
		if err := json.Unmarshal([]byte(payloadJSON), &p); err != nil {
			return "", fmt.Errorf("bad payload for %s: %w", kind, err)
		}
		return kernels.MeanByCategory(m.ds, p.Question), nil

	case KindStateMeanByCategory:
		var p questionStatePayload
		if err := json.Unmarshal([]byte(payloadJSON), &p); err != nil {
			return "", fmt.Errorf("bad payload for %s: %w", kind, err)
		}
		return kernels.StateMeanByCategory(m.ds, p.Question, p.State), nil

	default:
		return "", fmt.Errorf("unknown job kind %q", kind)
	}
}

// Status returns the current status of id and whether it exists.
func (m *Manager) Status(id uint32) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.statuses[id]
	return st, ok
}

// StatusSnapshot returns a point-in-time copy of every job's status.
func (m *Manager) StatusSnapshot() map[uint32]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uint32]Status, len(m.statuses))
	for id, st := range m.statuses {
		out[id] = st
	}
	return out
}

// CountPending returns the number of jobs currently Running.
func (m *Manager) CountPending() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, st := range m.statuses {
		if st == StatusRunning {
			n++
		}
	}
	return n
}

// IsShuttingDown reports whether Shutdown has been called.
func (m *Manager) IsShuttingDown() bool {
	return m.shuttingDown.Load()
}

// Shutdown stops accepting new jobs immediately and drains the worker
// pool in the background, so callers (the HTTP boundary in particular)
// never block on in-flight job completion. Idempotent: calls after the
// first are no-ops.
func (m *Manager) Shutdown() {
	if !m.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	applog.Info("graceful shutdown initiated")
	go func() {
		m.pool.Shutdown()
		applog.Info("graceful shutdown complete")
	}()
}

// ResultPath returns the path a Done job's result file lives at.
func (m *Manager) ResultPath(id uint32) string {
	return filepath.Join(m.resultsDir, fmt.Sprintf("%d.json", id))
}
