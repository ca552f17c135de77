package jobmanager

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nutristats/internal/dataset"
	"nutristats/internal/workerpool"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	csvPath := filepath.Join(t.TempDir(), "fixture.csv")
	body := "LocationDesc,Question,Data_Value,StratificationCategory1,Stratification1\n" +
		"CA,Q1,10.0,Total,Total\n" +
		"TX,Q1,40.0,Total,Total\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(body), 0o644))
	ds, err := dataset.Load(csvPath)
	require.NoError(t, err)

	pool := workerpool.New(2)
	t.Cleanup(pool.Shutdown)

	return New(pool, ds, t.TempDir())
}

func waitDone(t *testing.T, m *Manager, id uint32) {
	t.Helper()
	require.Eventually(t, func() bool {
		st, ok := m.Status(id)
		return ok && st == StatusDone
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSubmitAssignsMonotonicIDs(t *testing.T) {
	m := newTestManager(t)

	id1, err := m.Submit(KindStatesMean, `{"question":"Q1"}`)
	require.NoError(t, err)
	id2, err := m.Submit(KindStatesMean, `{"question":"Q1"}`)
	require.NoError(t, err)

	require.Equal(t, uint32(1), id1)
	require.Equal(t, uint32(2), id2)
}

func TestSubmitTransitionsRunningToDone(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Submit(KindStatesMean, `{"question":"Q1"}`)
	require.NoError(t, err)

	st, ok := m.Status(id)
	require.True(t, ok)
	require.Equal(t, StatusRunning, st)

	waitDone(t, m, id)

	body, err := os.ReadFile(m.ResultPath(id))
	require.NoError(t, err)

	var parsed map[string]float64
	require.NoError(t, json.Unmarshal(body, &parsed))
	require.Equal(t, 10.0, parsed["CA"])
	require.Equal(t, 40.0, parsed["TX"])
}

func TestConcurrentJobsWriteDistinctFiles(t *testing.T) {
	m := newTestManager(t)

	var ids []uint32
	for i := 0; i < 20; i++ {
		id, err := m.Submit(KindStateMean, `{"question":"Q1","state":"CA"}`)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for _, id := range ids {
		waitDone(t, m, id)
	}
	for _, id := range ids {
		_, err := os.Stat(m.ResultPath(id))
		require.NoError(t, err)
	}
}

func TestCountPending(t *testing.T) {
	m := newTestManager(t)
	require.Equal(t, 0, m.CountPending())

	id, err := m.Submit(KindStatesMean, `{"question":"Q1"}`)
	require.NoError(t, err)
	waitDone(t, m, id)

	require.Equal(t, 0, m.CountPending())
}

func TestShutdownRejectsNewSubmissions(t *testing.T) {
	m := newTestManager(t)
	m.Shutdown()

	_, err := m.Submit(KindStatesMean, `{"question":"Q1"}`)
	require.ErrorIs(t, err, ErrShuttingDown)
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	m.Shutdown()
	m.Shutdown()
	require.True(t, m.IsShuttingDown())
}

func TestStatusSnapshotIsPointInTime(t *testing.T) {
	m := newTestManager(t)
	id, err := m.Submit(KindStatesMean, `{"question":"Q1"}`)
	require.NoError(t, err)
	waitDone(t, m, id)

	snap := m.StatusSnapshot()
	require.Equal(t, StatusDone, snap[id])
}
