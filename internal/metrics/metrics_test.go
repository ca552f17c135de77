package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePool struct{ pending int }

func (f *fakePool) Pending() int { return f.pending }

func TestMetricsExposesCounters(t *testing.T) {
	pool := &fakePool{pending: 3}
	r := New(pool)
	r.JobSubmitted()
	r.JobSubmitted()
	r.JobCompleted()

	req := httptest.NewRequest("GET", "/api/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	require.True(t, strings.Contains(body, "statsserver_jobs_submitted_total 2"))
	require.True(t, strings.Contains(body, "statsserver_jobs_completed_total 1"))
	require.True(t, strings.Contains(body, "statsserver_queue_depth 3"))
}
