// Package httpapi is the HTTP boundary: it validates requests, calls
// jobmanager.Submit, and implements the polling/status/shutdown
// endpoints of spec.md §4.5/§6. Modeled on the teacher's
// internal/router (a central dispatch table from path to handler) but
// rebuilt on gorilla/mux + gorilla/handlers, the way
// ClusterCockpit-cc-backend's cmd/cc-backend wires its router.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"nutristats/internal/applog"
	"nutristats/internal/jobmanager"
	"nutristats/internal/metrics"
)

// Server wires a jobmanager.Manager to an HTTP mux.
type Server struct {
	jm      *jobmanager.Manager
	metrics *metrics.Registry
	router  *mux.Router
}

// New builds the route table described in spec.md §6, wrapped in
// request logging and panic recovery middleware.
func New(jm *jobmanager.Manager, mr *metrics.Registry) *Server {
	s := &Server{jm: jm, metrics: mr}

	r := mux.NewRouter()
	r.HandleFunc("/api/states_mean", s.handleSubmit(jobmanager.KindStatesMean, decodeQuestion)).Methods(http.MethodPost)
	r.HandleFunc("/api/state_mean", s.handleSubmit(jobmanager.KindStateMean, decodeQuestionState)).Methods(http.MethodPost)
	r.HandleFunc("/api/best5", s.handleSubmit(jobmanager.KindBest5, decodeQuestion)).Methods(http.MethodPost)
	r.HandleFunc("/api/worst5", s.handleSubmit(jobmanager.KindWorst5, decodeQuestion)).Methods(http.MethodPost)
	r.HandleFunc("/api/global_mean", s.handleSubmit(jobmanager.KindGlobalMean, decodeQuestion)).Methods(http.MethodPost)
	r.HandleFunc("/api/diff_from_mean", s.handleSubmit(jobmanager.KindDiffFromMean, decodeQuestion)).Methods(http.MethodPost)
	r.HandleFunc("/api/state_mean_by_category", s.handleSubmit(jobmanager.KindStateMeanByCategory, decodeQuestionState)).Methods(http.MethodPost)

	r.HandleFunc("/api/graceful_shutdown", s.handleGracefulShutdown).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs", s.handleJobs).Methods(http.MethodGet)
	r.HandleFunc("/api/num_jobs", s.handleNumJobs).Methods(http.MethodGet)
	r.HandleFunc("/api/get_results/{job_id}", s.handleGetResults).Methods(http.MethodGet)

	r.Handle("/api/metrics", mr.Handler()).Methods(http.MethodGet)

	s.router = r
	return s
}

// Handler returns the fully wrapped http.Handler to pass to http.Server.
func (s *Server) Handler() http.Handler {
	return handlers.RecoveryHandler()(handlers.CombinedLoggingHandler(requestLogWriter{}, s.router))
}

// requestLogWriter adapts gorilla/handlers' Apache-style access log to
// the single applog line format, rather than a second log stream.
type requestLogWriter struct{}

func (requestLogWriter) Write(p []byte) (int, error) {
	applog.Info(string(p))
	return len(p), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONRaw(w http.ResponseWriter, status int, raw string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(raw))
}

// questionPayload/questionStatePayload mirror jobmanager's wire schemas;
// kept local so httpapi doesn't need jobmanager's unexported types.
type questionPayload struct {
	Question string `json:"question"`
}

type questionStatePayload struct {
	Question string `json:"question"`
	State    string `json:"state"`
}

func decodeQuestion(r *http.Request) (string, bool) {
	var p questionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return "", false
	}
	b, _ := json.Marshal(p)
	return string(b), true
}

func decodeQuestionState(r *http.Request) (string, bool) {
	var p questionStatePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return "", false
	}
	b, _ := json.Marshal(p)
	return string(b), true
}

// handleSubmit builds a POST handler for one job kind: decode the
// request with decode, check shutdown, submit, reply per spec.md §4.5.
func (s *Server) handleSubmit(kind jobmanager.Kind, decode func(*http.Request) (string, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		applog.Infof("[%s] received %s request", reqID, kind)

		payloadJSON, ok := decode(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"status": "error",
				"reason": "malformed request body",
			})
			return
		}

		if s.jm.IsShuttingDown() {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
				"status": "error",
				"reason": "server is already shut down",
			})
			return
		}

		id, err := s.jm.Submit(kind, payloadJSON)
		if err != nil {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
				"status": "error",
				"reason": "server is already shut down",
			})
			return
		}
		s.metrics.JobSubmitted()

		applog.Infof("[%s] assigned job_id=%d kind=%s", reqID, id, kind)
		writeJSON(w, http.StatusOK, map[string]uint32{"job_id": id})
	}
}

// handleGracefulShutdown initiates shutdown on first call (never
// blocking on drain) and replies with the pending-jobs snapshot; a
// second call observes the flag already set and returns 405.
func (s *Server) handleGracefulShutdown(w http.ResponseWriter, r *http.Request) {
	if s.jm.IsShuttingDown() {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"status": "error",
			"reason": "server is already shut down",
		})
		return
	}

	s.jm.Shutdown()

	if s.jm.CountPending() > 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "done"})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	snapshot := s.jm.StatusSnapshot()
	ids := make([]uint32, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sortUint32(ids)

	data := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		data = append(data, map[string]string{strconv.FormatUint(uint64(id), 10): string(snapshot[id])})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "done",
		"data":   data,
	})
}

func (s *Server) handleNumJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"pending": s.jm.CountPending()})
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["job_id"]
	id64, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "error",
			"reason": "Invalid job_id",
		})
		return
	}
	id := uint32(id64)

	status, ok := s.jm.Status(id)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "error",
			"reason": "Invalid job_id",
		})
		return
	}

	if status == jobmanager.StatusRunning {
		writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
		return
	}

	body, err := readResultFile(s.jm.ResultPath(id))
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "error",
			"reason": "Result file is missing",
		})
		return
	}

	if !json.Valid(body) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "done",
			"data":   map[string]string{"raw": string(body)},
		})
		return
	}

	s.metrics.JobCompleted()
	writeJSONRaw(w, http.StatusOK, `{"status":"done","data":`+string(trimNewline(body))+`}`)
}

func sortUint32(xs []uint32) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
