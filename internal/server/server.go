package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pre-msc-2027/remedy/internal/worker"
)

// RunFunc executes one job. logf appends to the job's log stream.
type RunFunc func(ctx context.Context, params worker.Params, logf func(format string, args ...any)) (*worker.Summary, error)

// Server ties the job store to an executor.
type Server struct {
	store  *Store
	run    RunFunc
	logger *slog.Logger
}

// New creates a Server over an explicit store and executor.
func New(store *Store, run RunFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  store,
		run:    run,
		logger: logger,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /improve-code", s.handleSubmit)
	mux.HandleFunc("GET /status/{id}", s.handleStatus)
	mux.HandleFunc("GET /jobs", s.handleList)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleDelete)
	mux.HandleFunc("GET /logs/{id}", s.handleLogs)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var params worker.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if params.RepoURL == "" {
		writeError(w, http.StatusBadRequest, "repo_url is required")
		return
	}

	job := s.store.Create(params)
	s.logger.Info("job submitted", "job", job.ID, "repo", params.RepoURL)

	// Detached from the request context; the job outlives the submit call.
	go s.execute(context.Background(), job.ID, params)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

func (s *Server) execute(ctx context.Context, id string, params worker.Params) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.store.SetCancel(id, cancel)

	s.store.SetStatus(id, StatusRunning)
	s.store.AppendLog(id, "job started for %s", params.RepoURL)

	summary, err := s.run(ctx, params, func(format string, args ...any) {
		s.store.AppendLog(id, format, args...)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.store.SetStatus(id, StatusCancelled)
			s.logger.Info("job cancelled", "job", id)
			return
		}
		s.store.AppendLog(id, "job failed: %v", err)
		s.store.Fail(id, err)
		s.logger.Warn("job failed", "job", id, "error", err)
		return
	}
	s.store.AppendLog(id, "job completed")
	s.store.Complete(id, summary)
	s.logger.Info("job completed", "job", id)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jobs": s.store.List()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.store.Delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	logs, ok := s.store.Logs(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job_id": id, "logs": logs})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
