// Package api registers the operational HTTP endpoints: metrics, stats and
// manual job triggers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	StatsProvider

	// Trigger runs a scheduled job now.
	Trigger(ctx context.Context, job string) error
}

// Server wires HTTP routes for the ops API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	jobsHandler   *JobsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		jobsHandler:   NewJobsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", instrument("healthz", s.healthHandler.HandleHealth))
	mux.HandleFunc("/stats", instrument("stats", s.statsHandler.HandleStats))
	mux.HandleFunc("/jobs/", instrument("jobs", s.jobsHandler.HandleTrigger))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
