package api

import (
	"net/http"
)

// StatsProvider exposes a snapshot of service state.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the service snapshot as JSON.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler returns a handler reading from p.
func NewStatsHandler(p StatsProvider) *StatsHandler {
	return &StatsHandler{provider: p}
}

// HandleStats serves GET and HEAD /stats. Other methods get 404.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
