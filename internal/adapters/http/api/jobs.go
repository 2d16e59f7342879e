package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/pairdesk/internal/scheduler"
)

// JobsHandler runs scheduled jobs on demand.
type JobsHandler struct {
	deps Dependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

type triggerResponse struct {
	Job    string `json:"job"`
	Status string `json:"status"`
}

// HandleTrigger handles POST /jobs/{name} requests.
func (h *JobsHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/")
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingJob)
		return
	}

	err := h.deps.Trigger(r.Context(), name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, triggerResponse{Job: name, Status: "done"})
	case errors.Is(err, scheduler.ErrUnknownJob):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, scheduler.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case scheduler.IsSkip(err):
		writeJSON(w, http.StatusConflict, triggerResponse{Job: name, Status: "skipped"})
	default:
		writeError(w, http.StatusInternalServerError, "job_failed", err)
	}
}
