package api

import (
	"net/http"
)

// StatsProvider reports a monitoring snapshot of the matching service. A
// snapshot carrying an "error" key means the profile store could not be read.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the monitoring snapshot on /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler wraps provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats answers GET and HEAD. Pool counts change with every
// registration, so responses are never cached. A snapshot whose store read
// failed is still returned, under 503, so load balancers can take the
// instance out of rotation.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "api.stats", http.MethodGet, http.MethodHead)
		return
	}

	snapshot := h.provider.GetStats()
	status := http.StatusOK
	if _, failed := snapshot["error"]; failed {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-store")
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, snapshot)
}
