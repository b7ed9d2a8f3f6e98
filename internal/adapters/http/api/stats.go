package api

import (
	"net/http"
)

// StatsProvider reports refresh counters, the last refresh error and the
// shape of the published snapshot.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

type statsHandler struct {
	provider StatsProvider
}

// HandleStats serves GET /stats.
func (h statsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
