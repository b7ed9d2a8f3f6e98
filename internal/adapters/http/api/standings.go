package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/osvo/club-world-cup-tracker/internal/domain/types"
)

// StandingsDependencies defines the interface for standings reads.
type StandingsDependencies interface {
	Standings(ctx context.Context) ([]types.StandingEntry, error)
}

// StandingsHandler handles standings requests.
type StandingsHandler struct {
	deps     StandingsDependencies
	maxLimit int
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps StandingsDependencies, maxLimit int) *StandingsHandler {
	return &StandingsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetStandings handles GET /standings?limit=N requests. Without a
// limit the table is returned up to the configured maximum.
func (h *StandingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: limit must not exceed %d", ErrBadRequest, h.maxLimit))
			return
		}
		n = v
	}

	entries, err := h.deps.Standings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	// Shade against the whole table before cutting it.
	entries = colorStandings(entries)
	if n < len(entries) {
		entries = entries[:n]
	}
	writeJSON(w, http.StatusOK, entries)
}
