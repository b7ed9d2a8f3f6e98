package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/osvo/club-world-cup-tracker/internal/domain/types"
)

// MatchesDependencies defines the interface for scored match reads.
type MatchesDependencies interface {
	Matches(ctx context.Context, date string) ([]types.MatchEntry, error)
}

// MatchesHandler handles match requests.
type MatchesHandler struct {
	deps MatchesDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchesDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandleGetMatches handles GET /matches[?date=YYYY-MM-DD] requests.
func (h *MatchesHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	matches, err := h.deps.Matches(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if matches == nil {
		matches = []types.MatchEntry{}
	}
	writeJSON(w, http.StatusOK, matches)
}
