package api

import (
	"context"
	"net/http"

	"github.com/osvo/club-world-cup-tracker/internal/domain/types"
)

// SeriesDependencies defines the interface for series reads.
type SeriesDependencies interface {
	Series(ctx context.Context) (types.SeriesView, error)
}

// SeriesHandler handles cumulative series requests.
type SeriesHandler struct {
	deps SeriesDependencies
}

// NewSeriesHandler creates a new series handler.
func NewSeriesHandler(deps SeriesDependencies) *SeriesHandler {
	return &SeriesHandler{deps: deps}
}

// HandleGetSeries handles GET /series requests.
func (h *SeriesHandler) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.Series(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	view.Series = colorSeries(view.Series)
	writeJSON(w, http.StatusOK, view)
}
