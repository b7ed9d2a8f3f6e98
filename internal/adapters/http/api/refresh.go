package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxRefreshBody = 4 << 10

// RefreshDependencies defines the interface for asynchronous refreshes.
type RefreshDependencies interface {
	// RequestRefresh queues a refresh. Returns false on backpressure.
	RequestRefresh(ctx context.Context, reason string) (string, bool)
}

// refreshRequest mirrors the OpenAPI schema for POST /refresh. The body is optional.
type refreshRequest struct {
	Reason string `json:"reason"`
}

type ackResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

// RefreshHandler handles refresh requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// HandlePostRefresh handles POST /refresh requests.
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req refreshRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRefreshBody))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "api"
	}

	id, ok := h.deps.RequestRefresh(r.Context(), reason)
	if !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RequestID: id})
}
