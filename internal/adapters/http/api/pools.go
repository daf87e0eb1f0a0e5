package api

import (
	"net/http"
)

// PoolsHandler serves pool listings and per-pool board state.
type PoolsHandler struct {
	deps PoolReader
}

// NewPoolsHandler creates a new pools handler.
func NewPoolsHandler(deps PoolReader) *PoolsHandler {
	return &PoolsHandler{deps: deps}
}

// HandleList handles GET /pools.
func (h *PoolsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	pools, err := h.deps.Pools(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pools)
}

// HandleStatus handles GET /pools/{id}/status.
func (h *PoolsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleHighlights handles GET /pools/{id}/highlights.
func (h *PoolsHandler) HandleHighlights(w http.ResponseWriter, r *http.Request) {
	hl, err := h.deps.Highlights(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hl)
}

// HandleLeader handles GET /pools/{id}/leader. A score with no matching
// cell is still 200 with found=false.
func (h *PoolsHandler) HandleLeader(w http.ResponseWriter, r *http.Request) {
	l, err := h.deps.Leader(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
