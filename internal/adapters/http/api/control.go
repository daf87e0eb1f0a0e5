package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ControlHandler serves commissioner actions.
type ControlHandler struct {
	deps Controls
}

// NewControlHandler creates a new control handler.
func NewControlHandler(deps Controls) *ControlHandler {
	return &ControlHandler{deps: deps}
}

// manualRequest mirrors the OpenAPI schema for PUT /pools/{id}/manual.
type manualRequest struct {
	A *int `json:"a"`
	B *int `json:"b"`
}

func (m manualRequest) validate() error {
	switch {
	case m.A == nil:
		return fmt.Errorf("%w: missing a", ErrBadRequest)
	case m.B == nil:
		return fmt.Errorf("%w: missing b", ErrBadRequest)
	case *m.A < 0 || *m.B < 0:
		return fmt.Errorf("%w: scores must be non-negative", ErrBadRequest)
	}
	return nil
}

// HandleRefresh handles POST /pools/{id}/refresh.
func (h *ControlHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Refresh(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleSetManual handles PUT /pools/{id}/manual.
func (h *ControlHandler) HandleSetManual(w http.ResponseWriter, r *http.Request) {
	var req manualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	st, err := h.deps.SetManualScores(r.Context(), r.PathValue("id"), *req.A, *req.B)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleClearManual handles DELETE /pools/{id}/manual.
func (h *ControlHandler) HandleClearManual(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.ClearManualScores(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
