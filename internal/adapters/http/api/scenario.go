package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/squares/internal/domain/model"
)

// ScenarioHandler serves projections of hypothetical scores.
type ScenarioHandler struct {
	deps ScenarioReader
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(deps ScenarioReader) *ScenarioHandler {
	return &ScenarioHandler{deps: deps}
}

func sideParam(r *http.Request) (model.Side, error) {
	side, ok := model.ParseSide(strings.TrimSpace(r.URL.Query().Get("side")))
	if !ok {
		return model.SideA, ErrBadSide
	}
	return side, nil
}

// intParam parses a non-negative query integer, returning def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadRequest, name)
	}
	return n, nil
}

// HandleProjection handles GET /pools/{id}/projection?side=&delta=.
func (h *ScenarioHandler) HandleProjection(w http.ResponseWriter, r *http.Request) {
	side, err := sideParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	delta, err := intParam(r, "delta", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	p, err := h.deps.Project(r.Context(), r.PathValue("id"), side, delta)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleFind handles GET /pools/{id}/find?side=&participant=&max=.
func (h *ScenarioHandler) HandleFind(w http.ResponseWriter, r *http.Request) {
	side, err := sideParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	participant := strings.TrimSpace(r.URL.Query().Get("participant"))
	if participant == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing participant", ErrBadRequest))
		return
	}
	maxDelta, err := intParam(r, "max", -1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res, err := h.deps.FindDelta(r.Context(), r.PathValue("id"), side, participant, maxDelta)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleScenarios handles GET /pools/{id}/scenarios?side=.
func (h *ScenarioHandler) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	side, err := sideParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	plays, err := h.deps.Scenarios(r.Context(), r.PathValue("id"), side)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plays)
}
