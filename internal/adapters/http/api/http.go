// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/squares/internal/app"
	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/internal/domain/types"
	"github.com/okian/squares/internal/livesync"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	PoolReader
	ScenarioReader
	Controls
}

// PoolReader answers the per-pool board queries.
type PoolReader interface {
	Pools(ctx context.Context) ([]types.Pool, error)
	Status(ctx context.Context, id string) (types.Status, error)
	Highlights(ctx context.Context, id string) (types.Highlights, error)
	Leader(ctx context.Context, id string) (types.Leader, error)
}

// ScenarioReader answers "what if" queries.
type ScenarioReader interface {
	Project(ctx context.Context, id string, side model.Side, delta int) (types.Projection, error)
	FindDelta(ctx context.Context, id string, side model.Side, participant string, maxDelta int) (types.FindResult, error)
	Scenarios(ctx context.Context, id string, side model.Side) ([]types.Scenario, error)
}

// Controls are the commissioner actions.
type Controls interface {
	Refresh(ctx context.Context, id string) (types.Status, error)
	SetManualScores(ctx context.Context, id string, scoreA, scoreB int) (types.Status, error)
	ClearManualScores(ctx context.Context, id string) (types.Status, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	poolsHandler    *PoolsHandler
	scenarioHandler *ScenarioHandler
	controlHandler  *ControlHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		poolsHandler:    NewPoolsHandler(deps),
		scenarioHandler: NewScenarioHandler(deps),
		controlHandler:  NewControlHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /pools", MetricsMiddleware(s.poolsHandler.HandleList, "pools"))
	mux.HandleFunc("GET /pools/{id}/status", MetricsMiddleware(s.poolsHandler.HandleStatus, "status"))
	mux.HandleFunc("GET /pools/{id}/highlights", MetricsMiddleware(s.poolsHandler.HandleHighlights, "highlights"))
	mux.HandleFunc("GET /pools/{id}/leader", MetricsMiddleware(s.poolsHandler.HandleLeader, "leader"))

	mux.HandleFunc("GET /pools/{id}/projection", MetricsMiddleware(s.scenarioHandler.HandleProjection, "projection"))
	mux.HandleFunc("GET /pools/{id}/find", MetricsMiddleware(s.scenarioHandler.HandleFind, "find"))
	mux.HandleFunc("GET /pools/{id}/scenarios", MetricsMiddleware(s.scenarioHandler.HandleScenarios, "scenarios"))

	mux.HandleFunc("POST /pools/{id}/refresh", MetricsMiddleware(s.controlHandler.HandleRefresh, "refresh"))
	mux.HandleFunc("PUT /pools/{id}/manual", MetricsMiddleware(s.controlHandler.HandleSetManual, "manual"))
	mux.HandleFunc("DELETE /pools/{id}/manual", MetricsMiddleware(s.controlHandler.HandleClearManual, "manual"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service sentinels into status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPoolNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", err)
	case errors.Is(err, livesync.ErrInFlight):
		writeError(w, http.StatusConflict, "in_flight", err)
	case errors.Is(err, service.ErrNotSyncable):
		writeError(w, http.StatusConflict, "not_syncable", err)
	case errors.Is(err, livesync.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
