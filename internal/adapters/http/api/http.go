// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/abelbejiga/cradle/internal/app"
	"github.com/abelbejiga/cradle/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AwardActivityPoints(ctx context.Context, userID, activityType string) service.AwardResult
	AwardTodoPoints(ctx context.Context, userID, priority string) service.AwardResult
	AwardDailySignIn(ctx context.Context, userID string) service.AwardResult

	Leaderboard(ctx context.Context, minScore int) ([]model.LeaderboardEntry, error)
	ScoreHistory(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error)
	UserStats(ctx context.Context, userID string) (model.UserStats, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the scoring API.
type Server struct {
	healthHandler      *HealthHandler
	awardHandler       *AwardHandler
	leaderboardHandler *LeaderboardHandler
	statsHandler       *StatsHandler
	opsHandler         *OpsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		awardHandler:       NewAwardHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		statsHandler:       NewStatsHandler(deps),
		opsHandler:         NewOpsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/ops/stats", MetricsMiddleware(s.opsHandler.HandleStats, "ops_stats"))
	mux.HandleFunc("/scoring/activity", MetricsMiddleware(s.awardHandler.HandleActivity, "activity"))
	mux.HandleFunc("/scoring/todo", MetricsMiddleware(s.awardHandler.HandleTodo, "todo"))
	mux.HandleFunc("/scoring/daily-signin", MetricsMiddleware(s.awardHandler.HandleDailySignIn, "daily_signin"))
	mux.HandleFunc("/scoring/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/scoring/stats", MetricsMiddleware(s.statsHandler.HandleGetStats, "stats"))
	mux.HandleFunc("/scoring/history", MetricsMiddleware(s.statsHandler.HandleGetHistory, "history"))
}

// RegisterDev attaches dev-only routes. Never called in production
// wiring; gated behind configuration.
func (s *Server) RegisterDev(ctx context.Context, mux *http.ServeMux, deps DevDependencies) {
	devHandler := NewDevHandler(deps)
	mux.HandleFunc("/dev/users", MetricsMiddleware(devHandler.HandleCreateUser, "dev_users"))
}

// awardRequest is the shared body shape for the POST /scoring endpoints.
type awardRequest struct {
	UserID       string `json:"user_id"`
	ActivityType string `json:"activity_type,omitempty"`
	Priority     string `json:"priority,omitempty"`
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

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// decodeAward parses and minimally validates an award request body.
func decodeAward(r *http.Request) (awardRequest, error) {
	var req awardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return awardRequest{}, errors.New("invalid JSON body")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return awardRequest{}, errors.New("missing user_id")
	}
	return req, nil
}
