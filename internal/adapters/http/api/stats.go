// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/abelbejiga/cradle/internal/domain/model"
)

// StatsDependencies defines the interface for per-user read operations.
type StatsDependencies interface {
	UserStats(ctx context.Context, userID string) (model.UserStats, error)
	ScoreHistory(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error)
}

// StatsHandler handles per-user stats and history requests.
type StatsHandler struct {
	deps StatsDependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsDependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// HandleGetStats handles GET /scoring/stats?user_id=U requests.
func (h *StatsHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingArg)
		return
	}

	stats, err := h.deps.UserStats(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleGetHistory handles GET /scoring/history?user_id=U&limit=N requests.
// limit is optional; the service default applies when absent.
func (h *StatsHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingArg)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.deps.ScoreHistory(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// OpsHandler exposes service statistics for monitoring.
type OpsHandler struct {
	statsProvider StatsProvider
}

// NewOpsHandler creates a new ops stats handler.
func NewOpsHandler(statsProvider StatsProvider) *OpsHandler {
	return &OpsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /ops/stats requests.
func (h *OpsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
