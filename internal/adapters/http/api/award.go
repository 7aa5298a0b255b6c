// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/abelbejiga/cradle/internal/adapters/repository"
	service "github.com/abelbejiga/cradle/internal/app"
)

// AwardDependencies defines the interface for award operations.
type AwardDependencies interface {
	AwardActivityPoints(ctx context.Context, userID, activityType string) service.AwardResult
	AwardTodoPoints(ctx context.Context, userID, priority string) service.AwardResult
	AwardDailySignIn(ctx context.Context, userID string) service.AwardResult
}

// AwardHandler handles the point-award endpoints.
type AwardHandler struct {
	deps AwardDependencies
}

// NewAwardHandler creates a new award handler.
func NewAwardHandler(deps AwardDependencies) *AwardHandler {
	return &AwardHandler{deps: deps}
}

// HandleActivity handles POST /scoring/activity requests.
func (h *AwardHandler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := decodeAward(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.ActivityType) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing activity_type"))
		return
	}
	writeAwardResult(w, h.deps.AwardActivityPoints(r.Context(), req.UserID, req.ActivityType))
}

// HandleTodo handles POST /scoring/todo requests.
func (h *AwardHandler) HandleTodo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := decodeAward(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Priority) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing priority"))
		return
	}
	writeAwardResult(w, h.deps.AwardTodoPoints(r.Context(), req.UserID, req.Priority))
}

// HandleDailySignIn handles POST /scoring/daily-signin requests.
func (h *AwardHandler) HandleDailySignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := decodeAward(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeAwardResult(w, h.deps.AwardDailySignIn(r.Context(), req.UserID))
}

// writeAwardResult maps an AwardResult onto an HTTP response. The
// duplicate daily sign-in is an expected outcome and stays a 200; only
// store failures become error statuses.
func writeAwardResult(w http.ResponseWriter, res service.AwardResult) {
	if res.Success || res.Err == nil {
		writeJSON(w, http.StatusOK, res)
		return
	}
	if errors.Is(res.Err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", res.Err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", res.Err)
}
