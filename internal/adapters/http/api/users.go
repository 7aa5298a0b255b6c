// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/abelbejiga/cradle/internal/domain/model"
)

// DevDependencies defines the interface for dev-only endpoints.
type DevDependencies interface {
	CreateUser(ctx context.Context, u model.User) error
}

// DevHandler handles dev-only seeding endpoints. Production accounts
// are provisioned by the identity side of the product, so these routes
// are only registered when dev endpoints are enabled.
type DevHandler struct {
	deps DevDependencies
}

// NewDevHandler creates a new dev handler.
func NewDevHandler(deps DevDependencies) *DevHandler {
	return &DevHandler{deps: deps}
}

type createUserRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ShowName    bool   `json:"show_name"`
}

// HandleCreateUser handles POST /dev/users requests.
func (h *DevHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing id"))
		return
	}

	err := h.deps.CreateUser(r.Context(), model.User{
		ID:          req.ID,
		DisplayName: req.DisplayName,
		ShowName:    req.ShowName,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}
