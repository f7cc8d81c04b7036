package handlers

import (
	"net/http"

	"pinshare-backend/internal/middleware"
	"pinshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
	pinService  *services.PinService
	wsHub       *services.WSHub
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, pinService *services.PinService, wsHub *services.WSHub) *UserHandler {
	return &UserHandler{
		userService: userService,
		pinService:  pinService,
		wsHub:       wsHub,
	}
}

// GetProfile handles GET /api/users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID := chi.URLParam(r, "id")

	profile, err := h.userService.GetProfile(ctx, targetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// ListPins handles GET /api/users/{id}/pins
func (h *UserHandler) ListPins(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetUserID(ctx)
	targetID := chi.URLParam(r, "id")

	page, limit := parsePagination(r)
	pins, err := h.pinService.ListByUser(ctx, targetID, page, limit, viewerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pins)
}

// ListSaved handles GET /api/users/{id}/saved
func (h *UserHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	targetID := chi.URLParam(r, "id")

	// Saved pins are private to their owner.
	if targetID != userID {
		respondError(w, "cannot view another user's saved pins", http.StatusForbidden)
		return
	}

	page, limit := parsePagination(r)
	pins, err := h.pinService.ListSaved(ctx, userID, page, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pins)
}

// ToggleFollow handles POST /api/users/{id}/follow
func (h *UserHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	targetID := chi.URLParam(r, "id")

	following, err := h.userService.ToggleFollow(ctx, targetID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if following {
		h.wsHub.NotifyNewFollower(targetID, userID)
	}

	respondJSON(w, http.StatusOK, map[string]bool{"following": following})
}
