package handlers

import (
	"net/http"

	"pinshare-backend/internal/middleware"
	"pinshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// maxUploadSize bounds the in-memory portion of a multipart upload.
const maxUploadSize = 32 << 20 // 32 MB

// PinHandler handles pin-related HTTP requests
type PinHandler struct {
	pinService *services.PinService
	wsHub      *services.WSHub
}

// NewPinHandler creates a new pin handler
func NewPinHandler(pinService *services.PinService, wsHub *services.WSHub) *PinHandler {
	return &PinHandler{
		pinService: pinService,
		wsHub:      wsHub,
	}
}

// List handles GET /api/pins
func (h *PinHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetUserID(ctx)

	page, limit := parsePagination(r)
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	feed, err := h.pinService.Feed(ctx, page, limit, search, category, viewerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, feed)
}

// Get handles GET /api/pins/{id}
func (h *PinHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetUserID(ctx)
	pinID := chi.URLParam(r, "id")

	pin, err := h.pinService.Get(ctx, pinID, viewerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pin)
}

// Create handles POST /api/pins (multipart form)
func (h *PinHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	pin, err := h.pinService.Create(ctx, userID, services.CreatePinInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Link:        r.FormValue("link"),
		Category:    r.FormValue("category"),
		ContentType: contentType,
		Image:       file,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to create pin")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("pin_id", pin.ID).
		Msg("Pin created")

	respondJSON(w, http.StatusCreated, pin)
}

// ToggleLike handles POST /api/pins/{id}/like
func (h *PinHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	pinID := chi.URLParam(r, "id")

	liked, ownerID, err := h.pinService.ToggleLike(ctx, pinID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if liked {
		h.wsHub.NotifyPinLiked(ownerID, pinID, userID)
	}

	respondJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// ToggleSave handles POST /api/pins/{id}/save
func (h *PinHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	pinID := chi.URLParam(r, "id")

	saved, err := h.pinService.ToggleSave(ctx, pinID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

// Delete handles DELETE /api/pins/{id}
func (h *PinHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	pinID := chi.URLParam(r, "id")

	if err := h.pinService.Delete(ctx, pinID, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("pin_id", pinID).
		Msg("Pin deleted")

	w.WriteHeader(http.StatusNoContent)
}
