package handlers

import (
	"encoding/json"
	"net/http"

	"pinshare-backend/internal/middleware"
	"pinshare-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.authService.Signup(ctx, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", resp.User.ID).
		Str("username", resp.User.Username).
		Msg("User registered")

	respondJSON(w, http.StatusCreated, resp)
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", resp.User.ID).Msg("User logged in")

	respondJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.authService.Me(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
