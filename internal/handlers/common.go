package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"pinshare-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Message: message})
}

// respondServiceError maps a service error onto the HTTP taxonomy.
// Unclassified errors become a generic 500; the detail stays in the log.
func respondServiceError(w http.ResponseWriter, err error) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeValidation:
			respondError(w, appErr.Message, http.StatusBadRequest)
			return
		case models.CodeUnauthorized:
			respondError(w, appErr.Message, http.StatusUnauthorized)
			return
		case models.CodeForbidden:
			respondError(w, appErr.Message, http.StatusForbidden)
			return
		case models.CodeNotFound:
			respondError(w, appErr.Message, http.StatusNotFound)
			return
		case models.CodeConflict:
			respondError(w, appErr.Message, http.StatusConflict)
			return
		}
	}

	log.Error().Err(err).Msg("Unexpected error")
	respondError(w, "internal server error", http.StatusInternalServerError)
}

// parsePagination reads page and limit query parameters. Zero values are
// normalized by the service layer.
func parsePagination(r *http.Request) (page, limit int) {
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil {
			page = parsed
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}
	return page, limit
}
