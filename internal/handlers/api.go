// Package handlers implements the JSON API endpoints. Every response
// uses the {success, data, message} envelope the mobile and CMS clients
// expect; list responses carry a pagination sibling.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"promptbuddy/internal/store"
)

// validate checks request DTO struct tags. Shared; Validate is thread-safe.
var validate = validator.New()

// envelope is the standard response shape.
type envelope struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Pagination *store.Pagination `json:"pagination,omitempty"`
	Type       string            `json:"type,omitempty"`
	Affected   *int64            `json:"affected,omitempty"`
}

func respond(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func respondData(w http.ResponseWriter, status int, data any, message string) {
	respond(w, status, envelope{Success: true, Data: data, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{Success: false, Message: message})
}

// decode parses the request body into dst and runs struct validation.
// On failure it writes a 400 and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// urlID parses the {id} route parameter. On failure it writes a 400 and
// returns false.
func urlID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// storeError maps a store failure onto the API's error taxonomy:
// not-found and conflict get their own statuses, everything else is an
// internal error logged with context.
func storeError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrConflict):
		respond(w, http.StatusConflict, envelope{
			Success: false,
			Message: err.Error(),
			Type:    "conflict",
		})
	default:
		slog.Error(message, "error", err)
		respondError(w, http.StatusInternalServerError, message)
	}
}
