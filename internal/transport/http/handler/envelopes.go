package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/unalone/unalone-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UserEnvelope wraps responses that carry the current user.
type UserEnvelope struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user,omitempty"`
}

// PlanEnvelope wraps plan-creation responses.
type PlanEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Plan    *domain.Plan `json:"plan,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps a service error to an HTTP status via the domain
// sentinels. Unexpected errors are logged and collapsed to a generic 500
// so internals never leak to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		// The API reports duplicate registrations and full plans as plain
		// client errors, matching the error taxonomy of the web client.
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("unexpected error", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
