package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edvin/branchbox/internal/core"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// ServiceStatus maps a core error to the HTTP status it is reported with.
func ServiceStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotConfigured), errors.Is(err, core.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrDeploy):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrProvision):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err with the status ServiceStatus assigns to it.
func WriteServiceError(w http.ResponseWriter, err error) {
	WriteError(w, ServiceStatus(err), err.Error())
}
