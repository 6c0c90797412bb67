package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/foodrescue/internal/lifecycle"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// engineError maps a lifecycle error to its status code. Rejections are
// logged at WARN, anything else is a store failure and logged at ERROR.
func engineError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case lifecycle.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrNotFound):
		status = http.StatusNotFound
	case lifecycle.IsInvalidState(err):
		status = http.StatusConflict
	case errors.Is(err, lifecycle.ErrCodeMismatch):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", "post", r.PathValue("id"), "error", err)
		jsonError(w, status, "internal error")
		return
	}

	slog.Warn(op+" rejected", "post", r.PathValue("id"), "reason", err.Error())
	jsonError(w, status, err.Error())
}
