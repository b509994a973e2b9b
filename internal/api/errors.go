package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/agrosirius-core/internal/plot"
	"github.com/nerrad567/agrosirius-core/internal/sowing"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps registry and ledger errors to HTTP responses.
// Anything unrecognised is logged by the caller and returned as a 500.
func writeDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, plot.ErrDuplicatePlot), errors.Is(err, sowing.ErrEventExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, plot.ErrInvalidGeometry),
		errors.Is(err, plot.ErrInvalidName),
		errors.Is(err, plot.ErrUnknownBlock),
		errors.Is(err, plot.ErrUnknownSector),
		errors.Is(err, sowing.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		return false
	}
	return true
}
