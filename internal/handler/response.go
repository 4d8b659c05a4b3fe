package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON and writeError so the local API
// has one response shape.
//
// CONSISTENT ERROR FORMAT:
// Every error response has the same shape:
//   {"error": "NoRepositorySelected", "message": "select a repository before pushing"}
//
// "error" is the stable kind name from apperror.KindOf, the same name the
// push affordances and the CLI use, so a client can branch on it without
// parsing messages.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/leetpush/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Kind name, e.g. "AuthExpired"
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Offending input field, if any
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be written before the body: once Encode writes,
// later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps an error kind to its HTTP status.
//
// ERROR MAPPING:
// The service and coordinator layers return apperror kinds and know nothing
// about HTTP. The CLI maps the same kinds to colored messages instead.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrBusy):
		return http.StatusConflict // 409
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest // 400
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, apperror.ErrAuthExpired):
		return http.StatusUnauthorized // 401
	case errors.Is(err, apperror.ErrNoRepositorySelected):
		return http.StatusPreconditionFailed // 412
	case errors.Is(err, apperror.ErrNetworkFailure), errors.Is(err, apperror.ErrServerError):
		return http.StatusBadGateway // 502
	}
	return http.StatusInternalServerError
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// errors.As walks the whole wrap chain, so
//
//	fmt.Errorf("service/account: saving repository: %w", apperror.ServerError(...))
//
// still yields the *AppError with its message.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, statusFor(err), ErrorResponse{
			Error:   apperror.KindOf(err),
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	// Unknown error: never expose internal details (SQL, file paths) to the client.
	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal",
		Message: "An internal error occurred",
	})
}
