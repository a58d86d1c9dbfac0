package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
)

// Client-facing messages for verification failures.
const (
	msgInvalidCode = "Invalid or expired code."
	msgExpiredCode = "Code expired. Please request a new one."
	msgInternal    = "internal server error"
)

// httpError maps a service error to a status and a message safe for clients.
// Anything unrecognised is logged and reported as a generic 500.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOrExpiredCode):
		writeError(w, http.StatusBadRequest, msgInvalidCode)
	case errors.Is(err, domain.ErrExpiredCode):
		writeError(w, http.StatusBadRequest, msgExpiredCode)
	case errors.Is(err, domain.ErrMissingIdentifier):
		writeError(w, http.StatusBadRequest, domain.ErrMissingIdentifier.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
