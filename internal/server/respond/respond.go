// Package respond writes JSON responses and maps service errors to HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"medgate/backend/internal/apperrors"
)

// errorBody is the uniform error response shape.
type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logrus.WithError(err).Warn("respond: encode failed")
		}
	}
}

// ErrorMessage writes an error body with the given status and message.
func ErrorMessage(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message})
}

// Error maps a service error to an HTTP status and writes it. Unrecognized
// errors become 500 with a generic message so internals do not leak.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAccessDenied):
		ErrorMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		ErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrInvalidState):
		ErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrAlreadySummarized):
		ErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrUpstream):
		ErrorMessage(w, http.StatusBadGateway, err.Error())
	default:
		logrus.WithError(err).Error("internal error")
		ErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}
