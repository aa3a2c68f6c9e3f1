package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/queryforge-io/queryforge-engine/pkg/apperrors"
)

// ErrorBody is the error envelope returned by every endpoint.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(ErrorBody{
		Code:    errorCode,
		Message: message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteAppError maps a service error onto the HTTP status for its code and
// writes the error envelope. Unknown errors become a generic 500.
func WriteAppError(w http.ResponseWriter, err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return ErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForCode(appErr.Code))
	return json.NewEncoder(w).Encode(ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

func statusForCode(code string) int {
	switch code {
	case apperrors.CodeUnsupportedDatabase, apperrors.CodeInvalidQuery:
		return http.StatusBadRequest
	case apperrors.CodeConnectionNotFound:
		return http.StatusNotFound
	case apperrors.CodeConnectionAlreadyExists:
		return http.StatusConflict
	case apperrors.CodeConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
