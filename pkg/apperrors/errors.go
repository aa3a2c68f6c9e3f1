// Package apperrors defines the typed error taxonomy shared by services and
// handlers. Each error carries a stable code string that the HTTP layer maps
// to a status; the codes are a boundary contract and must not change.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Stable error codes surfaced in API error envelopes.
const (
	CodeUnsupportedDatabase     = "UNSUPPORTED_DATABASE"
	CodeAdapterNotFound         = "ADAPTER_NOT_FOUND"
	CodeRegistrationConflict    = "REGISTRATION_CONFLICT"
	CodeConnectionNotFound      = "CONNECTION_NOT_FOUND"
	CodeConnectionAlreadyExists = "CONNECTION_ALREADY_EXISTS"
	CodeConnectionFailed        = "CONNECTION_FAILED"
	CodeInvalidQuery            = "INVALID_QUERY"
	CodeQueryExecutionError     = "QUERY_EXECUTION_ERROR"
	CodeNlQueryGenerationError  = "NL_QUERY_GENERATION_ERROR"
)

// AppError is an error with a stable code and optional structured details.
type AppError struct {
	Code    string
	Message string
	Details map[string]any
	wrapped error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.wrapped
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// UnsupportedDatabase indicates a connection URL matched no registered adapter
// prefix. The known prefixes are included so clients can correct the URL.
func UnsupportedDatabase(connectionURL string, knownPrefixes []string) *AppError {
	return &AppError{
		Code: CodeUnsupportedDatabase,
		Message: fmt.Sprintf("unsupported database connection URL: %s (supported prefixes: %s)",
			connectionURL, strings.Join(knownPrefixes, ", ")),
		Details: map[string]any{
			"connectionUrl":     connectionURL,
			"supportedPrefixes": knownPrefixes,
		},
	}
}

// AdapterNotFound indicates a lookup by dialect identifier found no adapter.
// This should not occur on valid input and is treated as a server error.
func AdapterNotFound(dbType string) *AppError {
	return &AppError{
		Code:    CodeAdapterNotFound,
		Message: fmt.Sprintf("no adapter registered for database type %q", dbType),
		Details: map[string]any{"dbType": dbType},
	}
}

// RegistrationConflict indicates two different adapter instances claimed the
// same prefix or type identifier. Fatal at startup.
func RegistrationConflict(reason string) *AppError {
	return &AppError{
		Code:    CodeRegistrationConflict,
		Message: "adapter registration conflict: " + reason,
	}
}

// ConnectionNotFound indicates an operation referenced a connection name that
// is absent from the store.
func ConnectionNotFound(name string) *AppError {
	return &AppError{
		Code:    CodeConnectionNotFound,
		Message: fmt.Sprintf("database connection %q not found", name),
		Details: map[string]any{"name": name},
	}
}

// ConnectionAlreadyExists indicates a create with a name already in use.
func ConnectionAlreadyExists(name string) *AppError {
	return &AppError{
		Code:    CodeConnectionAlreadyExists,
		Message: fmt.Sprintf("database connection %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// ConnectionFailed indicates a connectivity probe or engine creation error.
// The underlying driver error is preserved for errors.Is/As but the message
// carries only a sanitized reason.
func ConnectionFailed(name, reason string, cause error) *AppError {
	return &AppError{
		Code:    CodeConnectionFailed,
		Message: fmt.Sprintf("failed to connect to database %q: %s", name, reason),
		Details: map[string]any{"name": name, "reason": reason},
		wrapped: cause,
	}
}

// InvalidQuery indicates the statement was rejected during validation or
// transformation. Client-fixable.
func InvalidQuery(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidQuery,
		Message: message,
	}
}

// QueryExecution indicates the driver raised during execution. The caller
// receives a generic message; full detail is logged server-side only.
func QueryExecution(cause error) *AppError {
	return &AppError{
		Code:    CodeQueryExecutionError,
		Message: "query execution failed",
		wrapped: cause,
	}
}

// NlQueryGeneration indicates the NL-to-SQL collaborator failed.
func NlQueryGeneration(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeNlQueryGenerationError,
		Message: message,
		wrapped: cause,
	}
}
