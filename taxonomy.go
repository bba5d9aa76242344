package authgate

import (
	"errors"
	"net/http"
)

// ErrorCode is one entry of the closed failure taxonomy. Each entry pins a
// symbolic wire code, an HTTP status, and the default user-facing message
// that is served whenever a caller does not supply one. The catalog is the
// single source of truth for failure responses: nothing outside it may ever
// reach a client.
//
// ErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ErrorCode struct {
	Code    string
	Status  int
	Message string
}

var (
	// CodeBadRequest is an exported constant or variable used by the authentication engine.
	CodeBadRequest = ErrorCode{"BAD_REQUEST", http.StatusBadRequest, "The request could not be understood."}
	// CodeValidationFailed is an exported constant or variable used by the authentication engine.
	CodeValidationFailed = ErrorCode{"VALIDATION_FAILED", http.StatusBadRequest, "Input validation failed."}
	// CodeInvalidParameter is an exported constant or variable used by the authentication engine.
	CodeInvalidParameter = ErrorCode{"INVALID_PARAMETER", http.StatusBadRequest, "A request parameter is invalid."}
	// CodeUnauthorized is an exported constant or variable used by the authentication engine.
	CodeUnauthorized = ErrorCode{"UNAUTHORIZED", http.StatusUnauthorized, "Authentication is required."}
	// CodeInvalidCredentials is an exported constant or variable used by the authentication engine.
	CodeInvalidCredentials = ErrorCode{"AUTH_INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid username or password."}
	// CodeTokenInvalid is an exported constant or variable used by the authentication engine.
	CodeTokenInvalid = ErrorCode{"TOKEN_INVALID", http.StatusUnauthorized, "The token is not valid."}
	// CodeTokenExpired is an exported constant or variable used by the authentication engine.
	CodeTokenExpired = ErrorCode{"TOKEN_EXPIRED", http.StatusUnauthorized, "The token has expired."}
	// CodeAccessDenied is an exported constant or variable used by the authentication engine.
	CodeAccessDenied = ErrorCode{"ACCESS_DENIED", http.StatusForbidden, "You do not have permission to access this resource."}
	// CodeNotFound is an exported constant or variable used by the authentication engine.
	CodeNotFound = ErrorCode{"NOT_FOUND", http.StatusNotFound, "The requested resource was not found."}
	// CodeConflict is an exported constant or variable used by the authentication engine.
	CodeConflict = ErrorCode{"CONFLICT", http.StatusConflict, "A resource conflict occurred."}
	// CodeTooManyRequests is an exported constant or variable used by the authentication engine.
	CodeTooManyRequests = ErrorCode{"TOO_MANY_REQUESTS", http.StatusTooManyRequests, "Too many requests. Please try again later."}
	// CodeInternalError is an exported constant or variable used by the authentication engine.
	CodeInternalError = ErrorCode{"INTERNAL_ERROR", http.StatusInternalServerError, "A temporary error occurred. Please try again later."}
)

// CodeOf classifies an engine error into its taxonomy entry. Unknown errors
// collapse to [CodeInternalError] so that unexpected failure text never
// leaks into a response.
func CodeOf(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrPrincipalNotFound):
		// ErrPrincipalNotFound should never escape the engine, but if it
		// does, keep it indistinguishable from a credential mismatch.
		return CodeInvalidCredentials
	case errors.Is(err, ErrTokenExpired):
		return CodeTokenExpired
	case errors.Is(err, ErrTokenInvalid):
		return CodeTokenInvalid
	case errors.Is(err, ErrAccessDenied):
		return CodeAccessDenied
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrLoginRateLimited), errors.Is(err, ErrRefreshRateLimited):
		return CodeTooManyRequests
	case errors.Is(err, ErrValidationFailed):
		return CodeValidationFailed
	default:
		return CodeInternalError
	}
}
