package authgate

import "errors"

var (
	// ErrUnauthorized is an exported constant or variable used by the authentication engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPrincipalNotFound is an exported constant or variable used by the authentication engine.
	//
	// Never returned by Engine methods: credential flows collapse it into
	// ErrInvalidCredentials so that callers cannot enumerate usernames. It is
	// the contract error for PrincipalStore implementations only.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrTokenInvalid is an exported constant or variable used by the authentication engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is an exported constant or variable used by the authentication engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrAccessDenied is an exported constant or variable used by the authentication engine.
	ErrAccessDenied = errors.New("access denied")
	// ErrLoginRateLimited is an exported constant or variable used by the authentication engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is an exported constant or variable used by the authentication engine.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrValidationFailed is an exported constant or variable used by the authentication engine.
	ErrValidationFailed = errors.New("validation failed")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
