package authgate

import (
	"context"
	"errors"

	internalaudit "github.com/MrEthical07/authgate/internal/audit"
	"github.com/MrEthical07/authgate/internal/flows"
	"github.com/MrEthical07/authgate/internal/rate"
	"github.com/MrEthical07/authgate/jwt"
	"github.com/MrEthical07/authgate/password"
)

// Engine defines a public type used by authgate APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	flows        flows.Service
	rateLimiter  *rate.Limiter
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	passwordHash *password.Hasher
	jwtManager   *jwt.Manager
	principals   PrincipalStore
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login authenticates the username+password pair against the principal store
// and issues a fresh access+refresh token pair. All authentication failures
// surface as [ErrInvalidCredentials]; a caller cannot learn whether the
// username exists.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, username, pass string) (*TokenPair, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result, err := e.flows.Login(ctx, username, pass)
	if err != nil {
		return nil, err
	}
	return tokenPairFromResult(result), nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// subject's authorities are re-read from the principal store, so role changes
// made since login take effect here. The refresh token is returned unchanged;
// its lifetime is never extended.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	result, err := e.flows.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return tokenPairFromResult(result), nil
}

// VerifyAccess verifies an access token and returns the [Identity] it names.
// Failures are [ErrTokenExpired] for a genuinely signed but stale token and
// [ErrTokenInvalid] for everything else. Verification never touches the
// principal store.
//
// VerifyAccess may return an error when input validation, dependency calls, or security checks fail.
// VerifyAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyAccess(ctx context.Context, tokenStr string) (*Identity, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	parsed, err := e.flows.VerifyAccess(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	return &Identity{
		Username:    parsed.Subject,
		Authorities: parsed.Roles,
	}, nil
}

// HashPassword hashes a plaintext credential with the engine's argon2id
// parameters. Intended for seeding and user-management tooling; the engine
// itself never stores hashes.
//
// HashPassword may return an error when input validation, dependency calls, or security checks fail.
// HashPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) HashPassword(pass string) (string, error) {
	if e == nil || e.passwordHash == nil {
		return "", ErrEngineNotReady
	}
	return e.passwordHash.Hash(pass)
}

// LoginAttempts returns the current failed-login counter for a username, or
// zero when throttling is disabled.
//
// LoginAttempts may return an error when input validation, dependency calls, or security checks fail.
// LoginAttempts does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LoginAttempts(ctx context.Context, username string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	if e.rateLimiter == nil {
		return 0, nil
	}
	return e.rateLimiter.LoginAttempts(ctx, username)
}

func tokenPairFromResult(result *flows.TokenPairResult) *TokenPair {
	if result == nil {
		return nil
	}
	return &TokenPair{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    result.ExpiresIn,
	}
}

// mapTokenError folds codec errors into the engine's closed error surface.
func mapTokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrExpired):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}
