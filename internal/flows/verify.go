package flows

import (
	"context"
	"errors"
)

// VerifyMetrics carries metric IDs needed by the verify flow.
type VerifyMetrics struct {
	RejectedExpired int
	RejectedInvalid int
}

// VerifyErrors carries host-level sentinel errors used by the verify flow.
type VerifyErrors struct {
	EngineNotReady error
	TokenInvalid   error
	TokenExpired   error
}

// VerifyDeps captures access-token verification dependencies. ParseToken must
// return errors already mapped to Errors.TokenInvalid or Errors.TokenExpired.
type VerifyDeps struct {
	ParseToken func(string) (*ParsedToken, error)

	MetricInc func(int)

	Metrics VerifyMetrics
	Errors  VerifyErrors
}

// RunVerifyAccess verifies an access token and returns the identity it names.
// Verification is pure computation: no store lookup, no network.
func RunVerifyAccess(_ context.Context, tokenStr string, deps VerifyDeps) (*ParsedToken, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.ParseToken == nil {
		return nil, deps.Errors.EngineNotReady
	}

	parsed, err := deps.ParseToken(tokenStr)
	if err != nil {
		if errors.Is(err, deps.Errors.TokenExpired) {
			deps.MetricInc(deps.Metrics.RejectedExpired)
		} else {
			deps.MetricInc(deps.Metrics.RejectedInvalid)
		}
		return nil, err
	}

	// A refresh token is not a bearer credential. Only access tokens
	// authenticate requests.
	if parsed.Kind != TokenKindAccess {
		deps.MetricInc(deps.Metrics.RejectedInvalid)
		return nil, deps.Errors.TokenInvalid
	}

	return parsed, nil
}
