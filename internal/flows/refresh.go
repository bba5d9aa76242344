package flows

import (
	"context"
	"time"
)

// RefreshMetrics carries metric IDs needed by the refresh flow.
type RefreshMetrics struct {
	Success     int
	Failure     int
	RateLimited int
}

// RefreshEvents carries audit event names used by the refresh flow.
type RefreshEvents struct {
	Success     string
	Failure     string
	RateLimited string
}

// RefreshErrors carries host-level sentinel errors used by the refresh flow.
type RefreshErrors struct {
	EngineNotReady error
	TokenInvalid   error
	TokenExpired   error
	RateLimited    error
}

// RefreshDeps captures refresh dependencies. ParseToken must return errors
// already mapped to Errors.TokenInvalid or Errors.TokenExpired.
type RefreshDeps struct {
	AccessTTL time.Duration

	ParseToken       func(string) (*ParsedToken, error)
	CheckRefreshRate func(context.Context, string) error
	FindPrincipal    func(context.Context, string) (*PrincipalRecord, error)
	IssueAccess      func(string, []string) (string, error)

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, error, func() map[string]string)

	Metrics RefreshMetrics
	Events  RefreshEvents
	Errors  RefreshErrors
}

// RunRefresh exchanges a valid refresh token for a new access token. The
// subject's authorities are re-read from the principal store at exchange time,
// so role changes made after login apply to the next refresh. The presented
// refresh token is returned unchanged; refresh does not extend its lifetime.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) (*TokenPairResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.ParseToken == nil ||
		deps.FindPrincipal == nil ||
		deps.IssueAccess == nil {
		return nil, deps.Errors.EngineNotReady
	}

	parsed, err := deps.ParseToken(refreshToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", err, func() map[string]string {
			return map[string]string{
				"reason": "token_rejected",
			}
		})
		return nil, err
	}

	// Only refresh tokens exchange here. An access token, however fresh, is
	// the wrong artifact.
	if parsed.Kind != TokenKindRefresh {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, parsed.Subject, deps.Errors.TokenInvalid, func() map[string]string {
			return map[string]string{
				"reason": "wrong_token_kind",
			}
		})
		return nil, deps.Errors.TokenInvalid
	}

	if deps.CheckRefreshRate != nil {
		if err := deps.CheckRefreshRate(ctx, parsed.Subject); err != nil {
			deps.MetricInc(deps.Metrics.RateLimited)
			deps.EmitAudit(ctx, deps.Events.RateLimited, false, parsed.Subject, deps.Errors.RateLimited, nil)
			return nil, deps.Errors.RateLimited
		}
	}

	principal, err := deps.FindPrincipal(ctx, parsed.Subject)
	if err != nil || principal == nil {
		// The subject no longer resolves to a principal. The token itself
		// is well-formed, but it names nobody, so it is treated as invalid
		// rather than leaking the account's disappearance.
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, parsed.Subject, deps.Errors.TokenInvalid, func() map[string]string {
			return map[string]string{
				"reason": "principal_vanished",
			}
		})
		return nil, deps.Errors.TokenInvalid
	}

	access, err := deps.IssueAccess(principal.Username, principal.Authorities)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, principal.Username, err, func() map[string]string {
			return map[string]string{
				"reason": "issue_access_failed",
			}
		})
		return nil, err
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, principal.Username, nil, nil)

	return &TokenPairResult{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(deps.AccessTTL / time.Second),
	}, nil
}
