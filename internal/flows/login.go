package flows

import (
	"context"
	"time"
)

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	Success     int
	Failure     int
	RateLimited int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	Success     string
	Failure     string
	RateLimited string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	RateLimited        error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	AccessTTL time.Duration

	ClientIPFromContext func(context.Context) string

	CheckLoginRate     func(context.Context, string, string) error
	RecordLoginFailure func(context.Context, string, string) error
	ResetLoginRate     func(context.Context, string, string) error

	FindPrincipal  func(context.Context, string) (*PrincipalRecord, error)
	VerifyPassword func(string, string) (bool, error)
	IssueAccess    func(string, []string) (string, error)
	IssueRefresh   func(string) (string, error)

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, error, func() map[string]string)
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin authenticates the username+password pair and issues a fresh token
// pair. Every authentication failure collapses to Errors.InvalidCredentials:
// a caller cannot distinguish an unknown username from a wrong password, an
// empty credential, or any internal lookup problem.
func RunLogin(ctx context.Context, username, password string, deps LoginDeps) (*TokenPairResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.FindPrincipal == nil ||
		deps.VerifyPassword == nil ||
		deps.IssueAccess == nil ||
		deps.IssueRefresh == nil {
		return nil, deps.Errors.EngineNotReady
	}

	ip := deps.ClientIPFromContext(ctx)

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, username, ip); err != nil {
			deps.MetricInc(deps.Metrics.RateLimited)
			deps.EmitAudit(ctx, deps.Events.RateLimited, false, "", deps.Errors.RateLimited, func() map[string]string {
				return map[string]string{
					"username": username,
				}
			})
			return nil, deps.Errors.RateLimited
		}
	}

	if username == "" || password == "" {
		return nil, failLogin(ctx, username, ip, "empty_credentials", deps)
	}

	principal, err := deps.FindPrincipal(ctx, username)
	if err != nil || principal == nil {
		return nil, failLogin(ctx, username, ip, "principal_not_found", deps)
	}

	ok, err := deps.VerifyPassword(password, principal.PasswordHash)
	if err != nil || !ok {
		return nil, failLogin(ctx, username, ip, "password_mismatch", deps)
	}
	password = ""

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

	refresh, err := deps.IssueRefresh(principal.Username)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, principal.Username, err, func() map[string]string {
			return map[string]string{
				"reason": "issue_refresh_failed",
			}
		})
		return nil, err
	}

	// A reset failure must not undo a successful authentication. The counter
	// expires on its own.
	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, username, ip); err != nil {
			deps.Warn("authgate: failed-login counter reset failed")
		}
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, principal.Username, nil, nil)

	return &TokenPairResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(deps.AccessTTL / time.Second),
	}, nil
}

// failLogin counts the failed attempt, emits the failure audit event, and
// returns the uniform credential error. The rate limiter may convert this
// attempt into a limit breach, which takes precedence.
func failLogin(ctx context.Context, username, ip, reason string, deps LoginDeps) error {
	if deps.RecordLoginFailure != nil {
		if err := deps.RecordLoginFailure(ctx, username, ip); err != nil {
			deps.MetricInc(deps.Metrics.RateLimited)
			deps.EmitAudit(ctx, deps.Events.RateLimited, false, "", deps.Errors.RateLimited, func() map[string]string {
				return map[string]string{
					"username": username,
				}
			})
			return deps.Errors.RateLimited
		}
	}

	deps.MetricInc(deps.Metrics.Failure)
	deps.EmitAudit(ctx, deps.Events.Failure, false, "", deps.Errors.InvalidCredentials, func() map[string]string {
		return map[string]string{
			"username": username,
			"reason":   reason,
		}
	})
	return deps.Errors.InvalidCredentials
}
