package flows

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRefreshDeps(recorder *flowRecorder) RefreshDeps {
	return RefreshDeps{
		AccessTTL: 900 * time.Second,
		ParseToken: func(tokenStr string) (*ParsedToken, error) {
			switch tokenStr {
			case "good-refresh":
				return &ParsedToken{Subject: "alice", Kind: TokenKindRefresh}, nil
			case "stale-refresh":
				return nil, errTokenStale
			default:
				return nil, errTokenBad
			}
		},
		FindPrincipal: func(_ context.Context, username string) (*PrincipalRecord, error) {
			if username != "alice" {
				return nil, errors.New("not found")
			}
			return &PrincipalRecord{
				Username:    "alice",
				Authorities: []string{"ROLE_USER", "ROLE_AUDITOR"},
			}, nil
		},
		IssueAccess: func(subject string, authorities []string) (string, error) {
			return "access-for-" + subject, nil
		},
		MetricInc: recorder.metricInc,
		EmitAudit: recorder.emitAudit,
		Metrics:   RefreshMetrics{Success: 4, Failure: 5, RateLimited: 6},
		Events:    RefreshEvents{Success: "refresh_success", Failure: "refresh_failure", RateLimited: "refresh_rate_limited"},
		Errors: RefreshErrors{
			EngineNotReady: errNotReady,
			TokenInvalid:   errTokenBad,
			TokenExpired:   errTokenStale,
			RateLimited:    errRateLimited,
		},
	}
}

func TestRunRefreshSuccess(t *testing.T) {
	recorder := &flowRecorder{}

	result, err := RunRefresh(context.Background(), "good-refresh", testRefreshDeps(recorder))
	if err != nil {
		t.Fatalf("RunRefresh failed: %v", err)
	}
	if result.AccessToken != "access-for-alice" {
		t.Fatalf("access token = %q", result.AccessToken)
	}
	if result.RefreshToken != "good-refresh" {
		t.Fatalf("refresh token = %q, want the presented token back", result.RefreshToken)
	}
	if result.ExpiresIn != 900 {
		t.Fatalf("ExpiresIn = %d, want 900", result.ExpiresIn)
	}
}

func TestRunRefreshRederivesAuthorities(t *testing.T) {
	recorder := &flowRecorder{}
	deps := testRefreshDeps(recorder)

	var issued []string
	deps.IssueAccess = func(subject string, authorities []string) (string, error) {
		issued = authorities
		return "access", nil
	}

	if _, err := RunRefresh(context.Background(), "good-refresh", deps); err != nil {
		t.Fatalf("RunRefresh failed: %v", err)
	}
	if len(issued) != 2 || issued[0] != "ROLE_USER" || issued[1] != "ROLE_AUDITOR" {
		t.Fatalf("issued authorities = %v, want the store's current set", issued)
	}
}

func TestRunRefreshRejectsBadTokens(t *testing.T) {
	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", "stale-refresh", errTokenStale},
		{"garbage", "garbage", errTokenBad},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := &flowRecorder{}
			_, err := RunRefresh(context.Background(), tc.token, testRefreshDeps(recorder))
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRunRefreshRejectsWrongTokenKind(t *testing.T) {
	cases := []struct {
		name   string
		parsed *ParsedToken
	}{
		{"access token", &ParsedToken{Subject: "alice", Kind: TokenKindAccess, Roles: []string{"ROLE_USER"}}},
		{"unmarked token", &ParsedToken{Subject: "alice"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := &flowRecorder{}
			deps := testRefreshDeps(recorder)
			deps.ParseToken = func(string) (*ParsedToken, error) {
				return tc.parsed, nil
			}

			if _, err := RunRefresh(context.Background(), "a-token", deps); !errors.Is(err, errTokenBad) {
				t.Fatalf("error = %v, want token invalid", err)
			}
		})
	}
}

func TestRunRefreshVanishedPrincipal(t *testing.T) {
	recorder := &flowRecorder{}
	deps := testRefreshDeps(recorder)
	deps.FindPrincipal = func(context.Context, string) (*PrincipalRecord, error) {
		return nil, errors.New("not found")
	}

	if _, err := RunRefresh(context.Background(), "good-refresh", deps); !errors.Is(err, errTokenBad) {
		t.Fatalf("error = %v, want token invalid", err)
	}
}

func TestRunRefreshRateLimited(t *testing.T) {
	recorder := &flowRecorder{}
	deps := testRefreshDeps(recorder)
	deps.CheckRefreshRate = func(_ context.Context, subject string) error {
		if subject != "alice" {
			t.Fatalf("throttle keyed by %q, want alice", subject)
		}
		return errors.New("limit hit")
	}

	if _, err := RunRefresh(context.Background(), "good-refresh", deps); !errors.Is(err, errRateLimited) {
		t.Fatalf("error = %v, want rate limited", err)
	}
}

func TestRunVerifyAccessClassifiesRejections(t *testing.T) {
	recorder := &flowRecorder{}
	deps := VerifyDeps{
		ParseToken: func(tokenStr string) (*ParsedToken, error) {
			switch tokenStr {
			case "good":
				return &ParsedToken{Subject: "alice", Kind: TokenKindAccess, Roles: []string{"ROLE_USER"}}, nil
			case "refresh":
				return &ParsedToken{Subject: "alice", Kind: TokenKindRefresh}, nil
			case "stale":
				return nil, errTokenStale
			default:
				return nil, errTokenBad
			}
		},
		MetricInc: recorder.metricInc,
		Metrics:   VerifyMetrics{RejectedExpired: 7, RejectedInvalid: 8},
		Errors: VerifyErrors{
			EngineNotReady: errNotReady,
			TokenInvalid:   errTokenBad,
			TokenExpired:   errTokenStale,
		},
	}

	parsed, err := RunVerifyAccess(context.Background(), "good", deps)
	if err != nil {
		t.Fatalf("RunVerifyAccess failed: %v", err)
	}
	if parsed.Subject != "alice" {
		t.Fatalf("subject = %q", parsed.Subject)
	}

	if _, err := RunVerifyAccess(context.Background(), "stale", deps); !errors.Is(err, errTokenStale) {
		t.Fatalf("error = %v, want expired", err)
	}
	if _, err := RunVerifyAccess(context.Background(), "junk", deps); !errors.Is(err, errTokenBad) {
		t.Fatalf("error = %v, want invalid", err)
	}

	// A refresh token verifies cryptographically but is not a bearer
	// credential.
	if _, err := RunVerifyAccess(context.Background(), "refresh", deps); !errors.Is(err, errTokenBad) {
		t.Fatalf("refresh token error = %v, want invalid", err)
	}

	if len(recorder.metrics) != 3 || recorder.metrics[0] != 7 || recorder.metrics[1] != 8 || recorder.metrics[2] != 8 {
		t.Fatalf("metrics = %v, want [7 8 8]", recorder.metrics)
	}
}
