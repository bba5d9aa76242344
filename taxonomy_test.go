package authgate

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOfMapping(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorCode
	}{
		{ErrInvalidCredentials, CodeInvalidCredentials},
		{ErrPrincipalNotFound, CodeInvalidCredentials},
		{ErrTokenExpired, CodeTokenExpired},
		{ErrTokenInvalid, CodeTokenInvalid},
		{ErrAccessDenied, CodeAccessDenied},
		{ErrUnauthorized, CodeUnauthorized},
		{ErrLoginRateLimited, CodeTooManyRequests},
		{ErrRefreshRateLimited, CodeTooManyRequests},
		{ErrValidationFailed, CodeValidationFailed},
	}

	for _, tc := range cases {
		if got := CodeOf(tc.err); got != tc.want {
			t.Fatalf("CodeOf(%v) = %+v, want %+v", tc.err, got, tc.want)
		}
	}
}

func TestCodeOfWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("during refresh: %w", ErrTokenExpired)
	if got := CodeOf(wrapped); got != CodeTokenExpired {
		t.Fatalf("CodeOf(wrapped) = %+v", got)
	}
}

func TestCodeOfUnknownCollapsesToInternal(t *testing.T) {
	if got := CodeOf(errors.New("redis connection refused to 10.3.2.1")); got != CodeInternalError {
		t.Fatalf("CodeOf(unknown) = %+v, want internal", got)
	}
	if got := CodeOf(ErrEngineNotReady); got != CodeInternalError {
		t.Fatalf("CodeOf(ErrEngineNotReady) = %+v, want internal", got)
	}
}

func TestTaxonomyIsWellFormed(t *testing.T) {
	catalog := []ErrorCode{
		CodeBadRequest, CodeValidationFailed, CodeInvalidParameter,
		CodeUnauthorized, CodeInvalidCredentials, CodeTokenInvalid,
		CodeTokenExpired, CodeAccessDenied, CodeNotFound, CodeConflict,
		CodeTooManyRequests, CodeInternalError,
	}

	seen := map[string]bool{}
	for _, entry := range catalog {
		if entry.Code == "" || entry.Message == "" {
			t.Fatalf("incomplete entry: %+v", entry)
		}
		if entry.Status < http.StatusBadRequest || entry.Status > http.StatusNetworkAuthenticationRequired {
			t.Fatalf("entry %q has non-error status %d", entry.Code, entry.Status)
		}
		if seen[entry.Code] {
			t.Fatalf("duplicate code %q", entry.Code)
		}
		seen[entry.Code] = true
	}
}
