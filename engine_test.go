package authgate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.JWT.AccessTTL = 900 * time.Second
	// Minimum hashing parameters keep tests fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.KeyLength = 16
	return cfg
}

func newTestEngine(t *testing.T, mutate func(*Config), opts ...func(*Builder)) (*Engine, *MemoryPrincipalStore) {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	store := NewMemoryPrincipalStore()
	builder := New().WithConfig(cfg).WithPrincipalStore(store)
	for _, opt := range opts {
		opt(builder)
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	hash, err := engine.HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	store.Put(Principal{
		Username:     "admin",
		Authorities:  []string{"ROLE_ADMIN", "ROLE_USER"},
		PasswordHash: hash,
	})
	store.Put(Principal{
		Username:     "user",
		Authorities:  []string{"ROLE_USER"},
		PasswordHash: hash,
	})

	return engine, store
}

func TestBuildValidation(t *testing.T) {
	if _, err := New().WithConfig(testConfig()).Build(); err == nil {
		t.Fatal("Build succeeded without a principal store")
	}

	cfg := testConfig()
	cfg.JWT.Secret = []byte("short")
	if _, err := New().WithConfig(cfg).WithPrincipalStore(NewMemoryPrincipalStore()).Build(); err == nil {
		t.Fatal("Build accepted a short secret")
	}

	cfg = testConfig()
	cfg.Security.EnableLoginThrottle = true
	if _, err := New().WithConfig(cfg).WithPrincipalStore(NewMemoryPrincipalStore()).Build(); err == nil {
		t.Fatal("Build accepted throttling without redis")
	}

	builder := New().WithConfig(testConfig()).WithPrincipalStore(NewMemoryPrincipalStore())
	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()
	if _, err := builder.Build(); err == nil {
		t.Fatal("builder allowed a second Build")
	}
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, "admin", "password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Fatalf("TokenType = %q, want Bearer", pair.TokenType)
	}
	if pair.ExpiresIn != 900 {
		t.Fatalf("ExpiresIn = %d, want 900", pair.ExpiresIn)
	}

	identity, err := engine.VerifyAccess(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if identity.Username != "admin" {
		t.Fatalf("username = %q", identity.Username)
	}
	if !identity.HasAuthority("ROLE_ADMIN") || !identity.HasAuthority("ROLE_USER") {
		t.Fatalf("authorities = %v", identity.Authorities)
	}

	// The refresh token is not an access token.
	if _, err := engine.VerifyAccess(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("refresh-as-access error = %v, want ErrTokenInvalid", err)
	}
}

func TestLoginFailuresCollapse(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "password"},
		{"wrong password", "admin", "wrong"},
		{"empty password", "admin", ""},
		{"empty username", "", "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Login(ctx, tc.username, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRefreshPicksUpAuthorityChanges(t *testing.T) {
	engine, store := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, "user", "password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Promote the user after login.
	principal, err := store.FindByUsername(ctx, "user")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	principal.Authorities = append(principal.Authorities, "ROLE_ADMIN")
	store.Put(*principal)

	refreshed, err := engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed.RefreshToken != pair.RefreshToken {
		t.Fatal("refresh minted a new refresh token")
	}

	identity, err := engine.VerifyAccess(ctx, refreshed.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if !identity.HasAuthority("ROLE_ADMIN") {
		t.Fatalf("refreshed access token missing new authority: %v", identity.Authorities)
	}
}

func TestRefreshRejections(t *testing.T) {
	engine, store := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, "user", "password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := engine.Refresh(ctx, "garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("garbage error = %v, want ErrTokenInvalid", err)
	}

	// An access token is the wrong artifact for refresh.
	if _, err := engine.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("access-as-refresh error = %v, want ErrTokenInvalid", err)
	}

	// The subject vanished between login and refresh.
	store.Delete("user")
	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("vanished principal error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyAccessRejectsExpired(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	shortEngine, _ := newTestEngine(t, func(c *Config) {
		c.JWT.AccessTTL = time.Second
	})
	ctx := context.Background()

	pair, err := shortEngine.Login(ctx, "user", "password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	if _, err := shortEngine.VerifyAccess(ctx, pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired error = %v, want ErrTokenExpired", err)
	}

	// A tampered token is invalid, never expired.
	if _, err := engine.VerifyAccess(ctx, pair.AccessToken+"x"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("tampered error = %v, want ErrTokenInvalid", err)
	}
}

func TestLoginThrottle(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	engine, _ := newTestEngine(t, func(c *Config) {
		c.Security.EnableLoginThrottle = true
		c.Security.MaxLoginAttempts = 2
		c.Security.LoginCooldownDuration = time.Minute
	}, func(b *Builder) {
		b.WithRedis(rdb)
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := engine.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidCredentials", i, err)
		}
	}

	// Budget exhausted: even the correct password is refused.
	if _, err := engine.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("error = %v, want ErrLoginRateLimited", err)
	}
	if _, err := engine.Login(ctx, "admin", "password"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("correct password error = %v, want ErrLoginRateLimited", err)
	}

	attempts, err := engine.LoginAttempts(ctx, "admin")
	if err != nil {
		t.Fatalf("LoginAttempts failed: %v", err)
	}
	if attempts < 2 {
		t.Fatalf("attempts = %d, want >= 2", attempts)
	}

	mr.FastForward(2 * time.Minute)

	pair, err := engine.Login(ctx, "admin", "password")
	if err != nil {
		t.Fatalf("Login after cooldown failed: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("empty access token")
	}
}

func TestAuditEventsEmitted(t *testing.T) {
	sink := NewChannelSink(16)
	engine, _ := newTestEngine(t, func(c *Config) {
		c.Audit.Enabled = true
		c.Audit.BufferSize = 16
	}, func(b *Builder) {
		b.WithAuditSink(sink)
	})
	ctx := WithClientIP(context.Background(), "10.0.0.9")

	if _, err := engine.Login(ctx, "admin", "password"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}

	engine.Close()

	var events []AuditEvent
	for len(sink.Events()) > 0 {
		events = append(events, <-sink.Events())
	}
	if len(events) != 2 {
		t.Fatalf("got %d audit events, want 2", len(events))
	}
	if events[0].EventType != "login_success" || !events[0].Success || events[0].Subject != "admin" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[0].IP != "10.0.0.9" {
		t.Fatalf("event IP = %q", events[0].IP)
	}
	if events[1].EventType != "login_failure" || events[1].Success {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if events[1].Error != string(auditErrInvalidCredentials) {
		t.Fatalf("event error = %q", events[1].Error)
	}
}

func TestMetricsCounters(t *testing.T) {
	engine, _ := newTestEngine(t, func(c *Config) {
		c.Metrics.Enabled = true
	})
	ctx := context.Background()

	if _, err := engine.Login(ctx, "admin", "password"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	_, _ = engine.Login(ctx, "admin", "wrong")
	_, _ = engine.VerifyAccess(ctx, "garbage")

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("login success = %d, want 1", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Fatalf("login failure = %d, want 1", snap.Counters[MetricLoginFailure])
	}
	if snap.Counters[MetricTokenRejectedInvalid] != 1 {
		t.Fatalf("rejected invalid = %d, want 1", snap.Counters[MetricTokenRejectedInvalid])
	}
}

func TestNilEngineIsSafe(t *testing.T) {
	var engine *Engine

	engine.Close()
	if got := engine.AuditDropped(); got != 0 {
		t.Fatalf("AuditDropped = %d", got)
	}
	if _, err := engine.Login(context.Background(), "a", "b"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("error = %v, want ErrEngineNotReady", err)
	}
	if _, err := engine.VerifyAccess(context.Background(), "t"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("error = %v, want ErrEngineNotReady", err)
	}
}
