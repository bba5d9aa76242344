package authgate

import (
	"context"
	"errors"
	"log"

	internalaudit "github.com/MrEthical07/authgate/internal/audit"
	"github.com/MrEthical07/authgate/internal/flows"
	"github.com/MrEthical07/authgate/internal/rate"
	"github.com/MrEthical07/authgate/jwt"
	"github.com/MrEthical07/authgate/password"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by authgate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	principals PrincipalStore
	auditSink  AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPrincipalStore describes the withprincipalstore operation and its observable behavior.
//
// WithPrincipalStore may return an error when input validation, dependency calls, or security checks fail.
// WithPrincipalStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPrincipalStore(store PrincipalStore) *Builder {
	b.principals = store
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.principals == nil {
		return nil, errors.New("principal store required")
	}

	throttling := cfg.Security.EnableLoginThrottle || cfg.Security.EnableRefreshThrottle
	if throttling && b.redis == nil {
		return nil, errors.New("throttling requires a redis client")
	}

	// -------- TOKEN CODEC --------
	jwtManager, err := jwt.NewManager(jwt.Config{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		KeyID:      cfg.JWT.KeyID,
		Leeway:     cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	// -------- PASSWORD HASHER --------
	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	// -------- RATE LIMITER --------
	var limiter *rate.Limiter
	if throttling {
		limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:        cfg.Security.EnableIPThrottle,
			EnableRefreshThrottle:   cfg.Security.EnableRefreshThrottle,
			MaxLoginAttempts:        cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration:   cfg.Security.LoginCooldownDuration,
			MaxRefreshAttempts:      cfg.Security.MaxRefreshAttempts,
			RefreshCooldownDuration: cfg.Security.RefreshCooldownDuration,
		})
	}

	// -------- AUDIT / METRICS --------
	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	engine := &Engine{
		config:       cfg,
		rateLimiter:  limiter,
		audit:        dispatcher,
		metrics:      NewMetrics(cfg.Metrics),
		passwordHash: hasher,
		jwtManager:   jwtManager,
		principals:   b.principals,
	}
	engine.flows = flows.New(engine.flowDeps())

	b.built = true
	return engine, nil
}

// flowDeps wires engine-owned resources into the flow dependency structs.
// Flows see closures, never the engine itself.
func (e *Engine) flowDeps() flows.Deps {
	findPrincipal := func(ctx context.Context, username string) (*flows.PrincipalRecord, error) {
		principal, err := e.principals.FindByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if principal == nil {
			return nil, ErrPrincipalNotFound
		}
		return &flows.PrincipalRecord{
			Username:     principal.Username,
			Authorities:  principal.Authorities,
			PasswordHash: principal.PasswordHash,
		}, nil
	}

	parseToken := func(tokenStr string) (*flows.ParsedToken, error) {
		claims, err := e.jwtManager.Parse(tokenStr)
		if err != nil {
			return nil, mapTokenError(err)
		}
		return &flows.ParsedToken{
			Subject: claims.Subject,
			Kind:    claims.Kind,
			Roles:   claims.Authorities(),
		}, nil
	}

	metricInc := func(id int) {
		e.metricInc(MetricID(id))
	}

	deps := flows.Deps{
		Login: flows.LoginDeps{
			AccessTTL:           e.config.JWT.AccessTTL,
			ClientIPFromContext: ClientIPFromContext,
			FindPrincipal:       findPrincipal,
			VerifyPassword:      e.passwordHash.Verify,
			IssueAccess:         e.jwtManager.IssueAccess,
			IssueRefresh:        e.jwtManager.IssueRefresh,
			MetricInc:           metricInc,
			EmitAudit:           e.emitAudit,
			Warn:                log.Printf,
			Metrics: flows.LoginMetrics{
				Success:     int(MetricLoginSuccess),
				Failure:     int(MetricLoginFailure),
				RateLimited: int(MetricLoginRateLimited),
			},
			Events: flows.LoginEvents{
				Success:     auditEventLoginSuccess,
				Failure:     auditEventLoginFailure,
				RateLimited: auditEventLoginRateLimited,
			},
			Errors: flows.LoginErrors{
				EngineNotReady:     ErrEngineNotReady,
				InvalidCredentials: ErrInvalidCredentials,
				RateLimited:        ErrLoginRateLimited,
			},
		},
		Refresh: flows.RefreshDeps{
			AccessTTL:     e.config.JWT.AccessTTL,
			ParseToken:    parseToken,
			FindPrincipal: findPrincipal,
			IssueAccess:   e.jwtManager.IssueAccess,
			MetricInc:     metricInc,
			EmitAudit:     e.emitAudit,
			Metrics: flows.RefreshMetrics{
				Success:     int(MetricRefreshSuccess),
				Failure:     int(MetricRefreshFailure),
				RateLimited: int(MetricRefreshRateLimited),
			},
			Events: flows.RefreshEvents{
				Success:     auditEventRefreshSuccess,
				Failure:     auditEventRefreshFailure,
				RateLimited: auditEventRefreshRateLimited,
			},
			Errors: flows.RefreshErrors{
				EngineNotReady: ErrEngineNotReady,
				TokenInvalid:   ErrTokenInvalid,
				TokenExpired:   ErrTokenExpired,
				RateLimited:    ErrRefreshRateLimited,
			},
		},
		Verify: flows.VerifyDeps{
			ParseToken: parseToken,
			MetricInc:  metricInc,
			Metrics: flows.VerifyMetrics{
				RejectedExpired: int(MetricTokenRejectedExpired),
				RejectedInvalid: int(MetricTokenRejectedInvalid),
			},
			Errors: flows.VerifyErrors{
				EngineNotReady: ErrEngineNotReady,
				TokenInvalid:   ErrTokenInvalid,
				TokenExpired:   ErrTokenExpired,
			},
		},
	}

	if e.rateLimiter != nil {
		if e.config.Security.EnableLoginThrottle {
			deps.Login.CheckLoginRate = e.rateLimiter.CheckLogin
			deps.Login.RecordLoginFailure = e.rateLimiter.RecordLoginFailure
			deps.Login.ResetLoginRate = e.rateLimiter.ResetLogin
		}
		if e.config.Security.EnableRefreshThrottle {
			deps.Refresh.CheckRefreshRate = e.rateLimiter.CheckRefresh
		}
	}

	return deps
}
