package authgate

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by authgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT      JWTConfig
	Password PasswordConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by authgate APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	// Secret is the HMAC-SHA256 signing key. Required, minimum 32 bytes.
	Secret []byte
	// AccessTTL is the access-token lifetime. Default 15 minutes.
	AccessTTL time.Duration
	// RefreshTTL is the refresh-token lifetime. Default 30 days.
	RefreshTTL time.Duration
	// Issuer and Audience are embedded in every token and required on verify.
	Issuer   string
	Audience string
	// KeyID is written to the token header as "kid". A single active key is
	// supported; the header exists so rotation ("v2", ...) needs no protocol
	// change.
	KeyID string
	// Leeway tolerates clock skew between issuer and verifier. Max 2 minutes.
	Leeway time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authgate APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig defines a public type used by authgate APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	// EnableLoginThrottle turns on the Redis-backed fixed-window counter of
	// failed login attempts per identifier. Requires a Redis client on the
	// builder.
	EnableLoginThrottle bool
	// EnableIPThrottle additionally counts failures per client IP.
	EnableIPThrottle bool
	// EnableRefreshThrottle limits refresh calls per token subject.
	EnableRefreshThrottle   bool
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by authgate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authgate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration: 15-minute access tokens,
// 30-day refresh tokens, argon2id at 64 MB / t=3 / p=2, throttling and audit
// disabled. The JWT secret is intentionally absent and must be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 30 * 24 * time.Hour,
			Issuer:     "authgate",
			Audience:   "authgate-api",
			KeyID:      "v1",
			Leeway:     0,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Security: SecurityConfig{
			EnableLoginThrottle:     false,
			EnableIPThrottle:        false,
			EnableRefreshThrottle:   false,
			MaxLoginAttempts:        5,
			LoginCooldownDuration:   15 * time.Minute,
			MaxRefreshAttempts:      20,
			RefreshCooldownDuration: 1 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// JWT
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT Secret must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		return errors.New("JWT Issuer must be set")
	}
	if strings.TrimSpace(c.JWT.Audience) == "" {
		return errors.New("JWT Audience must be set")
	}
	if strings.TrimSpace(c.JWT.KeyID) == "" {
		return errors.New("JWT KeyID must be set")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2 minutes")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("password memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("password time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("password parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("password salt length must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("password key length must be >= 16")
	}

	// Security
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts < 1 {
			return errors.New("MaxLoginAttempts must be >= 1 when login throttle is enabled")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return errors.New("LoginCooldownDuration must be > 0 when login throttle is enabled")
		}
	}
	if c.Security.EnableRefreshThrottle {
		if c.Security.MaxRefreshAttempts < 1 {
			return errors.New("MaxRefreshAttempts must be >= 1 when refresh throttle is enabled")
		}
		if c.Security.RefreshCooldownDuration <= 0 {
			return errors.New("RefreshCooldownDuration must be > 0 when refresh throttle is enabled")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize < 1 {
		return errors.New("audit buffer size must be >= 1 when audit is enabled")
	}

	return nil
}
