package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired is an exported constant or variable used by the authentication engine.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is an exported constant or variable used by the authentication engine.
	ErrInvalid = errors.New("token invalid")
)

const (
	// TokenKindAccess is an exported constant or variable used by the authentication engine.
	TokenKindAccess = "access"
	// TokenKindRefresh is an exported constant or variable used by the authentication engine.
	TokenKindRefresh = "refresh"
)

// Config defines a public type used by authgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Audience   string
	KeyID      string
	Leeway     time.Duration
}

// Manager defines a public type used by authgate APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

// Claims is the decoded claim set of a verified token. Kind is the "typ"
// claim marking the token as [TokenKindAccess] or [TokenKindRefresh]; Roles
// is present on access tokens and absent on refresh tokens.
type Claims struct {
	Kind  string   `json:"typ,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Authorities returns the role strings carried by the token. Refresh tokens
// and access tokens issued without roles yield an empty, non-nil slice.
func (c *Claims) Authorities() []string {
	if c == nil || len(c.Roles) == 0 {
		return []string{}
	}
	out := make([]string, len(c.Roles))
	copy(out, c.Roles)
	return out
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("hs256 requires a secret of at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	cfg.Audience = strings.TrimSpace(cfg.Audience)
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("issuer and audience are required")
	}
	if cfg.KeyID == "" {
		return nil, errors.New("key id is required")
	}

	return &Manager{config: cfg}, nil
}

// IssueAccess signs an access token for subject carrying the given role
// authorities. iat and nbf are set to now, exp to now + AccessTTL, jti to a
// fresh random UUID.
//
// IssueAccess may return an error when input validation, dependency calls, or security checks fail.
// IssueAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) IssueAccess(subject string, authorities []string) (string, error) {
	return m.issue(subject, authorities, m.config.AccessTTL, TokenKindAccess)
}

// IssueRefresh signs a refresh token for subject. Refresh tokens carry no
// roles claim regardless of the subject's actual authorities.
//
// IssueRefresh may return an error when input validation, dependency calls, or security checks fail.
// IssueRefresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) IssueRefresh(subject string) (string, error) {
	return m.issue(subject, nil, m.config.RefreshTTL, TokenKindRefresh)
}

func (m *Manager) issue(subject string, roles []string, ttl time.Duration, kind string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("subject must not be blank")
	}

	now := time.Now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Audience},
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if len(roles) > 0 {
		claims.Roles = make([]string, len(roles))
		copy(claims.Roles, roles)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.config.KeyID

	return token.SignedString(m.config.Secret)
}

// Parse verifies a token string and returns its claims. Verification is
// all-or-nothing: signature, issuer, audience, and expiry are checked on
// every call, and a token failing any one of them is rejected. Failures are
// classified into [ErrExpired] (expiry elapsed, signature otherwise valid)
// or [ErrInvalid] (everything else, including blank input).
//
// Parse may return an error when input validation, dependency calls, or security checks fail.
// Parse does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrInvalid
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		if kid != m.config.KeyID {
			return nil, errors.New("unknown kid")
		}
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalid
	}

	return claims, nil
}

// classify maps golang-jwt parse errors onto the two-error surface. The
// signature and structural checks are consulted first: golang-jwt only
// validates claims after the signature verifies, so ErrTokenExpired here
// always means a genuinely signed, genuinely stale token.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		// Issuer/audience mismatch, nbf in the future, missing exp.
		return ErrInvalid
	}
}
