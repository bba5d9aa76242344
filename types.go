package authgate

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/authgate/internal/audit"
)

// Principal is the stored identity record owned by the external user store.
// The engine reads it and never writes it: credential-hash rotation and role
// assignment are user-management concerns outside this module.
type Principal struct {
	// Username is the opaque unique identifier used as the token subject.
	Username string
	// Authorities is the set of role strings granted to the principal,
	// e.g. "ROLE_USER", "ROLE_ADMIN". Order is irrelevant.
	Authorities []string
	// PasswordHash is the PHC-encoded argon2id hash of the credential.
	PasswordHash string
}

// PrincipalStore is the interface callers must implement to integrate
// authgate with their user database. Lookups by a missing username return
// [ErrPrincipalNotFound]; the engine guarantees that error never reaches a
// client in a form distinguishable from a bad password.
//
// Implementations must be safe for concurrent use.
type PrincipalStore interface {
	FindByUsername(ctx context.Context, username string) (*Principal, error)
}

// Identity is the request-scoped authenticated identity derived from a
// verified access token. It is created at most once per request by the
// request authentication filter, lives only for that request, and is never
// persisted.
type Identity struct {
	Username    string
	Authorities []string
}

// HasAuthority reports whether the identity carries the given role string.
func (id Identity) HasAuthority(authority string) bool {
	for _, a := range id.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// TokenPair is returned by [Engine.Login] and [Engine.Refresh]. ExpiresIn is
// the access-token lifetime in seconds so clients can schedule refreshes
// without decoding the token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
