// Package authgate provides a stateless bearer-credential engine: JWT access
// tokens carrying role authorities, long-lived JWT refresh tokens carrying
// none, argon2id credential verification, and a closed error taxonomy that
// maps every failure mode to a stable HTTP response code.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config],
// the error taxonomy, and value types (TokenPair, Identity, MetricsSnapshot).
// Flow orchestration, rate limiting, and audit dispatch live under internal/
// and are never exported. The HTTP surface (gin routes, request
// authentication middleware, failure responder) lives in the httpapi
// sub-package and depends on this package, never the reverse.
//
// # What this package must NOT do
//
//   - Hold per-request mutable state: the authenticated identity is carried
//     in the request context, never in package globals.
//   - Distinguish "unknown user" from "wrong password" in anything returned
//     to a caller.
//   - Let raw internal error text cross into a wire response; only taxonomy
//     entries and their messages do.
//
// # Performance contract
//
// Token verification is the hot path. It is pure computation (one HMAC) and
// performs no I/O. Login is allowed one principal lookup, one argon2
// derivation, and — when throttling is enabled — one Redis round-trip.
package authgate
