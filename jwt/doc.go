// Package jwt manages bearer-token issuance and verification with
// HMAC-SHA256 signing and strict validation semantics suitable for
// low-latency authentication paths.
//
// # Token shape
//
// Access and refresh tokens share one claim set: sub, iss, aud, jti, iat,
// nbf, exp, a "typ" claim marking the token kind ("access" or "refresh"),
// plus a "roles" claim on access tokens only. Refresh tokens never carry
// roles: the longer-lived artifact holds the least data. Parse verifies
// either kind; callers enforce which kind an endpoint accepts. Every token
// header carries the active key identifier ("kid") so key rotation needs no
// protocol change.
//
// # Failure classification
//
// Parse reports exactly one of two errors: [ErrExpired] when the signature
// is valid but the expiry has passed, and [ErrInvalid] for everything else
// (bad signature, tampered payload, wrong algorithm, issuer or audience
// mismatch, malformed or blank input, not-yet-valid). A tampered token is
// never reported as expired.
//
// # What this package must NOT do
//
//   - Perform I/O: issuance and verification are pure computation.
//   - Import any other authgate package.
package jwt
