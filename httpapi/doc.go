// Package httpapi exposes the authentication engine over HTTP.
//
// # Surface
//
//   - POST /auth/login    — credential login, returns a token pair.
//   - POST /auth/refresh  — access-token renewal from a refresh token.
//   - GET  /me            — the caller's authenticated identity.
//   - GET  /admin/panel   — requires the ROLE_ADMIN authority.
//   - GET  /healthz       — liveness, always public.
//
// # Failure contract
//
// Every non-2xx response is the same JSON shape: code, message, traceId,
// timestamp, path. Codes come from the closed authgate taxonomy; handlers
// never invent their own. All authentication responses carry
// Cache-Control: no-store.
//
// # What this package must NOT do
//
//   - Hold authentication state between requests.
//   - Bypass the engine: token and credential decisions happen there only.
package httpapi
