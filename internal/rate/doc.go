// Package rate provides internal primitives used to build Redis-backed rate limit keys,
// errors, and limiter behavior for security-sensitive authentication workflows.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on the first hit. Key
// prefixes:
//   - ag:login:u:  — failed logins per username
//   - ag:login:ip: — failed logins per client IP
//   - ag:refresh:  — refresh calls per token subject
//
// # What this package must NOT do
//
//   - Decide which identifiers to throttle (the engine does).
//   - Be imported outside the authgate module.
package rate
