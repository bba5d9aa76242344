package authgate

import "context"

type clientIPContextKey struct{}
type identityContextKey struct{}
type traceIDContextKey struct{}

// WithClientIP attaches the caller’s IP address to ctx. The Engine uses it
// for per-IP login throttling and audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// ClientIPFromContext returns the IP previously attached with [WithClientIP],
// or "" when none is present.
func ClientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

// WithTraceID attaches a request correlation ID to ctx. Audit events carry it
// so a failure response can be matched to its audit trail.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDContextKey{}, traceID)
}

// TraceIDFromContext returns the trace ID previously attached with
// [WithTraceID], or "" when none is present.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	traceID, _ := ctx.Value(traceIDContextKey{}).(string)
	return traceID
}

// WithIdentity attaches a request-scoped authenticated [Identity] to ctx.
// The request authentication filter calls this at most once per request;
// anything already present wins (see [IdentityFromContext]).
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the authenticated identity for the current
// request, if one was established.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}

	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
