package httpapi

import (
	"strings"

	"github.com/MrEthical07/authgate"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const authFailureContextKey = "authgate.authFailure"

// requestContext stamps every request with a trace ID and the client IP. An
// inbound X-Request-Id is honored so callers can correlate across services;
// otherwise a fresh UUID is generated. The header is echoed on the response.
func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Header("X-Request-Id", traceID)

		ctx := authgate.WithTraceID(c.Request.Context(), traceID)
		ctx = authgate.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// authenticate is the per-request authentication filter. It inspects the
// Authorization header exactly once: a verified bearer token establishes the
// request identity, anything else leaves the request anonymous and records
// why. It never writes a response itself; enforcement belongs to
// requireAuthenticated and requireAuthority.
//
// The filter is idempotent. If an identity is already attached to the request
// context, whatever put it there wins and the header is not consulted.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := authgate.IdentityFromContext(ctx); ok {
			c.Next()
			return
		}

		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		identity, err := s.engine.VerifyAccess(ctx, token)
		if err != nil {
			c.Set(authFailureContextKey, err)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(authgate.WithIdentity(ctx, *identity))
		c.Next()
	}
}

// requireAuthenticated aborts anonymous requests. A request that presented a
// bad token fails with that token's code (TOKEN_EXPIRED or TOKEN_INVALID); a
// request that presented nothing fails with UNAUTHORIZED.
func (s *Server) requireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authgate.IdentityFromContext(c.Request.Context()); ok {
			c.Next()
			return
		}

		if raw, exists := c.Get(authFailureContextKey); exists {
			if err, ok := raw.(error); ok {
				writeEngineFailure(c, err)
				return
			}
		}
		writeFailure(c, authgate.CodeUnauthorized)
	}
}

// requireAuthority aborts requests whose identity lacks the given role
// string. Runs after requireAuthenticated, so a missing identity here is
// still reported as an authentication failure, not an authorization one.
func (s *Server) requireAuthority(authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := authgate.IdentityFromContext(c.Request.Context())
		if !ok {
			writeFailure(c, authgate.CodeUnauthorized)
			return
		}
		if !identity.HasAuthority(authority) {
			writeFailure(c, authgate.CodeAccessDenied)
			return
		}
		c.Next()
	}
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}
