// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. RequireAuth validates the
// Authorization header against the token manager and stores the caller's
// identity in the Gin context for handlers, the rate limiter, and access
// logs. The websocket endpoint performs the equivalent validation itself
// (token via query parameter, since browsers cannot set headers on upgrade).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pactly/go-pact-backend/internal/auth"
)

// Context keys populated by RequireAuth.
const (
	// CtxUserID holds the authenticated caller's user id.
	CtxUserID = "userID"
	// CtxUserName holds the caller's display name from the token claims.
	CtxUserName = "userName"
)

// UserID returns the authenticated user id from the Gin context, or "" when
// the request is unauthenticated.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(CtxUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequireAuth returns a middleware that rejects requests without a valid,
// unexpired bearer token. On success the subject id and display name are
// stored in the context.
func RequireAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		const prefix = "Bearer "
		if raw == "" || !strings.HasPrefix(raw, prefix) {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(raw[len(prefix):]))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxUserName, claims.Name)
		c.Next()
	}
}

// abortUnauthorized writes the standard error envelope for auth failures.
func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
