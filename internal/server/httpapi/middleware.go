package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alivecn/funarcade/internal/server/auth"
)

const claimsContextKey = "claims"

// RequireAuth expects an "Authorization: Bearer <token>" header, verifies the
// token and stores the claims in the request context. Verification is purely
// cryptographic; no store lookup happens here.
//
// On success the handler simply returns; Gin continues the chain on its own.
// Calling c.Next() here would let RequireAdmin's composition run the
// protected handler before the admin check gets a say.
func (s *HTTPServer) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(claimsContextKey, claims)
	}
}

// RequireAdmin builds on RequireAuth and additionally rejects non-admin
// identities with 403 before any downstream handler runs.
func (s *HTTPServer) RequireAdmin() gin.HandlerFunc {
	requireAuth := s.RequireAuth()
	return func(c *gin.Context) {
		requireAuth(c)
		if c.IsAborted() {
			return
		}
		if !claimsFromContext(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
	}
}

// claimsFromContext returns the claims stored by RequireAuth. Handlers behind
// the middleware may assume they are present.
func claimsFromContext(c *gin.Context) *auth.Claims {
	return c.MustGet(claimsContextKey).(*auth.Claims)
}
