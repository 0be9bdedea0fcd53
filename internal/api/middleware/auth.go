package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookhub/internal/api/service"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "token"

const identityKey = "identity"

// TokenFromRequest extracts the session token from the cookie, falling
// back to an Authorization: Bearer header for non-browser clients.
func TokenFromRequest(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// SessionAuth is a Gin middleware authenticating API requests via the
// session cookie. It places the caller's Identity in the context for
// handlers to use.
func SessionAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := TokenFromRequest(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			c.Abort()
			return
		}

		identity, err := authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			c.Abort()
			return
		}

		c.Set(identityKey, *identity)
		c.Set("userID", identity.UserID)
		c.Set("role", identity.Role)

		c.Next()
	}
}

// IdentityFromContext returns the Identity set by SessionAuth.
func IdentityFromContext(c *gin.Context) (service.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return service.Identity{}, false
	}
	identity, ok := value.(service.Identity)
	return identity, ok
}

// RequireRole checks if the caller has the specified role. Runs after
// SessionAuth, so a missing identity is a server wiring bug surfaced as 403.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "identity not found"})
			c.Abort()
			return
		}

		if identity.Role != requiredRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin is a convenience function for requiring admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole("admin")
}
