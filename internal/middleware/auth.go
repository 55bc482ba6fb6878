// Package middleware provides HTTP middleware for the task service.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/task-service/internal/models"
	"github.com/taskhive/task-service/internal/service"
)

// AuthTokenCookie is the cookie carrying the signed auth token.
const AuthTokenCookie = "auth_token"

// currentUserKey is the gin context key holding the resolved identity.
const currentUserKey = "currentUser"

// Auth builds the access-control middleware chain around an AuthService.
type Auth struct {
	authService service.AuthService
}

// NewAuth creates auth middleware backed by the given service.
func NewAuth(authService service.AuthService) *Auth {
	return &Auth{authService: authService}
}

// Required rejects requests without a resolvable token. On success the
// resolved user is attached to the request context.
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := a.resolve(c)
		if !ok {
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// AdminRequired behaves like Required and additionally demands the admin
// role, failing with 403 otherwise.
func (a *Auth) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := a.resolve(c)
		if !ok {
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// Optional attaches an identity when a token is present and resolves, and
// proceeds anonymously otherwise. It never fails the request.
func (a *Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := ExtractToken(c); token != "" {
			if user, err := a.authService.ResolveToken(c.Request.Context(), token); err == nil {
				c.Set(currentUserKey, user)
			}
		}
		c.Next()
	}
}

// resolve extracts and resolves the request token, aborting with 401 on
// failure. It reports whether the caller should continue.
func (a *Auth) resolve(c *gin.Context) (*models.User, bool) {
	token := ExtractToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication token required"})
		return nil, false
	}

	user, err := a.authService.ResolveToken(c.Request.Context(), token)
	if err != nil {
		// Expired, malformed, bad signature and deactivated user all look
		// the same to the client.
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return nil, false
	}
	return user, true
}

// ExtractToken pulls the raw token from the auth cookie, falling back to a
// bearer Authorization header for non-cookie clients.
func ExtractToken(c *gin.Context) string {
	if token, err := c.Cookie(AuthTokenCookie); err == nil && token != "" {
		return token
	}

	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// CurrentUser returns the identity attached by the auth middleware, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
