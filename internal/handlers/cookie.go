package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/task-service/internal/middleware"
)

// CookieHelper manages the auth token cookie.
type CookieHelper struct {
	domain string
	secure bool
}

// NewCookieHelper creates a cookie helper. secure controls the Secure flag
// and should be on outside development.
func NewCookieHelper(domain string, secure bool) *CookieHelper {
	return &CookieHelper{domain: domain, secure: secure}
}

// SetAuthCookie stores the token in an HTTP-only, SameSite=Lax cookie whose
// max-age matches the token TTL.
func (h *CookieHelper) SetAuthCookie(c *gin.Context, token string, ttl time.Duration) {
	h.setCookie(c, token, int(ttl.Seconds()))
}

// ClearAuthCookie removes the auth cookie.
func (h *CookieHelper) ClearAuthCookie(c *gin.Context) {
	h.setCookie(c, "", -1)
}

func (h *CookieHelper) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AuthTokenCookie,
		value,
		maxAge,
		"/",
		h.domain,
		h.secure,
		true, // httpOnly - always true for auth cookies
	)
}
