package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func csrfRouter(allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CSRF(allowedOrigins))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.GET("/x", ok)
	router.POST("/x", ok)
	router.PUT("/x", ok)
	router.DELETE("/x", ok)
	return router
}

func TestCSRF(t *testing.T) {
	router := csrfRouter([]string{
		"https://app.example.com",
		"http://localhost:3000",
	})

	tests := []struct {
		name       string
		method     string
		origin     string
		referer    string
		wantStatus int
	}{
		{
			name:       "GET passes without headers",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with allowed origin passes",
			method:     http.MethodPost,
			origin:     "https://app.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with allowed origin trailing slash passes",
			method:     http.MethodPost,
			origin:     "https://app.example.com/",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with allowed origin differing case passes",
			method:     http.MethodPost,
			origin:     "HTTPS://APP.EXAMPLE.COM",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with foreign origin blocked",
			method:     http.MethodPost,
			origin:     "https://evil.example.net",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with wrong port blocked",
			method:     http.MethodPost,
			origin:     "http://localhost:9999",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST falls back to valid referer",
			method:     http.MethodPost,
			referer:    "https://app.example.com/tasks/5",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with foreign referer blocked",
			method:     http.MethodPost,
			referer:    "https://evil.example.net/attack",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with no origin or referer blocked",
			method:     http.MethodPost,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "PUT with foreign origin blocked",
			method:     http.MethodPut,
			origin:     "https://evil.example.net",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "DELETE with allowed origin passes",
			method:     http.MethodDelete,
			origin:     "http://localhost:3000",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestCSRF_EmptyAllowListDisablesCheck(t *testing.T) {
	router := csrfRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when no origins are configured", w.Code)
	}
}
