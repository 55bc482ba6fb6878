package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness and API index endpoints.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check godoc
// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Task API is running",
		"status":  "healthy",
		"version": "1.0.0",
	})
}

// Index godoc
// @Summary API index
// @Description List the available endpoints
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Task Management API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"auth": gin.H{
				"register":        "POST /api/auth/register",
				"login":           "POST /api/auth/login",
				"logout":          "POST /api/auth/logout",
				"profile":         "GET /api/auth/me",
				"change_password": "PUT /api/auth/change-password",
			},
			"tasks": gin.H{
				"create":    "POST /api/tasks",
				"list":      "GET /api/tasks",
				"get":       "GET /api/tasks/:id",
				"update":    "PUT /api/tasks/:id",
				"delete":    "DELETE /api/tasks/:id",
				"stats":     "GET /api/tasks/stats",
				"admin_all": "GET /api/tasks/admin/all",
			},
		},
	})
}
