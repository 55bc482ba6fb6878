// Package routes defines HTTP routes for the task service.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/taskhive/task-service/docs"
	"github.com/taskhive/task-service/internal/config"
	"github.com/taskhive/task-service/internal/handlers"
	"github.com/taskhive/task-service/internal/middleware"
	"github.com/taskhive/task-service/pkg/metrics"
)

// Setup configures all HTTP routes for the application.
func Setup(
	router *gin.Engine,
	cfg *config.Config,
	auth *middleware.Auth,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	healthHandler *handlers.HealthHandler,
	m *metrics.Metrics,
) {
	router.Use(m.Middleware())
	router.Use(middleware.CSRF(cfg.AllowedOrigins))

	// Health and metrics
	router.GET("/", healthHandler.Check)
	router.GET("/api", healthHandler.Index)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", auth.Required(), authHandler.Me)
		authGroup.PUT("/change-password", auth.Required(), authHandler.ChangePassword)
	}

	tasks := api.Group("/tasks", auth.Required())
	{
		tasks.POST("", taskHandler.Create)
		tasks.GET("", taskHandler.List)
		tasks.GET("/stats", taskHandler.Stats)
		tasks.GET("/:id", taskHandler.Get)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	admin := api.Group("/tasks/admin", auth.AdminRequired())
	{
		admin.GET("/all", taskHandler.ListAll)
	}

	// Swagger documentation (only if SWAGGER_HOST is configured)
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
