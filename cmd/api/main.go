// Package main is the entry point for the task service.
package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/taskhive/task-service/docs"
	"github.com/taskhive/task-service/internal/config"
	"github.com/taskhive/task-service/internal/database"
	"github.com/taskhive/task-service/internal/handlers"
	"github.com/taskhive/task-service/internal/middleware"
	"github.com/taskhive/task-service/internal/repository"
	"github.com/taskhive/task-service/internal/routes"
	"github.com/taskhive/task-service/internal/service"
	"github.com/taskhive/task-service/pkg/metrics"
	"github.com/taskhive/task-service/pkg/redis"
)

// @title Task Management API
// @version 1.0
// @description User accounts with password authentication and per-user task tracking
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token. Cookie auth is also supported.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// Initialize Redis (stats cache)
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize services
	jwtService, err := service.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.Fatal("Failed to create JWT service: ", err)
	}
	authService := service.NewAuthService(userRepo, jwtService)
	taskService := service.NewTaskService(taskRepo, redisClient)

	// Initialize handlers and middleware
	cookies := handlers.NewCookieHelper(cfg.CookieDomain, cfg.CookieSecure())
	authHandler := handlers.NewAuthHandler(authService, jwtService, cookies)
	taskHandler := handlers.NewTaskHandler(taskService)
	healthHandler := handlers.NewHealthHandler()
	authMiddleware := middleware.NewAuth(authService)

	// Setup router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	m := metrics.New(prometheus.DefaultRegisterer)
	routes.Setup(router, cfg, authMiddleware, authHandler, taskHandler, healthHandler, m)

	// Start server
	log.Printf("Starting task service on port %s", cfg.Port)
	if err := router.Run(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
