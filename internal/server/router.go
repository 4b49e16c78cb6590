package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/modulearn/backend/internal/handlers"
	"github.com/modulearn/backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins  []string
	AuthHandler     *handlers.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	CourseHandler   *handlers.CourseHandler
	ProgressHandler *handlers.ProgressHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("modulearn"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Courses
	protected.GET("/courses", cfg.CourseHandler.ListCourses)
	protected.GET("/courses/:id/view", cfg.CourseHandler.GetCourseView)
	protected.POST("/courses/:id/enroll", cfg.CourseHandler.Enroll)
	protected.DELETE("/courses/:id/progress", cfg.CourseHandler.ResetProgress)
	// Item progress
	protected.POST("/items/:id/start", cfg.ProgressHandler.StartItem)
	protected.POST("/items/:id/complete", cfg.ProgressHandler.CompleteItem)
	protected.POST("/items/:id/progress", cfg.ProgressHandler.RecordPartialProgress)

	return router
}
