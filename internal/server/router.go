package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kidani/kidani-backend/internal/handlers"
)

type RouterConfig struct {
	HealthHandler *handlers.HealthHandler
	LessonHandler *handlers.LessonHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// The lesson player is a separate static frontend, so CORS stays open.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/lessons", cfg.LessonHandler.Generate)
		api.GET("/lessons/:id", cfg.LessonHandler.Status)
		api.GET("/lessons/:id/events", cfg.LessonHandler.Events)
	}

	return router
}
