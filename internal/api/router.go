package api

import (
	"github.com/cadenza-ml/cadenza-api/internal/api/handlers"
	apimiddleware "github.com/cadenza-ml/cadenza-api/internal/api/middleware"
	"github.com/cadenza-ml/cadenza-api/internal/config"
	"github.com/cadenza-ml/cadenza-api/internal/metrics"
	"github.com/cadenza-ml/cadenza-api/internal/registry"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRouter(reg *registry.Registry, db *gorm.DB, cfg *config.Config, cw *metrics.Client, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(cw))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(reg)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// API routes v1
	v1 := router.Group("/api/v1")
	{
		genresHandler := handlers.NewGenresHandler(reg)
		v1.GET("/genres", genresHandler.List)

		generationHandler := handlers.NewGenerationHandler(reg, cfg, cw)
		v1.POST("/genres/:genre/generations", generationHandler.Generate)

		trainingHandler := handlers.NewTrainingHandler(reg, cfg, db, cw)
		v1.POST("/genres/:genre/train", trainingHandler.Train)
		v1.GET("/training/history", trainingHandler.History)
	}

	return router
}
