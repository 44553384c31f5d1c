package api

import (
	"github.com/gin-gonic/gin"

	"github.com/parchmentlabs/questmatch/internal/config"
)

func SetupRoutes(cfg *config.Config, handler *Handler) *gin.Engine {
	router := gin.Default()

	// Create rate limiter
	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Middleware
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/search", handler.Search)

		api.GET("/quests/:id/related", handler.GetRelated)
		api.POST("/quests/:id/related/recompute", handler.RecomputeRelated)

		api.POST("/standardize/resolve", handler.ResolveSystem)
		api.POST("/standardize/feedback", handler.SystemFeedback)
		api.GET("/standardize/stats", handler.StandardizationStats)

		api.POST("/admin/related/rebuild", handler.RebuildRelated)
		api.GET("/admin/related/rebuild/:runId", handler.RebuildStatus)
		api.POST("/admin/index/backfill", handler.BackfillIndex)
		api.POST("/admin/standardize/cleanup", handler.StandardizeCleanup)
	}

	return router
}
