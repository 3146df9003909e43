package main

import (
	"os"
	"strings"
	"time"

	"homeinsight-listings/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// configure all middleware for the router
func (a *App) setupMiddleware() {
	a.Router.Use(setupCORS())
	a.Router.Use(middleware.MetricsMiddleware())
	a.Router.Use(middleware.LoggingMiddleware(a.Log))
	a.Router.Use(middleware.RateLimitMiddleware(a.RateLimiter))
	a.Router.Use(middleware.SecureHeaders())
	a.Router.Use(middleware.ErrorHandler(a.Log))
	a.Router.Use(gin.Recovery())
}

// setupCORS allows every origin unless CORS_ORIGINS lists them.
func setupCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.CacheHeader}
	corsConfig.MaxAge = 12 * time.Hour

	return cors.New(corsConfig)
}
