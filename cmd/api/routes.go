package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"homeinsight-listings/docs"
	"homeinsight-listings/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// setupRoutes configures all routes
func (a *App) setupRoutes() {
	a.setupStaticRoutes()
	a.Router.GET("/health", a.health)
	a.setupAPIRoutes()
}

// setupStaticRoutes configures documentation, profiling and metrics
func (a *App) setupStaticRoutes() {
	a.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	a.Router.GET("/swagger.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", docs.SwaggerJSON)
	})

	// pprof registers on http.DefaultServeMux; keep it out of production
	if os.Getenv("ENV") != "production" {
		a.Router.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	a.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// health fails only when the store is down. A broken cache degrades reads
// to the store but does not take the service out of rotation.
func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := a.storePing(ctx); err != nil {
		a.Log.Errorf("Store ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database unavailable"})
		return
	}

	status, cacheStatus := "ok", "ok"
	if err := a.Cache.Ping(ctx); err != nil {
		a.Log.Warnf("Cache ping failed: %v", err)
		status, cacheStatus = "degraded", "unavailable"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "database": "ok", "cache": cacheStatus})
}

// setupAPIRoutes configures API routes
func (a *App) setupAPIRoutes() {
	api := a.Router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		authRoutes.POST("/register", a.UserHandler.Register)
		authRoutes.POST("/login", a.UserHandler.Login)

		api.GET("/listings", a.ListingHandler.SearchListings)
		api.GET("/listings/:id", a.ListingHandler.GetListing)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(a.Issuer))
		{
			protected.POST("/listings", a.ListingHandler.CreateListing)
			protected.PUT("/listings/:id", a.ListingHandler.UpdateListing)
			protected.DELETE("/listings/:id", a.ListingHandler.DeleteListing)

			protected.GET("/favorites", a.FavoriteHandler.GetFavorites)
			protected.POST("/favorites/:listingId", a.FavoriteHandler.AddFavorite)
			protected.DELETE("/favorites/:listingId", a.FavoriteHandler.RemoveFavorite)
		}
	}
}
