package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"homeinsight-listings/internal/auth"
	"homeinsight-listings/internal/handlers"
	"homeinsight-listings/internal/middleware"
	"homeinsight-listings/internal/repositories"
	"homeinsight-listings/internal/services"
	"homeinsight-listings/internal/validators"
	"homeinsight-listings/pkg/cache"
	"homeinsight-listings/pkg/config"
	"homeinsight-listings/pkg/database"
	"homeinsight-listings/pkg/logger"
	"homeinsight-listings/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// App represents the application structure
type App struct {
	Config          *config.Config
	Log             *logger.Logger
	Router          *gin.Engine
	Mongo           *database.Mongo
	Cache           *cache.ReadThrough
	Issuer          *auth.Issuer
	ListingHandler  *handlers.ListingHandler
	FavoriteHandler *handlers.FavoriteHandler
	UserHandler     *handlers.UserHandler
	RateLimiter     *middleware.RateLimiter
	Server          *http.Server

	storePing func(context.Context) error
	stop      context.CancelFunc
}

type stores struct {
	listings  repositories.ListingRepository
	favorites repositories.FavoriteRepository
	users     repositories.UserRepository
}

// NewApp connects the store and the cache and wires every layer.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}
	ctx, stop := context.WithCancel(context.Background())
	app.stop = stop

	metrics.Init()

	st, err := app.initializeDatabase(ctx)
	if err != nil {
		app.cleanup()
		return nil, err
	}
	if err := app.initializeCache(); err != nil {
		app.cleanup()
		return nil, err
	}
	app.initializeRateLimiter(ctx)
	app.initializeDependencies(st)
	app.initializeRouter()
	return app, nil
}

func (a *App) initializeDatabase(ctx context.Context) (stores, error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return st, err
	}
	d := a.Config.DatabaseTimeout()
	return stores{
		listings:  repositories.ListingsWithDeadline(st.listings, d),
		favorites: repositories.FavoritesWithDeadline(st.favorites, d),
		users:     repositories.UsersWithDeadline(st.users, d),
	}, nil
}

func (a *App) openStore(ctx context.Context) (stores, error) {
	if a.Config.Database.Driver == config.DriverMemory {
		a.Log.Warnf("Using in-memory store, data is lost on restart")
		mem := repositories.NewMemoryStore()
		a.storePing = func(context.Context) error { return nil }
		return stores{mem.Listings(), mem.Favorites(), mem.Users()}, nil
	}

	m, err := database.Connect(ctx, a.Config, a.Log)
	if err != nil {
		return stores{}, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.Mongo = m
	a.storePing = m.Ping

	if a.Config.Database.CreateIndexesOnRun {
		ictx, cancel := context.WithTimeout(ctx, a.Config.DatabaseTimeout())
		defer cancel()
		if err := m.CreateIndexes(ictx); err != nil {
			return stores{}, fmt.Errorf("failed to create indexes: %w", err)
		}
	}
	return stores{
		listings:  repositories.NewListingRepository(m.DB),
		favorites: repositories.NewFavoriteRepository(m.DB),
		users:     repositories.NewUserRepository(m.DB),
	}, nil
}

func (a *App) initializeCache() error {
	c, err := cache.New(a.Config, a.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	a.Cache = c
	return nil
}

func (a *App) initializeRateLimiter(ctx context.Context) {
	a.RateLimiter = middleware.NewRateLimiter(a.Config.RateLimit.RequestsPerMinute, a.Config.RateLimit.Burst)
	go a.RateLimiter.Cleanup(ctx, time.Minute)
}

func (a *App) initializeDependencies(st stores) {
	ttl := a.Config.CacheTTL()
	a.Issuer = auth.NewIssuer(a.Config.JWT.Secret, a.Config.JWTTTL())
	invalidator := services.NewInvalidator(a.Cache, a.Log, 2*a.Config.CacheOpTimeout())

	listingService := services.NewListingService(st.listings, st.favorites, a.Cache, invalidator, validators.NewListingValidator(), ttl, a.Log)
	favoriteService := services.NewFavoriteService(st.listings, st.favorites, a.Cache, invalidator, ttl, a.Log)
	userService := services.NewUserService(st.users, validators.NewUserValidator(), a.Issuer)

	a.ListingHandler = handlers.NewListingHandler(listingService)
	a.FavoriteHandler = handlers.NewFavoriteHandler(favoriteService)
	a.UserHandler = handlers.NewUserHandler(userService)
}

func (a *App) initializeRouter() {
	a.Router = gin.New()
	a.setupMiddleware()
	a.setupRoutes()
}

// cleanup closes the cache before Mongo. Safe on a partially built App.
func (a *App) cleanup() {
	if a.stop != nil {
		a.stop()
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Log.Errorf("Error closing cache: %v", err)
		}
	}
	a.Mongo.Close()
}
