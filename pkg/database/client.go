package database

import (
	"context"
	"fmt"
	"time"

	"homeinsight-listings/pkg/config"
	"homeinsight-listings/pkg/logger"
	"homeinsight-listings/pkg/metrics"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	ListingsCollection  = "listings"
	FavoritesCollection = "favorites"
	UsersCollection     = "users"
)

// Mongo holds the client and the service database. It is created once at
// start-up and closed on shutdown.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
	log    *logger.Logger
}

// Connect dials MongoDB and pings the primary.
func Connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout())
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.Database.URI).
		SetConnectTimeout(cfg.DatabaseTimeout()).
		SetTimeout(cfg.DatabaseTimeout()).
		SetMaxPoolSize(cfg.Database.MaxPoolSize)

	start := time.Now()
	client, err := mongo.Connect(ctx, clientOptions)
	Observe("connect", "", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	m := &Mongo{Client: client, DB: client.Database(cfg.Database.DBName), log: log}
	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	log.Println("MongoDB connected successfully.")
	return m, nil
}

func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.DB.Collection(name)
}

func (m *Mongo) Ping(ctx context.Context) error {
	start := time.Now()
	err := m.Client.Ping(ctx, readpref.Primary())
	Observe("ping", "", start, err)
	return err
}

// Close disconnects the client, waiting at most 5 seconds.
func (m *Mongo) Close() {
	if m == nil || m.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	err := m.Client.Disconnect(ctx)
	Observe("disconnect", "", start, err)
	if err != nil {
		m.log.Errorf("Error closing MongoDB: %v", err)
		return
	}
	m.log.Println("MongoDB connection closed")
}

// Observe records the duration of a Mongo operation and counts failures.
func Observe(operation, collection string, start time.Time, err error) {
	metrics.MongoOperationDuration.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MongoErrorsTotal.WithLabelValues(operation, collection).Inc()
	}
}
