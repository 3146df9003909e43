package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes creates the indexes every repository query relies on. It is
// idempotent.
func (m *Mongo) CreateIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	models := map[string][]mongo.IndexModel{
		ListingsCollection: {
			{
				Keys: bson.D{
					{Key: "title", Value: "text"},
					{Key: "description", Value: "text"},
					{Key: "location", Value: "text"},
				},
			},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
			{Keys: bson.D{{Key: "price", Value: 1}}},
		},
		FavoritesCollection: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "listingId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "listingId", Value: 1}}},
		},
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for _, name := range []string{ListingsCollection, FavoritesCollection, UsersCollection} {
		start := time.Now()
		_, err := m.Collection(name).Indexes().CreateMany(ctx, models[name])
		Observe("create_indexes", name, start, err)
		if err != nil {
			m.log.Errorf("Failed to create indexes on %s: %v", name, err)
			return err
		}
	}

	m.log.Println("MongoDB indexes created successfully.")
	return nil
}
