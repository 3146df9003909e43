package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/models"
	"homeinsight-listings/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		collection: db.Collection(database.UsersCollection),
	}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	start := time.Now()
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		database.Observe("find_one", database.UsersCollection, start, nil)
		return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
	}
	database.Observe("find_one", database.UsersCollection, start, err)
	if err != nil {
		return nil, apperrors.Upstream("find user", err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	start := time.Now()
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		database.Observe("insert", database.UsersCollection, start, nil)
		return fmt.Errorf("user %s: %w", user.Email, apperrors.ErrEmailTaken)
	}
	database.Observe("insert", database.UsersCollection, start, err)
	if err != nil {
		return apperrors.Upstream("insert user", err)
	}
	return nil
}
