package repositories

import (
	"context"
	"fmt"
	"time"

	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/models"
	"homeinsight-listings/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type favoriteRepository struct {
	collection *mongo.Collection
}

// NewFavoriteRepository relies on the unique (userId, listingId) index to
// reject duplicates.
func NewFavoriteRepository(db *mongo.Database) FavoriteRepository {
	return &favoriteRepository{
		collection: db.Collection(database.FavoritesCollection),
	}
}

func (r *favoriteRepository) pair(userID, listingID string) (bson.M, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	lid, err := objectID(listingID)
	if err != nil {
		return nil, err
	}
	return bson.M{"userId": uid, "listingId": lid}, nil
}

func (r *favoriteRepository) Add(ctx context.Context, userID, listingID string) error {
	key, err := r.pair(userID, listingID)
	if err != nil {
		return err
	}
	fav := models.Favorite{
		ID:        primitive.NewObjectID(),
		UserID:    key["userId"].(primitive.ObjectID),
		ListingID: key["listingId"].(primitive.ObjectID),
		CreatedAt: time.Now().UTC(),
	}
	start := time.Now()
	_, err = r.collection.InsertOne(ctx, fav)
	if mongo.IsDuplicateKeyError(err) {
		database.Observe("insert", database.FavoritesCollection, start, nil)
		return fmt.Errorf("user %s, listing %s: %w", userID, listingID, apperrors.ErrAlreadyFavorited)
	}
	database.Observe("insert", database.FavoritesCollection, start, err)
	if err != nil {
		return apperrors.Upstream("insert favorite", err)
	}
	return nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, listingID string) error {
	key, err := r.pair(userID, listingID)
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := r.collection.DeleteOne(ctx, key)
	database.Observe("delete", database.FavoritesCollection, start, err)
	if err != nil {
		return apperrors.Upstream("delete favorite", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user %s, listing %s: %w", userID, listingID, apperrors.ErrNotFavorited)
	}
	return nil
}

func (r *favoriteRepository) ListingIDs(ctx context.Context, userID string) ([]string, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"listingId": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": uid}, opts)
	if err != nil {
		database.Observe("find", database.FavoritesCollection, start, err)
		return nil, apperrors.Upstream("find favorites", err)
	}
	defer cursor.Close(ctx)

	var favs []models.Favorite
	err = cursor.All(ctx, &favs)
	database.Observe("find", database.FavoritesCollection, start, err)
	if err != nil {
		return nil, apperrors.Upstream("decode favorites", err)
	}
	ids := make([]string, len(favs))
	for i, f := range favs {
		ids[i] = f.ListingID.Hex()
	}
	return ids, nil
}

func (r *favoriteRepository) RemoveListing(ctx context.Context, listingID string) ([]string, error) {
	lid, err := objectID(listingID)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"listingId": lid}

	start := time.Now()
	raw, err := r.collection.Distinct(ctx, "userId", filter)
	database.Observe("distinct", database.FavoritesCollection, start, err)
	if err != nil {
		return nil, apperrors.Upstream("find favoriting users", err)
	}

	start = time.Now()
	_, err = r.collection.DeleteMany(ctx, filter)
	database.Observe("delete_many", database.FavoritesCollection, start, err)
	if err != nil {
		return nil, apperrors.Upstream("delete favorites of listing", err)
	}

	users := make([]string, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			users = append(users, oid.Hex())
		}
	}
	return users, nil
}
