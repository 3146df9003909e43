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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listingRepository struct {
	collection *mongo.Collection
}

func NewListingRepository(db *mongo.Database) ListingRepository {
	return &listingRepository{
		collection: db.Collection(database.ListingsCollection),
	}
}

func (r *listingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var listing models.Listing
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		database.Observe("find_one", database.ListingsCollection, start, nil)
		return nil, fmt.Errorf("listing %s: %w", id, apperrors.ErrNotFound)
	}
	database.Observe("find_one", database.ListingsCollection, start, err)
	if err != nil {
		return nil, apperrors.Upstream("find listing", err)
	}
	return &listing, nil
}

func (r *listingRepository) Find(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	start := time.Now()
	cursor, err := r.collection.Find(ctx, filterQuery(filter), options.Find().SetSort(newestFirst))
	if err != nil {
		database.Observe("find", database.ListingsCollection, start, err)
		return nil, apperrors.Upstream("find listings", err)
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	err = cursor.All(ctx, &listings)
	database.Observe("find", database.ListingsCollection, start, err)
	if err != nil {
		return nil, apperrors.Upstream("decode listings", err)
	}
	return listings, nil
}

func (r *listingRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Listing, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	listings := []models.Listing{}
	if len(oids) == 0 {
		return listings, nil
	}

	start := time.Now()
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		database.Observe("find_many", database.ListingsCollection, start, err)
		return nil, apperrors.Upstream("find listings by id", err)
	}
	defer cursor.Close(ctx)
	err = cursor.All(ctx, &listings)
	database.Observe("find_many", database.ListingsCollection, start, err)
	if err != nil {
		return nil, apperrors.Upstream("decode listings", err)
	}
	return listings, nil
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	start := time.Now()
	_, err := r.collection.InsertOne(ctx, listing)
	database.Observe("insert", database.ListingsCollection, start, err)
	if err != nil {
		return apperrors.Upstream("insert listing", err)
	}
	return nil
}

func (r *listingRepository) Update(ctx context.Context, id string, patch models.ListingPatch) (*models.Listing, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var updated models.Listing
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		patchUpdate(patch, time.Now().UTC()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		database.Observe("update", database.ListingsCollection, start, nil)
		return nil, fmt.Errorf("listing %s: %w", id, apperrors.ErrNotFound)
	}
	database.Observe("update", database.ListingsCollection, start, err)
	if err != nil {
		return nil, apperrors.Upstream("update listing", err)
	}
	return &updated, nil
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	database.Observe("delete", database.ListingsCollection, start, err)
	if err != nil {
		return apperrors.Upstream("delete listing", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("listing %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// IncrementFavoriteCount uses a single $inc so concurrent toggles never lose
// an update. A decrement only matches while the count can absorb it.
func (r *listingRepository) IncrementFavoriteCount(ctx context.Context, id string, delta int) error {
	if delta == 0 {
		return nil
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["favoriteCount"] = bson.M{"$gte": -delta}
	}
	start := time.Now()
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"favoriteCount": delta}})
	database.Observe("inc_favorite_count", database.ListingsCollection, start, err)
	if err != nil {
		return apperrors.Upstream("update favorite count", err)
	}
	if res.MatchedCount == 0 && delta > 0 {
		return fmt.Errorf("listing %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *listingRepository) InsertMany(ctx context.Context, listings []models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(listings))
	for i := range listings {
		if listings[i].ID.IsZero() {
			listings[i].ID = primitive.NewObjectID()
		}
		docs[i] = listings[i]
	}
	start := time.Now()
	res, err := r.collection.InsertMany(ctx, docs)
	database.Observe("insert_many", database.ListingsCollection, start, err)
	if err != nil {
		n := 0
		if res != nil {
			n = len(res.InsertedIDs)
		}
		return n, apperrors.Upstream("insert listings", err)
	}
	return len(res.InsertedIDs), nil
}
