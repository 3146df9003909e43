package repositories

import (
	"context"

	"homeinsight-listings/internal/models"
)

// ListingRepository is the durable store of listings. Every method honours
// ctx; driver failures wrap errors.ErrUpstreamUnavailable.
type ListingRepository interface {
	// FindByID returns errors.ErrNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	// Find returns every listing matching filter, newest first.
	Find(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	// FindByIDs returns the listings that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]models.Listing, error)
	Create(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, id string, patch models.ListingPatch) (*models.Listing, error)
	Delete(ctx context.Context, id string) error
	// IncrementFavoriteCount atomically adds delta. The count never drops
	// below zero.
	IncrementFavoriteCount(ctx context.Context, id string, delta int) error
	InsertMany(ctx context.Context, listings []models.Listing) (int, error)
}

// FavoriteRepository stores the user/listing favorites relation.
type FavoriteRepository interface {
	// Add returns errors.ErrAlreadyFavorited if the pair exists.
	Add(ctx context.Context, userID, listingID string) error
	// Remove returns errors.ErrNotFavorited if the pair does not exist.
	Remove(ctx context.Context, userID, listingID string) error
	// ListingIDs returns the user's favorited listing ids, most recent first.
	ListingIDs(ctx context.Context, userID string) ([]string, error)
	// RemoveListing drops every favorite of a listing and returns the ids of
	// the users that had it.
	RemoveListing(ctx context.Context, listingID string) ([]string, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}
