package repositories

import (
	"context"
	"time"

	"homeinsight-listings/internal/models"
)

// Every store call made through these wrappers fails once d elapses instead
// of waiting on a hung server. The underlying store maps the expired context
// to errors.ErrUpstreamUnavailable.

func ListingsWithDeadline(r ListingRepository, d time.Duration) ListingRepository {
	if d <= 0 {
		return r
	}
	return deadlineListings{r: r, d: d}
}

func FavoritesWithDeadline(r FavoriteRepository, d time.Duration) FavoriteRepository {
	if d <= 0 {
		return r
	}
	return deadlineFavorites{r: r, d: d}
}

func UsersWithDeadline(r UserRepository, d time.Duration) UserRepository {
	if d <= 0 {
		return r
	}
	return deadlineUsers{r: r, d: d}
}

type deadlineListings struct {
	r ListingRepository
	d time.Duration
}

func (w deadlineListings) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.FindByID(ctx, id)
}

func (w deadlineListings) Find(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.Find(ctx, filter)
}

func (w deadlineListings) FindByIDs(ctx context.Context, ids []string) ([]models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.FindByIDs(ctx, ids)
}

func (w deadlineListings) Create(ctx context.Context, listing *models.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.Create(ctx, listing)
}

func (w deadlineListings) Update(ctx context.Context, id string, patch models.ListingPatch) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.Update(ctx, id, patch)
}

func (w deadlineListings) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.Delete(ctx, id)
}

func (w deadlineListings) IncrementFavoriteCount(ctx context.Context, id string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.IncrementFavoriteCount(ctx, id, delta)
}

// InsertMany is a bulk write; the deadline covers the whole batch.
func (w deadlineListings) InsertMany(ctx context.Context, listings []models.Listing) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.InsertMany(ctx, listings)
}

type deadlineFavorites struct {
	r FavoriteRepository
	d time.Duration
}

func (w deadlineFavorites) Add(ctx context.Context, userID, listingID string) error {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.Add(ctx, userID, listingID)
}

func (w deadlineFavorites) Remove(ctx context.Context, userID, listingID string) error {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.Remove(ctx, userID, listingID)
}

func (w deadlineFavorites) ListingIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.ListingIDs(ctx, userID)
}

func (w deadlineFavorites) RemoveListing(ctx context.Context, listingID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.RemoveListing(ctx, listingID)
}

type deadlineUsers struct {
	r UserRepository
	d time.Duration
}

func (w deadlineUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.FindByEmail(ctx, email)
}

func (w deadlineUsers) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, w.d)
	defer cancel()
	return w.r.Create(ctx, user)
}
