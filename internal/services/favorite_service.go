package services

import (
	"context"
	"time"

	"homeinsight-listings/internal/models"
	"homeinsight-listings/internal/repositories"
	"homeinsight-listings/pkg/cache"
	"homeinsight-listings/pkg/logger"
)

type FavoriteService struct {
	listings    repositories.ListingRepository
	favorites   repositories.FavoriteRepository
	cache       ReadThroughCache
	invalidator *Invalidator
	ttl         time.Duration
	log         *logger.Logger
}

func NewFavoriteService(
	listings repositories.ListingRepository,
	favorites repositories.FavoriteRepository,
	cache ReadThroughCache,
	invalidator *Invalidator,
	ttl time.Duration,
	log *logger.Logger,
) *FavoriteService {
	return &FavoriteService{
		listings:    listings,
		favorites:   favorites,
		cache:       cache,
		invalidator: invalidator,
		ttl:         ttl,
		log:         log,
	}
}

// AddFavorite records that userID favorited listingID and bumps the
// listing's favoriteCount. Adding twice fails with ErrAlreadyFavorited and
// changes nothing.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, listingID string) error {
	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		return err
	}
	if err := s.favorites.Add(ctx, userID, listingID); err != nil {
		return err
	}
	s.adjustCount(ctx, listingID, 1)
	s.invalidator.FavoritesChanged(ctx, userID)
	return nil
}

// RemoveFavorite is the inverse of AddFavorite; removing a listing that is
// not a favorite fails with ErrNotFavorited.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, listingID string) error {
	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		return err
	}
	if err := s.favorites.Remove(ctx, userID, listingID); err != nil {
		return err
	}
	s.adjustCount(ctx, listingID, -1)
	s.invalidator.FavoritesChanged(ctx, userID)
	return nil
}

// adjustCount is best effort: the relation row is already committed and
// favoriteCount is allowed to lag it.
func (s *FavoriteService) adjustCount(ctx context.Context, listingID string, delta int) {
	if err := s.listings.IncrementFavoriteCount(ctx, listingID, delta); err != nil {
		s.log.Errorf("failed to adjust favoriteCount of %s by %d: %v", listingID, delta, err)
	}
}

// GetFavorites returns the user's favorited listings, most recently
// favorited first, through the cache. The boolean reports a cache hit.
func (s *FavoriteService) GetFavorites(ctx context.Context, userID string) ([]models.Listing, bool, error) {
	var listings []models.Listing
	hit, err := s.cache.GetOrCompute(ctx, cache.EncodeScope(cache.ScopeFavorites, userID), s.ttl,
		func(ctx context.Context) (any, error) {
			return s.loadFavorites(ctx, userID)
		}, &listings)
	if err != nil {
		return nil, false, err
	}
	return listings, hit, nil
}

func (s *FavoriteService) loadFavorites(ctx context.Context, userID string) ([]models.Listing, error) {
	ids, err := s.favorites.ListingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	found, err := s.listings.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Listing, len(found))
	for _, l := range found {
		byID[l.ID.Hex()] = l
	}
	ordered := make([]models.Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			ordered = append(ordered, l)
		}
	}
	return ordered, nil
}
