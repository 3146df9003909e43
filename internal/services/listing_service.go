package services

import (
	"context"
	"fmt"
	"time"

	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/models"
	"homeinsight-listings/internal/repositories"
	"homeinsight-listings/internal/validators"
	"homeinsight-listings/pkg/cache"
	"homeinsight-listings/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingService struct {
	listings    repositories.ListingRepository
	favorites   repositories.FavoriteRepository
	cache       ReadThroughCache
	invalidator *Invalidator
	validator   validators.ListingValidator
	ttl         time.Duration
	log         *logger.Logger
	now         func() time.Time
}

func NewListingService(
	listings repositories.ListingRepository,
	favorites repositories.FavoriteRepository,
	cache ReadThroughCache,
	invalidator *Invalidator,
	validator validators.ListingValidator,
	ttl time.Duration,
	log *logger.Logger,
) *ListingService {
	return &ListingService{
		listings:    listings,
		favorites:   favorites,
		cache:       cache,
		invalidator: invalidator,
		validator:   validator,
		ttl:         ttl,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SearchListings answers a filter from the cache when possible. The boolean
// reports a cache hit.
func (s *ListingService) SearchListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, bool, error) {
	filter = filter.Normalize()
	key, err := s.cache.NamespaceKey(ctx, cache.ListingQueryNamespace, cache.EncodeFilter(filter.Predicates()))
	if err != nil {
		s.log.Warnf("listing cache unavailable, searching store directly: %v", err)
		listings, err := s.listings.Find(ctx, filter)
		return listings, false, err
	}

	var listings []models.Listing
	hit, err := s.cache.GetOrCompute(ctx, key, s.ttl, func(ctx context.Context) (any, error) {
		return s.listings.Find(ctx, filter)
	}, &listings)
	if err != nil {
		return nil, false, err
	}
	return listings, hit, nil
}

// GetListing reads straight from the store.
func (s *ListingService) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	return s.listings.FindByID(ctx, id)
}

func (s *ListingService) CreateListing(ctx context.Context, input *models.ListingInput, ownerID string) (*models.Listing, error) {
	if err := s.validator.ValidateCreate(input); err != nil {
		return nil, err
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, fmt.Errorf("owner %q: %w", ownerID, apperrors.ErrUnauthorized)
	}

	listing := input.ToListing(owner, s.now())
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	s.invalidator.ListingsChanged(ctx, "create "+listing.ID.Hex())
	return listing, nil
}

// UpdateListing applies patch on behalf of requesterID, who must own the
// listing. A rejected request writes nothing and invalidates nothing.
func (s *ListingService) UpdateListing(ctx context.Context, id string, patch *models.ListingPatch, requesterID string) (*models.Listing, error) {
	if _, err := s.ownedListing(ctx, id, requesterID, "update"); err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePatch(patch); err != nil {
		return nil, err
	}

	updated, err := s.listings.Update(ctx, id, *patch)
	if err != nil {
		return nil, err
	}
	s.invalidator.ListingsChanged(ctx, "update "+id)
	return updated, nil
}

// DeleteListing removes a listing owned by requesterID together with every
// favorite pointing at it.
func (s *ListingService) DeleteListing(ctx context.Context, id, requesterID string) error {
	if _, err := s.ownedListing(ctx, id, requesterID, "delete"); err != nil {
		return err
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return err
	}

	users, err := s.favorites.RemoveListing(ctx, id)
	if err != nil {
		// GetFavorites skips listings that no longer exist
		s.log.Errorf("failed to remove favorites of deleted listing %s: %v", id, err)
	}
	s.invalidator.ListingsChanged(ctx, "delete "+id)
	s.invalidator.FavoritesChanged(ctx, users...)
	return nil
}

func (s *ListingService) ownedListing(ctx context.Context, id, requesterID, action string) (*models.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(requesterID) {
		return nil, fmt.Errorf("%s listing %s by %s: %w", action, id, requesterID, apperrors.ErrForbidden)
	}
	return listing, nil
}
