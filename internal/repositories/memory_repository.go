package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps listings, favorites and users in process memory. It backs
// the `memory` database driver and the service tests. Text search matches
// any search term as a case-insensitive substring of title, description or
// location.
type MemoryStore struct {
	mu        sync.RWMutex
	listings  map[primitive.ObjectID]models.Listing
	favorites []models.Favorite
	users     map[string]models.User
	failure   error
	hang      bool

	reads  atomic.Int64
	writes atomic.Int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings: make(map[primitive.ObjectID]models.Listing),
		users:    make(map[string]models.User),
	}
}

// FailWith makes every later operation fail with err wrapped as an upstream
// error. A nil err restores normal operation.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	s.failure = err
	s.mu.Unlock()
}

// Hang makes every later operation block until its context is done, like a
// primary that stopped answering. The store lock is held while blocked.
func (s *MemoryStore) Hang() {
	s.mu.Lock()
	s.hang = true
	s.mu.Unlock()
}

// Reads and Writes count store calls since creation.
func (s *MemoryStore) Reads() int64  { return s.reads.Load() }
func (s *MemoryStore) Writes() int64 { return s.writes.Load() }

func (s *MemoryStore) check(ctx context.Context, op string) error {
	if s.hang {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return apperrors.Upstream(op, err)
	}
	if s.failure != nil {
		return apperrors.Upstream(op, s.failure)
	}
	return nil
}

func (s *MemoryStore) Listings() ListingRepository   { return memoryListings{s} }
func (s *MemoryStore) Favorites() FavoriteRepository { return memoryFavorites{s} }
func (s *MemoryStore) Users() UserRepository         { return memoryUsers{s} }

type memoryListings struct{ s *MemoryStore }

func (r memoryListings) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	s := r.s
	s.reads.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, "find listing"); err != nil {
		return nil, err
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	l, ok := s.listings[oid]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, apperrors.ErrNotFound)
	}
	return cloneListing(l), nil
}

func (r memoryListings) Find(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	s := r.s
	s.reads.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, "find listings"); err != nil {
		return nil, err
	}
	out := []models.Listing{}
	for _, l := range s.listings {
		if filter.Matches(&l) && matchesSearch(&l, filter.Search) {
			out = append(out, *cloneListing(l))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r memoryListings) FindByIDs(ctx context.Context, ids []string) ([]models.Listing, error) {
	s := r.s
	s.reads.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, "find listings by id"); err != nil {
		return nil, err
	}
	out := []models.Listing{}
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		if l, ok := s.listings[oid]; ok {
			out = append(out, *cloneListing(l))
		}
	}
	return out, nil
}

func (r memoryListings) Create(ctx context.Context, listing *models.Listing) error {
	s := r.s
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "insert listing"); err != nil {
		return err
	}
	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	s.listings[listing.ID] = *cloneListing(*listing)
	return nil
}

func (r memoryListings) Update(ctx context.Context, id string, patch models.ListingPatch) (*models.Listing, error) {
	s := r.s
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "update listing"); err != nil {
		return nil, err
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	l, ok := s.listings[oid]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, apperrors.ErrNotFound)
	}
	patch.Apply(&l, time.Now().UTC())
	s.listings[oid] = l
	return cloneListing(l), nil
}

func (r memoryListings) Delete(ctx context.Context, id string) error {
	s := r.s
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "delete listing"); err != nil {
		return err
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	if _, ok := s.listings[oid]; !ok {
		return fmt.Errorf("listing %s: %w", id, apperrors.ErrNotFound)
	}
	delete(s.listings, oid)
	return nil
}

func (r memoryListings) IncrementFavoriteCount(ctx context.Context, id string, delta int) error {
	s := r.s
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "update favorite count"); err != nil {
		return err
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	l, ok := s.listings[oid]
	if !ok {
		if delta > 0 {
			return fmt.Errorf("listing %s: %w", id, apperrors.ErrNotFound)
		}
		return nil
	}
	if l.FavoriteCount+delta < 0 {
		return nil
	}
	l.FavoriteCount += delta
	s.listings[oid] = l
	return nil
}

func (r memoryListings) InsertMany(ctx context.Context, listings []models.Listing) (int, error) {
	s := r.s
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "insert listings"); err != nil {
		return 0, err
	}
	for i := range listings {
		if listings[i].ID.IsZero() {
			listings[i].ID = primitive.NewObjectID()
		}
		s.listings[listings[i].ID] = *cloneListing(listings[i])
	}
	return len(listings), nil
}

type memoryFavorites struct{ s *MemoryStore }

func (r memoryFavorites) index(uid, lid primitive.ObjectID) int {
	for i, f := range r.s.favorites {
		if f.UserID == uid && f.ListingID == lid {
			return i
		}
	}
	return -1
}

func (r memoryFavorites) Add(ctx context.Context, userID, listingID string) error {
	s := r.s
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "insert favorite"); err != nil {
		return err
	}
	uid, err := objectID(userID)
	if err != nil {
		return err
	}
	lid, err := objectID(listingID)
	if err != nil {
		return err
	}
	if r.index(uid, lid) >= 0 {
		return fmt.Errorf("user %s, listing %s: %w", userID, listingID, apperrors.ErrAlreadyFavorited)
	}
	s.favorites = append(s.favorites, models.Favorite{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		ListingID: lid,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (r memoryFavorites) Remove(ctx context.Context, userID, listingID string) error {
	s := r.s
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "delete favorite"); err != nil {
		return err
	}
	uid, err := objectID(userID)
	if err != nil {
		return err
	}
	lid, err := objectID(listingID)
	if err != nil {
		return err
	}
	i := r.index(uid, lid)
	if i < 0 {
		return fmt.Errorf("user %s, listing %s: %w", userID, listingID, apperrors.ErrNotFavorited)
	}
	s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
	return nil
}

func (r memoryFavorites) ListingIDs(ctx context.Context, userID string) ([]string, error) {
	s := r.s
	s.reads.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, "find favorites"); err != nil {
		return nil, err
	}
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	// favorites are appended in insertion order
	ids := []string{}
	for i := len(s.favorites) - 1; i >= 0; i-- {
		if f := s.favorites[i]; f.UserID == uid {
			ids = append(ids, f.ListingID.Hex())
		}
	}
	return ids, nil
}

func (r memoryFavorites) RemoveListing(ctx context.Context, listingID string) ([]string, error) {
	s := r.s
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "delete favorites of listing"); err != nil {
		return nil, err
	}
	lid, err := objectID(listingID)
	if err != nil {
		return nil, err
	}
	users := []string{}
	kept := s.favorites[:0]
	for _, f := range s.favorites {
		if f.ListingID == lid {
			users = append(users, f.UserID.Hex())
			continue
		}
		kept = append(kept, f)
	}
	s.favorites = kept
	return users, nil
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s := r.s
	s.reads.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx, "find user"); err != nil {
		return nil, err
	}
	u, ok := s.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
	}
	return &u, nil
}

func (r memoryUsers) Create(ctx context.Context, user *models.User) error {
	s := r.s
	s.writes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx, "insert user"); err != nil {
		return err
	}
	if _, ok := s.users[user.Email]; ok {
		return fmt.Errorf("user %s: %w", user.Email, apperrors.ErrEmailTaken)
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.Email] = *user
	return nil
}

func cloneListing(l models.Listing) *models.Listing {
	l.Amenities = append([]string{}, l.Amenities...)
	l.Images = append([]string{}, l.Images...)
	return &l
}

func matchesSearch(l *models.Listing, search string) bool {
	if search == "" {
		return true
	}
	haystack := strings.ToLower(l.Title + " " + l.Description + " " + l.Location)
	for _, term := range strings.Fields(strings.ToLower(search)) {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

func sortNewestFirst(listings []models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.Hex() > b.ID.Hex()
	})
}
