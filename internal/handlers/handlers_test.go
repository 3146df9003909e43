package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homeinsight-listings/internal/auth"
	"homeinsight-listings/internal/middleware"
	"homeinsight-listings/internal/models"
	"homeinsight-listings/internal/repositories"
	"homeinsight-listings/internal/services"
	"homeinsight-listings/internal/validators"
	"homeinsight-listings/pkg/cache"
	"homeinsight-listings/pkg/cache/cachetest"
	"homeinsight-listings/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testServer struct {
	router *gin.Engine
	issuer *auth.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()

	store := repositories.NewMemoryStore()
	rt := cache.NewReadThrough(cachetest.New(), cache.WithLogger(log))
	inv := services.NewInvalidator(rt, log, time.Second)
	issuer := auth.NewIssuer("test-secret", time.Hour)

	listingHandler := NewListingHandler(services.NewListingService(store.Listings(), store.Favorites(), rt, inv, validators.NewListingValidator(), time.Hour, log))
	favoriteHandler := NewFavoriteHandler(services.NewFavoriteService(store.Listings(), store.Favorites(), rt, inv, time.Hour, log))
	userHandler := NewUserHandler(services.NewUserService(store.Users(), validators.NewUserValidator(), issuer))

	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	api := r.Group("/api")
	api.POST("/auth/register", userHandler.Register)
	api.POST("/auth/login", userHandler.Login)
	api.GET("/listings", listingHandler.SearchListings)
	api.GET("/listings/:id", listingHandler.GetListing)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(issuer))
	protected.POST("/listings", listingHandler.CreateListing)
	protected.PUT("/listings/:id", listingHandler.UpdateListing)
	protected.DELETE("/listings/:id", listingHandler.DeleteListing)
	protected.GET("/favorites", favoriteHandler.GetFavorites)
	protected.POST("/favorites/:listingId", favoriteHandler.AddFavorite)
	protected.DELETE("/favorites/:listingId", favoriteHandler.RemoveFavorite)

	return &testServer{router: r, issuer: issuer}
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	td, err := s.issuer.GenerateJWT(primitive.NewObjectID().Hex(), "Test User", "test@example.com")
	if err != nil {
		t.Fatal(err)
	}
	return td.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error.Code
}

func listingBody(title string, price float64) map[string]any {
	return map[string]any{
		"title":        title,
		"description":  "A nice place",
		"price":        price,
		"location":     "Austin",
		"propertyType": "House",
		"bedrooms":     3,
		"bathrooms":    2,
		"area":         1500,
	}
}

func (s *testServer) createListing(t *testing.T, token, title string, price float64) models.Listing {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/listings", token, listingBody(title, price))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var l models.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &l); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestSearchListings_CacheHeader(t *testing.T) {
	s := newTestServer(t)
	owner := s.token(t)
	s.createListing(t, owner, "cheap", 100000)
	s.createListing(t, owner, "mid", 200000)

	w := s.do(t, http.MethodGet, "/api/listings?minPrice=150000&maxPrice=250000", "", nil)
	if w.Code != http.StatusOK || w.Header().Get(middleware.CacheHeader) != "MISS" {
		t.Fatalf("first search status=%d cache=%q", w.Code, w.Header().Get(middleware.CacheHeader))
	}
	var got []models.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "mid" {
		t.Errorf("search = %v", got)
	}

	w = s.do(t, http.MethodGet, "/api/listings?maxPrice=250000&minPrice=150000.0", "", nil)
	if w.Header().Get(middleware.CacheHeader) != "HIT" {
		t.Errorf("repeat search cache = %q, want HIT", w.Header().Get(middleware.CacheHeader))
	}

	s.createListing(t, owner, "new", 180000)
	w = s.do(t, http.MethodGet, "/api/listings?minPrice=150000&maxPrice=250000", "", nil)
	if w.Header().Get(middleware.CacheHeader) != "MISS" {
		t.Error("search after create served from cache")
	}
}

func TestSearchListings_InvalidFilter(t *testing.T) {
	s := newTestServer(t)
	for _, q := range []string{"minPrice=abc", "minPrice=10&maxPrice=5", "propertyType=Castle"} {
		w := s.do(t, http.MethodGet, "/api/listings?"+q, "", nil)
		if w.Code != http.StatusBadRequest || errorCode(t, w) != "INVALID_PARAMETERS" {
			t.Errorf("%s: status = %d, body %s", q, w.Code, w.Body.String())
		}
	}
}

func TestListingLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner, stranger := s.token(t), s.token(t)
	l := s.createListing(t, owner, "home", 100)
	path := "/api/listings/" + l.ID.Hex()

	if w := s.do(t, http.MethodGet, path, "", nil); w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/listings/not-an-id", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("malformed id status = %d", w.Code)
	}

	w := s.do(t, http.MethodPut, path, stranger, map[string]any{"title": "mine now"})
	if w.Code != http.StatusForbidden || errorCode(t, w) != "FORBIDDEN" {
		t.Errorf("stranger update status = %d, body %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodDelete, path, stranger, nil); w.Code != http.StatusForbidden {
		t.Errorf("stranger delete status = %d", w.Code)
	}

	w = s.do(t, http.MethodPut, path, owner, map[string]any{"price": 250})
	if w.Code != http.StatusOK {
		t.Fatalf("owner update status = %d, body %s", w.Code, w.Body.String())
	}
	var updated models.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Price != 250 || updated.Title != "home" {
		t.Errorf("updated = %+v", updated)
	}

	if w := s.do(t, http.MethodDelete, path, owner, nil); w.Code != http.StatusOK {
		t.Errorf("owner delete status = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, path, "", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
}

func TestCreateListing_Rejects(t *testing.T) {
	s := newTestServer(t)
	if w := s.do(t, http.MethodPost, "/api/listings", "", listingBody("x", 1)); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create status = %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/listings", "garbage", listingBody("x", 1)); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", w.Code)
	}

	body := listingBody("x", -1)
	w := s.do(t, http.MethodPost, "/api/listings", s.token(t), body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative price status = %d", w.Code)
	}
}

func TestFavoritesFlow(t *testing.T) {
	s := newTestServer(t)
	owner, user := s.token(t), s.token(t)
	l := s.createListing(t, owner, "home", 100)
	path := "/api/favorites/" + l.ID.Hex()

	if w := s.do(t, http.MethodPost, path, user, nil); w.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", w.Code, w.Body.String())
	}
	w := s.do(t, http.MethodPost, path, user, nil)
	if w.Code != http.StatusConflict || errorCode(t, w) != "ALREADY_FAVORITED" {
		t.Errorf("second add status = %d, body %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/favorites", user, nil)
	if w.Code != http.StatusOK || w.Header().Get(middleware.CacheHeader) != "MISS" {
		t.Fatalf("favorites status = %d cache = %q", w.Code, w.Header().Get(middleware.CacheHeader))
	}
	var favs []models.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &favs); err != nil {
		t.Fatal(err)
	}
	if len(favs) != 1 || favs[0].ID != l.ID || favs[0].FavoriteCount != 1 {
		t.Errorf("favorites = %+v", favs)
	}
	if w := s.do(t, http.MethodGet, "/api/favorites", user, nil); w.Header().Get(middleware.CacheHeader) != "HIT" {
		t.Error("repeat favorites missed the cache")
	}

	if w := s.do(t, http.MethodDelete, path, user, nil); w.Code != http.StatusOK {
		t.Errorf("remove status = %d", w.Code)
	}
	w = s.do(t, http.MethodDelete, path, user, nil)
	if w.Code != http.StatusConflict || errorCode(t, w) != "NOT_FAVORITED" {
		t.Errorf("second remove status = %d, body %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodPost, "/api/favorites/"+primitive.NewObjectID().Hex(), user, nil); w.Code != http.StatusNotFound {
		t.Errorf("favorite missing listing status = %d", w.Code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	reg := map[string]any{"full_name": "Jane Doe", "email": "jane@example.com", "password": "secret1"}

	w := s.do(t, http.MethodPost, "/api/auth/register", "", reg)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodPost, "/api/auth/register", "", reg); w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "jane@example.com", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	var td auth.TokenDetails
	if err := json.Unmarshal(w.Body.Bytes(), &td); err != nil || td.Token == "" {
		t.Fatalf("token = %+v, %v", td, err)
	}
	if w := s.do(t, http.MethodGet, "/api/favorites", td.Token, nil); w.Code != http.StatusOK {
		t.Errorf("favorites with issued token status = %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "jane@example.com", "password": "wrong-password"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "jane"}); w.Code != http.StatusBadRequest {
		t.Errorf("malformed login status = %d", w.Code)
	}
}
