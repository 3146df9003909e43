package handlers

import (
	"net/http"

	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/middleware"
	"homeinsight-listings/internal/models"
	"homeinsight-listings/internal/services"
	"homeinsight-listings/internal/validators"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listingService *services.ListingService
}

func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// SearchListings godoc
// @Summary Search listings
// @Description Filter listings by text, price, type, rooms, area, location and status. Newest first.
// @Tags Listings
// @Produce json
// @Param search query string false "Text search"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Success 200 {array} models.Listing
// @Failure 400 {object} map[string]interface{}
// @Router /listings [get]
func (h *ListingHandler) SearchListings(c *gin.Context) {
	filter, err := validators.ParseListingFilter(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}

	listings, hit, err := h.listingService.SearchListings(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	setCacheHeader(c, hit)
	c.JSON(http.StatusOK, listings)
}

// GetListing godoc
// @Summary Get listing by ID
// @Tags Listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} models.Listing
// @Failure 404 {object} map[string]interface{}
// @Router /listings/{id} [get]
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.listingService.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// CreateListing godoc
// @Summary Create a listing owned by the caller
// @Tags Listings
// @Accept json
// @Produce json
// @Param listing body models.ListingInput true "Listing data"
// @Security BearerAuth
// @Success 201 {object} models.Listing
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /listings [post]
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var input models.ListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.InvalidInput("invalid request body"))
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), &input, middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) UpdateListing(c *gin.Context) {
	var patch models.ListingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		_ = c.Error(apperrors.InvalidInput("invalid request body"))
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), c.Param("id"), &patch, middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) DeleteListing(c *gin.Context) {
	if err := h.listingService.DeleteListing(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Listing deleted"})
}
