package handlers

import (
	"net/http"

	"homeinsight-listings/internal/middleware"
	"homeinsight-listings/internal/services"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	favoriteService *services.FavoriteService
}

func NewFavoriteHandler(favoriteService *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// GetFavorites godoc
// @Summary List the caller's favorite listings
// @Tags Favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Listing
// @Failure 401 {object} map[string]interface{}
// @Router /favorites [get]
func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	listings, hit, err := h.favoriteService.GetFavorites(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	setCacheHeader(c, hit)
	c.JSON(http.StatusOK, listings)
}

func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	if err := h.favoriteService.AddFavorite(c.Request.Context(), middleware.UserID(c), c.Param("listingId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Listing added to favorites"})
}

func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	if err := h.favoriteService.RemoveFavorite(c.Request.Context(), middleware.UserID(c), c.Param("listingId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Listing removed from favorites"})
}
