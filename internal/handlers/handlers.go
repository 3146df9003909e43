package handlers

import (
	"homeinsight-listings/internal/middleware"

	"github.com/gin-gonic/gin"
)

func setCacheHeader(c *gin.Context, hit bool) {
	if hit {
		c.Header(middleware.CacheHeader, "HIT")
		return
	}
	c.Header(middleware.CacheHeader, "MISS")
}

// MessageResponse is the body of mutations that return no entity.
type MessageResponse struct {
	Message string `json:"message"`
}
