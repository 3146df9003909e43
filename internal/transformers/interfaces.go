package transformers

import (
	"homeinsight-listings/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingTransformer turns one imported row, keyed by column name, into a
// listing ready for insertion.
type ListingTransformer interface {
	TransformRow(row map[string]string) (*models.Listing, error)
}

// Options controls the values used for missing columns.
type Options struct {
	DefaultOwner primitive.ObjectID
}
