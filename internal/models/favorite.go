package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite is one row of the user/listing favorites relation.
type Favorite struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	ListingID primitive.ObjectID `json:"listingId" bson:"listingId"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
