package repositories

import (
	"fmt"
	"regexp"
	"time"

	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newestFirst is the fixed sort of every listing query.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("id %q: %w", id, apperrors.ErrNotFound)
	}
	return oid, nil
}

// filterQuery translates a listing filter to a Mongo query document.
func filterQuery(f models.ListingFilter) bson.M {
	q := bson.M{}
	if f.Search != "" {
		q["$text"] = bson.M{"$search": f.Search}
	}
	addRange(q, "price", f.MinPrice, f.MaxPrice)
	addRange(q, "bedrooms", f.MinBedrooms, f.MaxBedrooms)
	addRange(q, "bathrooms", f.MinBathrooms, f.MaxBathrooms)
	addRange(q, "area", f.MinArea, f.MaxArea)
	if f.PropertyType != "" {
		q["propertyType"] = f.PropertyType
	}
	if f.Location != "" {
		q["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Location), Options: "i"}
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}

func addRange(q bson.M, field string, lo, hi *float64) {
	if lo == nil && hi == nil {
		return
	}
	r := bson.M{}
	if lo != nil {
		r["$gte"] = *lo
	}
	if hi != nil {
		r["$lte"] = *hi
	}
	q[field] = r
}

// patchUpdate builds the $set document of a listing patch.
func patchUpdate(p models.ListingPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.PropertyType != nil {
		set["propertyType"] = *p.PropertyType
	}
	if p.Bedrooms != nil {
		set["bedrooms"] = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		set["bathrooms"] = *p.Bathrooms
	}
	if p.Area != nil {
		set["area"] = *p.Area
	}
	if p.Amenities != nil {
		set["amenities"] = nonNil(*p.Amenities)
	}
	if p.Images != nil {
		set["images"] = nonNil(*p.Images)
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	return bson.M{"$set": set}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
