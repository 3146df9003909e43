package repositories

import (
	"errors"
	"testing"
	"time"

	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fptr(f float64) *float64 { return &f }

func TestFilterQuery(t *testing.T) {
	q := filterQuery(models.ListingFilter{
		Search:       "garden",
		MinPrice:     fptr(100),
		MaxPrice:     fptr(200),
		MinBedrooms:  fptr(2),
		PropertyType: models.PropertyTypeHouse,
		Location:     "st. louis (mo)",
		Status:       models.StatusAvailable,
	})

	if got := q["$text"]; got.(bson.M)["$search"] != "garden" {
		t.Errorf("$text = %v", got)
	}
	price := q["price"].(bson.M)
	if price["$gte"] != 100.0 || price["$lte"] != 200.0 {
		t.Errorf("price = %v", price)
	}
	bedrooms := q["bedrooms"].(bson.M)
	if _, ok := bedrooms["$lte"]; ok || bedrooms["$gte"] != 2.0 {
		t.Errorf("bedrooms = %v", bedrooms)
	}
	if _, ok := q["area"]; ok {
		t.Error("absent area range present in query")
	}
	loc := q["location"].(primitive.Regex)
	if loc.Pattern != `st\. louis \(mo\)` || loc.Options != "i" {
		t.Errorf("location regex = %+v", loc)
	}
	if q["propertyType"] != models.PropertyTypeHouse || q["status"] != models.StatusAvailable {
		t.Errorf("exact predicates = %v / %v", q["propertyType"], q["status"])
	}
}

func TestFilterQuery_Empty(t *testing.T) {
	if q := filterQuery(models.ListingFilter{}); len(q) != 0 {
		t.Errorf("empty filter produced %v", q)
	}
}

func TestPatchUpdate(t *testing.T) {
	title := "t"
	amenities := []string(nil)
	now := time.Now()
	set := patchUpdate(models.ListingPatch{Title: &title, Amenities: &amenities}, now)["$set"].(bson.M)

	if set["title"] != "t" || !set["updatedAt"].(time.Time).Equal(now) {
		t.Errorf("$set = %v", set)
	}
	if a, ok := set["amenities"].([]string); !ok || a == nil {
		t.Errorf("amenities = %#v, want empty slice", set["amenities"])
	}
	for _, field := range []string{"createdBy", "favoriteCount", "createdAt", "price"} {
		if _, ok := set[field]; ok {
			t.Errorf("%s present in $set", field)
		}
	}
}

func TestObjectID_Malformed(t *testing.T) {
	if _, err := objectID("not-an-id"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
