package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyType string

const (
	PropertyTypeApartment PropertyType = "Apartment"
	PropertyTypeHouse     PropertyType = "House"
	PropertyTypeVilla     PropertyType = "Villa"
	PropertyTypeCondo     PropertyType = "Condo"
	PropertyTypeTownhouse PropertyType = "Townhouse"
)

// PropertyTypes lists every accepted property type.
var PropertyTypes = []PropertyType{
	PropertyTypeApartment,
	PropertyTypeHouse,
	PropertyTypeVilla,
	PropertyTypeCondo,
	PropertyTypeTownhouse,
}

func (t PropertyType) Valid() bool {
	for _, v := range PropertyTypes {
		if t == v {
			return true
		}
	}
	return false
}

type ListingStatus string

const (
	StatusAvailable ListingStatus = "Available"
	StatusSold      ListingStatus = "Sold"
	StatusRented    ListingStatus = "Rented"
)

var ListingStatuses = []ListingStatus{StatusAvailable, StatusSold, StatusRented}

func (s ListingStatus) Valid() bool {
	for _, v := range ListingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Listing struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description" bson:"description"`
	Price         float64            `json:"price" bson:"price"`
	Location      string             `json:"location" bson:"location"`
	PropertyType  PropertyType       `json:"propertyType" bson:"propertyType"`
	Bedrooms      int                `json:"bedrooms" bson:"bedrooms"`
	Bathrooms     int                `json:"bathrooms" bson:"bathrooms"`
	Area          float64            `json:"area" bson:"area"`
	Amenities     []string           `json:"amenities" bson:"amenities"`
	Images        []string           `json:"images" bson:"images"`
	Status        ListingStatus      `json:"status" bson:"status"`
	CreatedBy     primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	FavoriteCount int                `json:"favoriteCount" bson:"favoriteCount"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// OwnedBy reports whether userID (hex) created the listing.
func (l *Listing) OwnedBy(userID string) bool {
	return userID != "" && l.CreatedBy.Hex() == userID
}

// ListingInput is the create payload. Pointer fields distinguish a missing
// value from zero.
type ListingInput struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Price        *float64      `json:"price"`
	Location     string        `json:"location"`
	PropertyType PropertyType  `json:"propertyType"`
	Bedrooms     *int          `json:"bedrooms"`
	Bathrooms    *int          `json:"bathrooms"`
	Area         *float64      `json:"area"`
	Amenities    []string      `json:"amenities"`
	Images       []string      `json:"images"`
	Status       ListingStatus `json:"status"`
}

// ToListing builds a new listing owned by ownerID. Missing status defaults
// to Available and favoriteCount starts at zero.
func (in *ListingInput) ToListing(ownerID primitive.ObjectID, now time.Time) *Listing {
	l := &Listing{
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		PropertyType: in.PropertyType,
		Amenities:    nonNil(in.Amenities),
		Images:       nonNil(in.Images),
		Status:       in.Status,
		CreatedBy:    ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Price != nil {
		l.Price = *in.Price
	}
	if in.Bedrooms != nil {
		l.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		l.Bathrooms = *in.Bathrooms
	}
	if in.Area != nil {
		l.Area = *in.Area
	}
	if l.Status == "" {
		l.Status = StatusAvailable
	}
	return l
}

// ListingPatch is a partial update. Owner, favoriteCount and timestamps are
// deliberately absent.
type ListingPatch struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Price        *float64       `json:"price,omitempty"`
	Location     *string        `json:"location,omitempty"`
	PropertyType *PropertyType  `json:"propertyType,omitempty"`
	Bedrooms     *int           `json:"bedrooms,omitempty"`
	Bathrooms    *int           `json:"bathrooms,omitempty"`
	Area         *float64       `json:"area,omitempty"`
	Amenities    *[]string      `json:"amenities,omitempty"`
	Images       *[]string      `json:"images,omitempty"`
	Status       *ListingStatus `json:"status,omitempty"`
}

func (p *ListingPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil &&
		p.Location == nil && p.PropertyType == nil && p.Bedrooms == nil &&
		p.Bathrooms == nil && p.Area == nil && p.Amenities == nil &&
		p.Images == nil && p.Status == nil
}

// Apply writes the patch onto l and stamps UpdatedAt.
func (p *ListingPatch) Apply(l *Listing, now time.Time) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.PropertyType != nil {
		l.PropertyType = *p.PropertyType
	}
	if p.Bedrooms != nil {
		l.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		l.Bathrooms = *p.Bathrooms
	}
	if p.Area != nil {
		l.Area = *p.Area
	}
	if p.Amenities != nil {
		l.Amenities = nonNil(*p.Amenities)
	}
	if p.Images != nil {
		l.Images = nonNil(*p.Images)
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	l.UpdatedAt = now
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
