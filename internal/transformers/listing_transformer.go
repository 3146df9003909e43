package transformers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"homeinsight-listings/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultTitle        = "Untitled Property"
	DefaultDescription  = "No description available"
	DefaultLocation     = "Unknown Location"
	DefaultPropertyType = models.PropertyTypeApartment
)

type listingTransformer struct {
	opts Options
	now  func() time.Time
}

func NewListingTransformer(opts Options) ListingTransformer {
	return &listingTransformer{
		opts: opts,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// TransformRow fills blank text columns with placeholders and unparsable
// numbers with zero. An unknown propertyType or status is an error since
// the row would never match a search on it.
func (t *listingTransformer) TransformRow(row map[string]string) (*models.Listing, error) {
	owner, err := t.owner(getString(row, "createdBy"))
	if err != nil {
		return nil, err
	}

	now := t.now()
	listing := &models.Listing{
		ID:           primitive.NewObjectID(),
		Title:        orDefault(getString(row, "title"), DefaultTitle),
		Description:  orDefault(getString(row, "description"), DefaultDescription),
		Price:        getFloat(row, "price"),
		Location:     orDefault(getString(row, "location"), DefaultLocation),
		PropertyType: models.PropertyType(orDefault(getString(row, "propertyType"), string(DefaultPropertyType))),
		Bedrooms:     getInt(row, "bedrooms"),
		Bathrooms:    getInt(row, "bathrooms"),
		Area:         getFloat(row, "area"),
		Amenities:    getList(row, "amenities"),
		Images:       getList(row, "images"),
		Status:       models.ListingStatus(orDefault(getString(row, "status"), string(models.StatusAvailable))),
		CreatedBy:    owner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if !listing.PropertyType.Valid() {
		return nil, fmt.Errorf("invalid propertyType %q", listing.PropertyType)
	}
	if !listing.Status.Valid() {
		return nil, fmt.Errorf("invalid status %q", listing.Status)
	}
	return listing, nil
}

func (t *listingTransformer) owner(raw string) (primitive.ObjectID, error) {
	if raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("invalid createdBy %q", raw)
		}
		return id, nil
	}
	if t.opts.DefaultOwner.IsZero() {
		return primitive.NilObjectID, fmt.Errorf("createdBy is missing and no default owner is set")
	}
	return t.opts.DefaultOwner, nil
}

func getString(row map[string]string, key string) string {
	return strings.TrimSpace(row[key])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func getFloat(row map[string]string, key string) float64 {
	f, err := strconv.ParseFloat(getString(row, key), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// getInt truncates like the float columns, so "2.5" bedrooms reads as 2.
func getInt(row map[string]string, key string) int {
	return int(getFloat(row, key))
}

func getList(row map[string]string, key string) []string {
	out := []string{}
	for _, part := range strings.Split(getString(row, key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
