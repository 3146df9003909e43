package validators

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/models"
)

type listingValidator struct{}

func NewListingValidator() ListingValidator {
	return &listingValidator{}
}

func (v *listingValidator) ValidateCreate(in *models.ListingInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)

	switch {
	case in.Title == "":
		return apperrors.InvalidInput("Title is required")
	case in.Description == "":
		return apperrors.InvalidInput("Description is required")
	case in.Location == "":
		return apperrors.InvalidInput("Location is required")
	case in.Price == nil:
		return apperrors.InvalidInput("Price must be a number")
	case in.Area == nil:
		return apperrors.InvalidInput("Area must be a number")
	case in.Bedrooms == nil:
		return apperrors.InvalidInput("Bedrooms must be a positive number")
	case in.Bathrooms == nil:
		return apperrors.InvalidInput("Bathrooms must be a positive number")
	}
	if err := checkAmount("Price", *in.Price); err != nil {
		return err
	}
	if err := checkAmount("Area", *in.Area); err != nil {
		return err
	}
	if *in.Bedrooms < 0 {
		return apperrors.InvalidInput("Bedrooms must be a positive number")
	}
	if *in.Bathrooms < 0 {
		return apperrors.InvalidInput("Bathrooms must be a positive number")
	}
	if !in.PropertyType.Valid() {
		return apperrors.InvalidInput("Invalid property type")
	}
	if in.Status != "" && !in.Status.Valid() {
		return apperrors.InvalidInput("Invalid status")
	}
	return nil
}

// ValidatePatch applies the create rules to every field the patch sets.
func (v *listingValidator) ValidatePatch(p *models.ListingPatch) error {
	for name, field := range map[string]*string{"Title": p.Title, "Description": p.Description, "Location": p.Location} {
		if field == nil {
			continue
		}
		*field = strings.TrimSpace(*field)
		if *field == "" {
			return apperrors.InvalidInput("%s cannot be empty", name)
		}
	}
	if p.Price != nil {
		if err := checkAmount("Price", *p.Price); err != nil {
			return err
		}
	}
	if p.Area != nil {
		if err := checkAmount("Area", *p.Area); err != nil {
			return err
		}
	}
	if p.Bedrooms != nil && *p.Bedrooms < 0 {
		return apperrors.InvalidInput("Bedrooms must be a positive number")
	}
	if p.Bathrooms != nil && *p.Bathrooms < 0 {
		return apperrors.InvalidInput("Bathrooms must be a positive number")
	}
	if p.PropertyType != nil && !p.PropertyType.Valid() {
		return apperrors.InvalidInput("Invalid property type")
	}
	if p.Status != nil && !p.Status.Valid() {
		return apperrors.InvalidInput("Invalid status")
	}
	return nil
}

func checkAmount(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return apperrors.InvalidInput("%s must be a non-negative number", name)
	}
	return nil
}

// ParseListingFilter reads a search filter from query parameters. Empty
// parameters are treated as absent.
func ParseListingFilter(q url.Values) (models.ListingFilter, error) {
	var (
		f   models.ListingFilter
		err error
	)
	f.Search = strings.TrimSpace(q.Get("search"))
	f.Location = strings.TrimSpace(q.Get("location"))

	ranges := []struct {
		min, max   string
		minP, maxP **float64
	}{
		{"minPrice", "maxPrice", &f.MinPrice, &f.MaxPrice},
		{"minBedrooms", "maxBedrooms", &f.MinBedrooms, &f.MaxBedrooms},
		{"minBathrooms", "maxBathrooms", &f.MinBathrooms, &f.MaxBathrooms},
		{"minArea", "maxArea", &f.MinArea, &f.MaxArea},
	}
	for _, r := range ranges {
		if *r.minP, err = parseBound(q, r.min); err != nil {
			return f, err
		}
		if *r.maxP, err = parseBound(q, r.max); err != nil {
			return f, err
		}
		if *r.minP != nil && *r.maxP != nil && **r.minP > **r.maxP {
			return f, apperrors.InvalidInput("%s cannot be greater than %s", r.min, r.max)
		}
	}

	if t := strings.TrimSpace(q.Get("propertyType")); t != "" {
		f.PropertyType = models.PropertyType(t)
		if !f.PropertyType.Valid() {
			return f, apperrors.InvalidInput("Invalid property type")
		}
	}
	if s := strings.TrimSpace(q.Get("status")); s != "" {
		f.Status = models.ListingStatus(s)
		if !f.Status.Valid() {
			return f, apperrors.InvalidInput("Invalid status")
		}
	}
	return f, nil
}

func parseBound(q url.Values, name string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || checkAmount(name, v) != nil {
		return nil, apperrors.InvalidInput("%s must be a non-negative number", name)
	}
	return &v, nil
}
