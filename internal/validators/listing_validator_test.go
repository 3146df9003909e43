package validators

import (
	"errors"
	"net/url"
	"testing"

	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/models"
)

func validInput() *models.ListingInput {
	price, area := 250000.0, 120.5
	beds, baths := 3, 2
	return &models.ListingInput{
		Title:        " Family home ",
		Description:  "Close to schools",
		Price:        &price,
		Location:     "Austin",
		PropertyType: models.PropertyTypeHouse,
		Bedrooms:     &beds,
		Bathrooms:    &baths,
		Area:         &area,
	}
}

func TestValidateCreate(t *testing.T) {
	v := NewListingValidator()
	neg := -1
	negF := -5.0

	tests := []struct {
		name    string
		mutate  func(in *models.ListingInput)
		wantErr bool
	}{
		{"valid", func(in *models.ListingInput) {}, false},
		{"blank title", func(in *models.ListingInput) { in.Title = "   " }, true},
		{"missing description", func(in *models.ListingInput) { in.Description = "" }, true},
		{"missing location", func(in *models.ListingInput) { in.Location = "" }, true},
		{"missing price", func(in *models.ListingInput) { in.Price = nil }, true},
		{"negative price", func(in *models.ListingInput) { in.Price = &negF }, true},
		{"missing area", func(in *models.ListingInput) { in.Area = nil }, true},
		{"negative bedrooms", func(in *models.ListingInput) { in.Bedrooms = &neg }, true},
		{"missing bathrooms", func(in *models.ListingInput) { in.Bathrooms = nil }, true},
		{"unknown type", func(in *models.ListingInput) { in.PropertyType = "Castle" }, true},
		{"unknown status", func(in *models.ListingInput) { in.Status = "Pending" }, true},
		{"explicit status", func(in *models.ListingInput) { in.Status = models.StatusRented }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			err := v.ValidateCreate(in)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidInput) {
					t.Errorf("err = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateCreate_TrimsStrings(t *testing.T) {
	in := validInput()
	if err := NewListingValidator().ValidateCreate(in); err != nil {
		t.Fatal(err)
	}
	if in.Title != "Family home" {
		t.Errorf("Title = %q", in.Title)
	}
}

func TestValidatePatch(t *testing.T) {
	v := NewListingValidator()
	empty := " "
	bad := models.PropertyType("Igloo")
	neg := -2
	ok := "Renovated"

	if err := v.ValidatePatch(&models.ListingPatch{Title: &ok}); err != nil {
		t.Errorf("valid patch: %v", err)
	}
	if err := v.ValidatePatch(&models.ListingPatch{}); err != nil {
		t.Errorf("empty patch: %v", err)
	}
	for name, p := range map[string]*models.ListingPatch{
		"blank title":   {Title: &empty},
		"bad type":      {PropertyType: &bad},
		"neg bathrooms": {Bathrooms: &neg},
	} {
		if err := v.ValidatePatch(p); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestParseListingFilter(t *testing.T) {
	q := url.Values{
		"search":       {" sea view "},
		"minPrice":     {"100000"},
		"maxPrice":     {"250000.5"},
		"propertyType": {"Condo"},
		"minBedrooms":  {"2"},
		"location":     {"Austin"},
		"status":       {"Available"},
		"maxArea":      {""},
	}
	f, err := ParseListingFilter(q)
	if err != nil {
		t.Fatalf("ParseListingFilter: %v", err)
	}
	if f.Search != "sea view" || f.Location != "Austin" {
		t.Errorf("strings = %q / %q", f.Search, f.Location)
	}
	if *f.MinPrice != 100000 || *f.MaxPrice != 250000.5 || *f.MinBedrooms != 2 {
		t.Errorf("bounds = %v %v %v", *f.MinPrice, *f.MaxPrice, *f.MinBedrooms)
	}
	if f.MaxArea != nil || f.MaxBedrooms != nil {
		t.Error("absent bounds parsed as present")
	}
	if f.PropertyType != models.PropertyTypeCondo || f.Status != models.StatusAvailable {
		t.Errorf("enums = %q / %q", f.PropertyType, f.Status)
	}
}

func TestParseListingFilter_Invalid(t *testing.T) {
	for name, q := range map[string]url.Values{
		"malformed number": {"minPrice": {"cheap"}},
		"negative":         {"minArea": {"-1"}},
		"nan":              {"maxPrice": {"NaN"}},
		"inverted range":   {"minPrice": {"500"}, "maxPrice": {"100"}},
		"bad type":         {"propertyType": {"Castle"}},
		"bad status":       {"status": {"Gone"}},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseListingFilter(q); !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}
