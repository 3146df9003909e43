package models

import "strings"

// ListingFilter is a search query over listings. Results are always sorted
// newest first. Nil range bounds and empty strings are absent predicates.
type ListingFilter struct {
	Search       string        `json:"search,omitempty"`
	MinPrice     *float64      `json:"minPrice,omitempty"`
	MaxPrice     *float64      `json:"maxPrice,omitempty"`
	PropertyType PropertyType  `json:"propertyType,omitempty"`
	MinBedrooms  *float64      `json:"minBedrooms,omitempty"`
	MaxBedrooms  *float64      `json:"maxBedrooms,omitempty"`
	MinBathrooms *float64      `json:"minBathrooms,omitempty"`
	MaxBathrooms *float64      `json:"maxBathrooms,omitempty"`
	MinArea      *float64      `json:"minArea,omitempty"`
	MaxArea      *float64      `json:"maxArea,omitempty"`
	Location     string        `json:"location,omitempty"`
	Status       ListingStatus `json:"status,omitempty"`
}

// Normalize returns the canonical form of f: search and location are
// trimmed, lower-cased and have inner whitespace collapsed. Both are matched
// case-insensitively, so this does not change the result set.
func (f ListingFilter) Normalize() ListingFilter {
	f.Search = collapse(f.Search)
	f.Location = collapse(f.Location)
	f.PropertyType = PropertyType(strings.TrimSpace(string(f.PropertyType)))
	f.Status = ListingStatus(strings.TrimSpace(string(f.Status)))
	return f
}

// Predicates lists every predicate by name. Absent ones map to nil.
func (f ListingFilter) Predicates() map[string]any {
	return map[string]any{
		"search":       f.Search,
		"minPrice":     deref(f.MinPrice),
		"maxPrice":     deref(f.MaxPrice),
		"propertyType": string(f.PropertyType),
		"minBedrooms":  deref(f.MinBedrooms),
		"maxBedrooms":  deref(f.MaxBedrooms),
		"minBathrooms": deref(f.MinBathrooms),
		"maxBathrooms": deref(f.MaxBathrooms),
		"minArea":      deref(f.MinArea),
		"maxArea":      deref(f.MaxArea),
		"location":     f.Location,
		"status":       string(f.Status),
	}
}

// Matches reports whether l satisfies every predicate of f except the text
// search, which needs a text index.
func (f ListingFilter) Matches(l *Listing) bool {
	if !inRange(l.Price, f.MinPrice, f.MaxPrice) ||
		!inRange(float64(l.Bedrooms), f.MinBedrooms, f.MaxBedrooms) ||
		!inRange(float64(l.Bathrooms), f.MinBathrooms, f.MaxBathrooms) ||
		!inRange(l.Area, f.MinArea, f.MaxArea) {
		return false
	}
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(f.Location)) {
		return false
	}
	return true
}

func inRange(v float64, lo, hi *float64) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func collapse(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
