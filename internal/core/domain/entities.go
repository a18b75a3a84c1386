package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Category groups listings on the map.
type Category string

const (
	CategoryResidential Category = "residential"
	CategoryCommercial  Category = "commercial"
)

// Attribute keys carried by property listings.
const (
	AttrPrice   = "price"
	AttrDetails = "details"
	AttrImage   = "image"
)

// DefaultImage is shown for listings without a photo.
const DefaultImage = "images/placeholder.jpg"

const (
	// houseMinPrice separates houses from apartments among residential listings.
	houseMinPrice = 450_000
	// commercialMinPrice is the asking price above which an unlabelled listing counts as commercial.
	commercialMinPrice = 1_200_000
)

// PointOfInterest is a fixed, named location the observer can be near.
// The engine only reads ID and Location; the rest is passed through to consumers.
type PointOfInterest struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Category   Category       `json:"category,omitempty"`
	Location   Coordinate     `json:"location"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"created_at,omitzero"`
}

// Validate checks the identity and location of the point.
func (p PointOfInterest) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidPoint)
	}
	if err := p.Location.Validate(); err != nil {
		return fmt.Errorf("point %q: %w", p.ID, err)
	}
	return nil
}

func (p PointOfInterest) attr(key string) string {
	if v, ok := p.Attributes[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}

// Price returns the display price, e.g. "$450,000".
func (p PointOfInterest) Price() string { return p.attr(AttrPrice) }

// Details returns the short description, e.g. "2 bed, 2 bath".
func (p PointOfInterest) Details() string { return p.attr(AttrDetails) }

// Image returns the listing photo path, falling back to DefaultImage.
func (p PointOfInterest) Image() string {
	if img := p.attr(AttrImage); img != "" {
		return img
	}
	return DefaultImage
}

// PriceValue parses the display price into a whole amount. "$685,000" → 685000, "1.2M" → 1200000.
func (p PointOfInterest) PriceValue() (int64, bool) {
	return ParsePrice(p.Price())
}

// EffectiveCategory returns Category, or derives it from the price when unset.
func (p PointOfInterest) EffectiveCategory() Category {
	if p.Category != "" {
		return p.Category
	}
	return ClassifyPrice(p.Price())
}

// ParsePrice extracts the amount from a display price. K and M suffixes are honoured.
func ParsePrice(s string) (int64, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "M"):
		mult, s = 1_000_000, strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		mult, s = 1_000, strings.TrimSuffix(s, "K")
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return int64(math.Round(v * mult)), true
}

// ClassifyPrice derives a category for listings that do not carry one.
func ClassifyPrice(price string) Category {
	if v, ok := ParsePrice(price); ok && v >= commercialMinPrice {
		return CategoryCommercial
	}
	return CategoryResidential
}

// ListingFilter selects a subset of listings, mirroring the map's filter buttons.
type ListingFilter string

const (
	FilterAll         ListingFilter = "all"
	FilterResidential ListingFilter = "residential"
	FilterCommercial  ListingFilter = "commercial"
	FilterHouses      ListingFilter = "houses"
	FilterApartments  ListingFilter = "apartments"
)

// ParseListingFilter accepts the filter names case-insensitively; empty means all.
func ParseListingFilter(s string) (ListingFilter, error) {
	switch f := ListingFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterResidential, FilterCommercial, FilterHouses, FilterApartments:
		return f, nil
	default:
		return "", fmt.Errorf("unknown listing filter %q", s)
	}
}

// Match reports whether p passes the filter.
func (f ListingFilter) Match(p PointOfInterest) bool {
	cat := p.EffectiveCategory()
	switch f {
	case FilterAll, "":
		return true
	case FilterResidential:
		return cat == CategoryResidential
	case FilterCommercial:
		return cat == CategoryCommercial
	case FilterHouses, FilterApartments:
		if cat != CategoryResidential {
			return false
		}
		price, ok := p.PriceValue()
		if !ok {
			return false
		}
		if f == FilterHouses {
			return price >= houseMinPrice
		}
		return price < houseMinPrice
	default:
		return false
	}
}

// FilterPoints returns the points that pass f, preserving order.
func FilterPoints(points []PointOfInterest, f ListingFilter) []PointOfInterest {
	out := make([]PointOfInterest, 0, len(points))
	for _, p := range points {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// NearbyPoint is a listing with its distance from a query point.
type NearbyPoint struct {
	Point          PointOfInterest `json:"point"`
	DistanceMeters float64         `json:"distance_meters"`
	DistanceMiles  float64         `json:"distance_miles"`
}
