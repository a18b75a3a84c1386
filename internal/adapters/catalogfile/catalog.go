// Package catalogfile reads listing catalogs from YAML or JSON files.
package catalogfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// Listing is one catalog entry as written in a file.
type Listing struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Lat      *float64 `yaml:"lat"`
	Lon      *float64 `yaml:"lon"`
	Category string   `yaml:"category,omitempty"`
	Price    string   `yaml:"price,omitempty"`
	Details  string   `yaml:"details,omitempty"`
	Image    string   `yaml:"image,omitempty"`
}

// File is the document layout: a top-level list under "listings".
type File struct {
	Listings []Listing `yaml:"listings"`
}

// Load reads and validates the catalog at path. JSON is accepted since it parses as YAML.
func Load(path string) ([]domain.PointOfInterest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	points, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// Decode parses a catalog document. Listings keep file order, which becomes catalog order.
func Decode(r io.Reader) ([]domain.PointOfInterest, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	points := make([]domain.PointOfInterest, 0, len(f.Listings))
	seen := make(map[string]int, len(f.Listings))
	var errs []error
	for i, l := range f.Listings {
		p, err := l.toPoint()
		if err != nil {
			errs = append(errs, fmt.Errorf("listing %d: %w", i+1, err))
			continue
		}
		if first, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Errorf("listing %d: %w: %q first seen at listing %d", i+1, domain.ErrDuplicatePoint, p.ID, first))
			continue
		}
		seen[p.ID] = i + 1
		points = append(points, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return points, nil
}

// Encode writes points back out in the file layout.
func Encode(w io.Writer, points []domain.PointOfInterest) error {
	f := File{Listings: make([]Listing, 0, len(points))}
	for _, p := range points {
		lat, lon := p.Location.Latitude, p.Location.Longitude
		image, _ := p.Attributes[domain.AttrImage].(string)
		f.Listings = append(f.Listings, Listing{
			ID:       p.ID,
			Name:     p.Name,
			Lat:      &lat,
			Lon:      &lon,
			Category: string(p.Category),
			Price:    p.Price(),
			Details:  p.Details(),
			Image:    image,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

func (l Listing) toPoint() (domain.PointOfInterest, error) {
	if l.Lat == nil || l.Lon == nil {
		return domain.PointOfInterest{}, fmt.Errorf("%w: %q has no lat/lon", domain.ErrInvalidPoint, l.ID)
	}
	id := strings.TrimSpace(l.ID)
	if id == "" {
		id = slug(l.Name)
	}
	attrs := map[string]any{}
	if l.Price != "" {
		attrs[domain.AttrPrice] = l.Price
	}
	if l.Details != "" {
		attrs[domain.AttrDetails] = l.Details
	}
	if l.Image != "" {
		attrs[domain.AttrImage] = l.Image
	}
	category := domain.Category(strings.ToLower(strings.TrimSpace(l.Category)))
	switch category {
	case "", domain.CategoryResidential, domain.CategoryCommercial:
	default:
		return domain.PointOfInterest{}, fmt.Errorf("%w: %q has unknown category %q", domain.ErrInvalidPoint, id, l.Category)
	}
	p := domain.PointOfInterest{
		ID:         id,
		Name:       strings.TrimSpace(l.Name),
		Category:   category,
		Location:   domain.Coordinate{Latitude: *l.Lat, Longitude: *l.Lon},
		Attributes: attrs,
	}
	if err := p.Validate(); err != nil {
		return domain.PointOfInterest{}, err
	}
	return p, nil
}

// slug derives an id from a name: "Condo IT Park" becomes "condo-it-park".
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
