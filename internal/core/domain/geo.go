package domain

import (
	"fmt"
	"math"

	"github.com/samirrijal/propfinder/internal/pkg/geospatial"
)

// Coordinate represents a geographic coordinate (WGS 84) in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Validate rejects latitudes outside [-90, 90], longitudes outside [-180, 180] and non-finite values.
func (c Coordinate) Validate() error {
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return fmt.Errorf("%w: latitude %v", ErrOutOfRangeCoordinate, c.Latitude)
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		return fmt.Errorf("%w: longitude %v", ErrOutOfRangeCoordinate, c.Longitude)
	}
	return nil
}

// DistanceTo returns the great-circle distance to other in meters.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return geospatial.Haversine(c.Latitude, c.Longitude, other.Latitude, other.Longitude)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// BoundingBox is the geographic rectangle mapped onto a viewport.
type BoundingBox struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Validate requires south < north and west < east, all within coordinate range.
func (b BoundingBox) Validate() error {
	if err := (Coordinate{Latitude: b.South, Longitude: b.West}).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBoundingBox, err)
	}
	if err := (Coordinate{Latitude: b.North, Longitude: b.East}).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBoundingBox, err)
	}
	if !(b.South < b.North) {
		return fmt.Errorf("%w: south %v must be below north %v", ErrInvalidBoundingBox, b.South, b.North)
	}
	if !(b.West < b.East) {
		return fmt.Errorf("%w: west %v must be below east %v", ErrInvalidBoundingBox, b.West, b.East)
	}
	return nil
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Coordinate {
	return Coordinate{
		Latitude:  (b.South + b.North) / 2,
		Longitude: (b.West + b.East) / 2,
	}
}

// Contains reports whether c lies inside the box, edges included.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.South && c.Latitude <= b.North &&
		c.Longitude >= b.West && c.Longitude <= b.East
}

// Clamp pulls c back inside the box.
func (b BoundingBox) Clamp(c Coordinate) Coordinate {
	return Coordinate{
		Latitude:  math.Min(b.North, math.Max(b.South, c.Latitude)),
		Longitude: math.Min(b.East, math.Max(b.West, c.Longitude)),
	}
}

// BoxAround returns the smallest box containing every point within radiusMeters of c.
func BoxAround(c Coordinate, radiusMeters float64) BoundingBox {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(c.Latitude, c.Longitude, radiusMeters)
	return BoundingBox{South: minLat, North: maxLat, West: minLon, East: maxLon}
}

// ScreenPosition is a marker position as percentages of the viewport, origin top-left.
type ScreenPosition struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// Pixels converts the percentages into offsets for a viewport of the given size.
func (p ScreenPosition) Pixels(width, height float64) (x, y float64) {
	return p.Left / 100 * width, p.Top / 100 * height
}
