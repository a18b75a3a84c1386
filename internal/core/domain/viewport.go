package domain

import (
	"fmt"
	"strings"
)

// LocationSourceMode selects where observer coordinates come from.
type LocationSourceMode string

const (
	ModeSimulated LocationSourceMode = "simulated"
	ModeLive      LocationSourceMode = "live"
)

// ParseMode accepts "simulated"/"test" and "live"/"real".
func ParseMode(s string) (LocationSourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simulated", "test":
		return ModeSimulated, nil
	case "live", "real":
		return ModeLive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Direction is a simulated movement step.
type Direction string

const (
	North     Direction = "n"
	South     Direction = "s"
	East      Direction = "e"
	West      Direction = "w"
	NorthEast Direction = "ne"
	NorthWest Direction = "nw"
	SouthEast Direction = "se"
	SouthWest Direction = "sw"
	Center    Direction = "center"
)

// Delta returns the unit latitude/longitude multipliers of the direction.
// Center has no delta; callers recenter instead.
func (d Direction) Delta() (dLat, dLon float64) {
	switch d {
	case North:
		return 1, 0
	case South:
		return -1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	case NorthEast:
		return 1, 1
	case NorthWest:
		return 1, -1
	case SouthEast:
		return -1, 1
	case SouthWest:
		return -1, -1
	}
	return 0, 0
}

// ParseDirection accepts short ("ne") and long ("northeast", "north-east") names.
func ParseDirection(s string) (Direction, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "n", "north":
		return North, nil
	case "s", "south":
		return South, nil
	case "e", "east":
		return East, nil
	case "w", "west":
		return West, nil
	case "ne", "northeast":
		return NorthEast, nil
	case "nw", "northwest":
		return NorthWest, nil
	case "se", "southeast":
		return SouthEast, nil
	case "sw", "southwest":
		return SouthWest, nil
	case "c", "center", "centre":
		return Center, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// ViewTransform is the zoom applied to a viewport.
type ViewTransform struct {
	ZoomLevel float64 `json:"zoom_level"`
}

// InverseScale is the factor that keeps markers at constant on-screen size.
func (t ViewTransform) InverseScale() float64 {
	return 1 / t.ZoomLevel
}

// PointProjection is a point of interest placed on a viewport.
type PointProjection struct {
	Point          PointOfInterest `json:"point"`
	Position       ScreenPosition  `json:"position"`
	DistanceMeters *float64        `json:"distance_meters,omitempty"`
	DistanceMiles  *float64        `json:"distance_miles,omitempty"`
	Nearest        bool            `json:"nearest"`
}

// ViewportSnapshot is a consistent read of one engine instance.
type ViewportSnapshot struct {
	ID               string             `json:"id"`
	Bounds           BoundingBox        `json:"bounds"`
	RadiusMeters     float64            `json:"radius_meters"`
	Zoom             float64            `json:"zoom"`
	InverseScale     float64            `json:"inverse_scale"`
	PanEnabled       bool               `json:"pan_enabled"`
	Mode             LocationSourceMode `json:"mode,omitempty"`
	Observer         *Coordinate        `json:"observer,omitempty"`
	ObserverPosition ScreenPosition     `json:"observer_position"`
	Proximity        ProximityState     `json:"proximity"`
	PointCount       int                `json:"point_count"`
}
