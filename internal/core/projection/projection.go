// Package projection maps geographic coordinates onto a rectangular viewport.
package projection

import (
	"math"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// Project places p inside box as percentages from the top-left corner.
// Latitude grows upward, so the top offset is inverted. Points outside the box
// are pinned to its edge.
func Project(p domain.Coordinate, box domain.BoundingBox) (domain.ScreenPosition, error) {
	if err := box.Validate(); err != nil {
		return domain.ScreenPosition{}, err
	}

	left := (p.Longitude - box.West) / (box.East - box.West) * 100
	top := 100 - (p.Latitude-box.South)/(box.North-box.South)*100

	return domain.ScreenPosition{
		Top:  clampPercent(top),
		Left: clampPercent(left),
	}, nil
}

// ProjectAll projects every point in order.
func ProjectAll(points []domain.PointOfInterest, box domain.BoundingBox) ([]domain.ScreenPosition, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	out := make([]domain.ScreenPosition, len(points))
	for i, p := range points {
		// box already validated
		out[i], _ = Project(p.Location, box)
	}
	return out, nil
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
