// Package proximity finds the nearest point of interest within a radius
// and tracks enter/leave transitions as the observer moves.
package proximity

import (
	"math"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// Nearest returns the closest point whose distance is at most radiusMeters.
// Ties keep the first point in slice order. There is no hysteresis.
func Nearest(observer domain.Coordinate, points []domain.PointOfInterest, radiusMeters float64) domain.ProximityState {
	bestID := ""
	bestDist := math.Inf(1)
	for _, p := range points {
		d := observer.DistanceTo(p.Location)
		if d < bestDist {
			bestID, bestDist = p.ID, d
		}
	}
	if bestID == "" || !(bestDist <= radiusMeters) {
		return domain.NoProximity()
	}
	return domain.ProximityState{NearestID: bestID, DistanceMeters: bestDist}
}

// Distances returns the distance from observer to every point, in order.
func Distances(observer domain.Coordinate, points []domain.PointOfInterest) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = observer.DistanceTo(p.Location)
	}
	return out
}
