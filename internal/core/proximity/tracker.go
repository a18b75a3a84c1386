package proximity

import (
	"github.com/samirrijal/propfinder/internal/core/domain"
)

// Tracker remembers the last proximity state and reports transitions.
// It is not safe for concurrent use; the engine serialises access.
type Tracker struct {
	viewportID string
	state      domain.ProximityState
}

func NewTracker(viewportID string) *Tracker {
	return &Tracker{viewportID: viewportID, state: domain.NoProximity()}
}

// Update recomputes the state for observer and returns the transitions it caused.
// Moving from one point to another yields a leave for the old point then an enter for the new one.
func (t *Tracker) Update(observer domain.Coordinate, points []domain.PointOfInterest, radiusMeters float64) (domain.ProximityState, []domain.ProximityEvent) {
	next := Nearest(observer, points, radiusMeters)
	prev := t.state
	t.state = next

	if prev.NearestID == next.NearestID {
		return next, nil
	}

	var events []domain.ProximityEvent
	if prev.Found() {
		events = append(events, domain.NewProximityEvent(t.viewportID, domain.TransitionLeave, prev.NearestID, observer.DistanceTo(locationOf(points, prev.NearestID, observer)), observer))
	}
	if next.Found() {
		events = append(events, domain.NewProximityEvent(t.viewportID, domain.TransitionEnter, next.NearestID, next.DistanceMeters, observer))
	}
	return next, events
}

// State returns the last computed state.
func (t *Tracker) State() domain.ProximityState {
	return t.state
}

// Reset forgets the last state without emitting events.
func (t *Tracker) Reset() {
	t.state = domain.NoProximity()
}

// locationOf finds the point by id; a point removed from the catalog reports zero distance.
func locationOf(points []domain.PointOfInterest, id string, fallback domain.Coordinate) domain.Coordinate {
	for _, p := range points {
		if p.ID == id {
			return p.Location
		}
	}
	return fallback
}
