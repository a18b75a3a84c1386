package domain

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/propfinder/internal/pkg/geospatial"
)

// ProximityState is the nearest point within the radius, if any.
// An empty NearestID means none, and DistanceMeters is then +Inf.
type ProximityState struct {
	NearestID      string
	DistanceMeters float64
}

// NoProximity is the state with no point in range.
func NoProximity() ProximityState {
	return ProximityState{DistanceMeters: math.Inf(1)}
}

// Found reports whether a point is in range.
func (s ProximityState) Found() bool { return s.NearestID != "" }

// DistanceMiles is DistanceMeters in miles.
func (s ProximityState) DistanceMiles() float64 {
	return geospatial.Miles(s.DistanceMeters)
}

type proximityStateJSON struct {
	NearestID      *string  `json:"nearest_id"`
	DistanceMeters *float64 `json:"distance_meters"`
	DistanceMiles  *float64 `json:"distance_miles,omitempty"`
}

// MarshalJSON encodes the "none" state with null fields since JSON has no infinity.
func (s ProximityState) MarshalJSON() ([]byte, error) {
	var out proximityStateJSON
	if s.Found() {
		id, m, mi := s.NearestID, s.DistanceMeters, s.DistanceMiles()
		out = proximityStateJSON{NearestID: &id, DistanceMeters: &m, DistanceMiles: &mi}
	}
	return json.Marshal(out)
}

func (s *ProximityState) UnmarshalJSON(data []byte) error {
	var in proximityStateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.NearestID == nil || *in.NearestID == "" || in.DistanceMeters == nil {
		*s = NoProximity()
		return nil
	}
	*s = ProximityState{NearestID: *in.NearestID, DistanceMeters: *in.DistanceMeters}
	return nil
}

// TransitionKind is the direction of a proximity change.
type TransitionKind string

const (
	TransitionEnter TransitionKind = "enter"
	TransitionLeave TransitionKind = "leave"
)

// ProximityEvent is emitted when the nearest point changes.
type ProximityEvent struct {
	ID             string         `json:"id"`
	ViewportID     string         `json:"viewport_id"`
	Kind           TransitionKind `json:"kind"`
	PointID        string         `json:"point_id"`
	DistanceMeters float64        `json:"distance_meters,omitempty"`
	Observer       Coordinate     `json:"observer"`
	Time           time.Time      `json:"time"`
}

// NewProximityEvent stamps a fresh event.
func NewProximityEvent(viewportID string, kind TransitionKind, pointID string, distance float64, observer Coordinate) ProximityEvent {
	if math.IsInf(distance, 0) || math.IsNaN(distance) {
		distance = 0
	}
	return ProximityEvent{
		ID:             uuid.NewString(),
		ViewportID:     viewportID,
		Kind:           kind,
		PointID:        pointID,
		DistanceMeters: distance,
		Observer:       observer,
		Time:           time.Now().UTC(),
	}
}

// DistanceMiles is DistanceMeters in miles.
func (e ProximityEvent) DistanceMiles() float64 {
	return geospatial.Miles(e.DistanceMeters)
}
