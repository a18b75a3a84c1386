package proximity

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

var (
	observer = domain.Coordinate{Latitude: 10.315366, Longitude: 123.918746}
	condo    = domain.PointOfInterest{ID: "condo", Location: domain.Coordinate{Latitude: 10.3153, Longitude: 123.918}}
	bedspace = domain.PointOfInterest{ID: "bedspace", Location: domain.Coordinate{Latitude: 10.3175, Longitude: 123.917}}
)

func TestNearest_WithinRadius(t *testing.T) {
	st := Nearest(observer, []domain.PointOfInterest{condo}, 500)
	require.True(t, st.Found())
	assert.Equal(t, "condo", st.NearestID)
	assert.InDelta(t, 82, st.DistanceMeters, 1.5)
}

func TestNearest_OutsideRadius(t *testing.T) {
	st := Nearest(observer, []domain.PointOfInterest{condo}, 50)
	assert.False(t, st.Found())
	assert.True(t, math.IsInf(st.DistanceMeters, 1))
}

func TestNearest_InclusiveBoundary(t *testing.T) {
	d := observer.DistanceTo(condo.Location)
	st := Nearest(observer, []domain.PointOfInterest{condo}, d)
	assert.Equal(t, "condo", st.NearestID)
}

func TestNearest_Empty(t *testing.T) {
	st := Nearest(observer, nil, 500)
	assert.False(t, st.Found())
}

func TestNearest_PicksClosest(t *testing.T) {
	st := Nearest(observer, []domain.PointOfInterest{bedspace, condo}, 1000)
	assert.Equal(t, "condo", st.NearestID)
}

func TestNearest_TieKeepsCatalogOrder(t *testing.T) {
	origin := domain.Coordinate{}
	east := domain.PointOfInterest{ID: "east", Location: domain.Coordinate{Longitude: 0.001}}
	west := domain.PointOfInterest{ID: "west", Location: domain.Coordinate{Longitude: -0.001}}

	for i := 0; i < 10; i++ {
		assert.Equal(t, "east", Nearest(origin, []domain.PointOfInterest{east, west}, 500).NearestID)
		assert.Equal(t, "west", Nearest(origin, []domain.PointOfInterest{west, east}, 500).NearestID)
	}
}

func TestDistances(t *testing.T) {
	got := Distances(observer, []domain.PointOfInterest{condo, {ID: "here", Location: observer}})
	require.Len(t, got, 2)
	assert.Equal(t, 0.0, got[1])
}

type transition struct {
	Kind  domain.TransitionKind
	Point string
}

func kinds(events []domain.ProximityEvent) []transition {
	out := make([]transition, 0, len(events))
	for _, e := range events {
		out = append(out, transition{e.Kind, e.PointID})
	}
	return out
}

func TestTracker_Transitions(t *testing.T) {
	points := []domain.PointOfInterest{condo, bedspace}
	tr := NewTracker("radar")
	far := domain.Coordinate{Latitude: 10.40, Longitude: 124.0}

	st, events := tr.Update(far, points, 100)
	assert.False(t, st.Found())
	assert.Empty(t, events)

	st, events = tr.Update(condo.Location, points, 100)
	assert.Equal(t, "condo", st.NearestID)
	if diff := cmp.Diff([]transition{{domain.TransitionEnter, "condo"}}, kinds(events)); diff != "" {
		t.Fatalf("enter events mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "radar", events[0].ViewportID)
	assert.NotEmpty(t, events[0].ID)

	_, events = tr.Update(condo.Location, points, 100)
	assert.Empty(t, events, "staying near the same point emits nothing")

	_, events = tr.Update(bedspace.Location, points, 100)
	want := []transition{{domain.TransitionLeave, "condo"}, {domain.TransitionEnter, "bedspace"}}
	if diff := cmp.Diff(want, kinds(events)); diff != "" {
		t.Fatalf("switch events mismatch (-want +got):\n%s", diff)
	}
	assert.Greater(t, events[0].DistanceMeters, 100.0)

	st, events = tr.Update(far, points, 100)
	assert.False(t, st.Found())
	if diff := cmp.Diff([]transition{{domain.TransitionLeave, "bedspace"}}, kinds(events)); diff != "" {
		t.Fatalf("leave events mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, st, tr.State())
}

func TestTracker_NoHysteresis(t *testing.T) {
	points := []domain.PointOfInterest{condo}
	d := observer.DistanceTo(condo.Location)
	tr := NewTracker("map")

	var total int
	for i := 0; i < 4; i++ {
		radius := d
		if i%2 == 1 {
			radius = d - 0.01
		}
		_, events := tr.Update(observer, points, radius)
		total += len(events)
	}
	assert.Equal(t, 4, total, "every crossing of the threshold flips the state")
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker("map")
	tr.Update(condo.Location, []domain.PointOfInterest{condo}, 10)
	require.True(t, tr.State().Found())

	tr.Reset()
	assert.False(t, tr.State().Found())

	_, events := tr.Update(condo.Location, []domain.PointOfInterest{condo}, 10)
	assert.Len(t, events, 1)
}

func TestTracker_LeaveForRemovedPoint(t *testing.T) {
	tr := NewTracker("map")
	tr.Update(condo.Location, []domain.PointOfInterest{condo}, 10)

	_, events := tr.Update(condo.Location, nil, 10)
	require.Len(t, events, 1)
	assert.Equal(t, domain.TransitionLeave, events[0].Kind)
	assert.Equal(t, "condo", events[0].PointID)
}
