package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

var cebu = domain.BoundingBox{South: 10.31, North: 10.32, West: 123.91, East: 123.925}

func TestProject_Center(t *testing.T) {
	pos, err := Project(cebu.Center(), cebu)
	require.NoError(t, err)
	assert.InDelta(t, 50, pos.Top, 1e-9)
	assert.InDelta(t, 50, pos.Left, 1e-9)
}

func TestProject_Corners(t *testing.T) {
	tests := []struct {
		name string
		c    domain.Coordinate
		want domain.ScreenPosition
	}{
		{"north-west", domain.Coordinate{Latitude: cebu.North, Longitude: cebu.West}, domain.ScreenPosition{Top: 0, Left: 0}},
		{"south-east", domain.Coordinate{Latitude: cebu.South, Longitude: cebu.East}, domain.ScreenPosition{Top: 100, Left: 100}},
		{"south-west", domain.Coordinate{Latitude: cebu.South, Longitude: cebu.West}, domain.ScreenPosition{Top: 100, Left: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := Project(tt.c, cebu)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Top, pos.Top, 1e-9)
			assert.InDelta(t, tt.want.Left, pos.Left, 1e-9)
		})
	}
}

func TestProject_ClampsOutside(t *testing.T) {
	outside := []domain.Coordinate{
		{Latitude: 10.40, Longitude: 123.95},
		{Latitude: 10.20, Longitude: 123.80},
		{Latitude: 10.315, Longitude: 124.5},
		{Latitude: -45, Longitude: -170},
	}
	for _, c := range outside {
		pos, err := Project(c, cebu)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pos.Top, 0.0)
		assert.LessOrEqual(t, pos.Top, 100.0)
		assert.GreaterOrEqual(t, pos.Left, 0.0)
		assert.LessOrEqual(t, pos.Left, 100.0)
	}

	pos, err := Project(domain.Coordinate{Latitude: 11, Longitude: 120}, cebu)
	require.NoError(t, err)
	assert.Equal(t, domain.ScreenPosition{Top: 0, Left: 0}, pos)
}

func TestProject_NorthIsUp(t *testing.T) {
	lower, err := Project(domain.Coordinate{Latitude: 10.312, Longitude: 123.9175}, cebu)
	require.NoError(t, err)
	upper, err := Project(domain.Coordinate{Latitude: 10.318, Longitude: 123.9175}, cebu)
	require.NoError(t, err)
	assert.Less(t, upper.Top, lower.Top)
}

func TestProject_InvalidBox(t *testing.T) {
	boxes := []domain.BoundingBox{
		{South: 10.32, North: 10.31, West: 123.91, East: 123.925},
		{South: 10.31, North: 10.32, West: 123.91, East: 123.91},
	}
	for _, b := range boxes {
		_, err := Project(cebu.Center(), b)
		assert.True(t, errors.Is(err, domain.ErrInvalidBoundingBox), "got %v", err)
	}
}

func TestProjectAll(t *testing.T) {
	points := []domain.PointOfInterest{
		{ID: "a", Location: cebu.Center()},
		{ID: "b", Location: domain.Coordinate{Latitude: math.Inf(1), Longitude: 0}},
	}
	out, err := ProjectAll(points, cebu)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, 50, out[0].Left, 1e-9)
	assert.Equal(t, 0.0, out[1].Top)

	_, err = ProjectAll(points, domain.BoundingBox{})
	assert.ErrorIs(t, err, domain.ErrInvalidBoundingBox)
}
