package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/location"
	"github.com/samirrijal/propfinder/internal/pkg/logging"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDistanceCmd(t *testing.T) {
	out, err := run(t, "distance", "10.315366,123.918746", "10.3153,123.918")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "81.9"), "got %q", out)
	assert.Contains(t, out, "0.05 miles")

	_, err = run(t, "distance", "10.3", "10.3153,123.918")
	assert.Error(t, err)
}

func TestProjectCmd(t *testing.T) {
	out, err := run(t, "project", "10.3153,123.918", "--viewport", "radar", "--width", "300", "--height", "200")
	require.NoError(t, err)
	assert.Contains(t, out, "top 47.00% left 53.33%")
	assert.Contains(t, out, "x 160.0px y 94.0px")

	out, err = run(t, "project", "10.40,123.918", "--box", "10.31,10.32,123.91,123.925")
	require.NoError(t, err)
	assert.Contains(t, out, "top 0.00%")
	assert.Contains(t, out, "clamped")

	_, err = run(t, "project", "10.3,123.9", "--viewport", "nowhere")
	assert.ErrorIs(t, err, domain.ErrViewportNotFound)
}

func TestParseBox(t *testing.T) {
	b, err := parseBox("10.31, 10.32, 123.91, 123.925")
	require.NoError(t, err)
	assert.Equal(t, domain.BoundingBox{South: 10.31, North: 10.32, West: 123.91, East: 123.925}, b)

	_, err = parseBox("10.32,10.31,123.91,123.925")
	assert.ErrorIs(t, err, domain.ErrInvalidBoundingBox)
	_, err = parseBox("1,2,3")
	assert.Error(t, err)
}

func TestWalk(t *testing.T) {
	box := domain.BoundingBox{South: 10.31, North: 10.32, West: 123.91, East: 123.925}
	sim, err := location.NewSimulated(box, box.Center(), 0.001, logging.Discard())
	require.NoError(t, err)

	dirs := []domain.Direction{domain.North, domain.North, domain.East}
	require.NoError(t, walk(context.Background(), sim, dirs, time.Millisecond))

	got, err := sim.Current(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 10.317, got.Latitude, 1e-9)
	assert.InDelta(t, 123.9185, got.Longitude, 1e-9)
}

func TestWalk_Cancelled(t *testing.T) {
	box := domain.BoundingBox{South: 10.31, North: 10.32, West: 123.91, East: 123.925}
	sim, err := location.NewSimulated(box, box.Center(), 0.001, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, walk(ctx, sim, []domain.Direction{domain.North}, time.Hour))

	got, _ := sim.Current(context.Background())
	assert.Equal(t, box.Center(), got)
}
