package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/pkg/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "radarctl",
		Short:         "distance, projection and observer tools for propfinder",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newDistanceCmd(), newProjectCmd(), newWalkCmd())
	return root
}

// parseCoordinate reads "lat,lon".
func parseCoordinate(s string) (domain.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.Coordinate{}, fmt.Errorf("coordinate %q: want lat,lon", s)
	}
	vals, err := parseFloats(parts)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	c := domain.Coordinate{Latitude: vals[0], Longitude: vals[1]}
	return c, c.Validate()
}

// parseBox reads "south,north,west,east".
func parseBox(s string) (domain.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return domain.BoundingBox{}, fmt.Errorf("box %q: want south,north,west,east", s)
	}
	vals, err := parseFloats(parts)
	if err != nil {
		return domain.BoundingBox{}, fmt.Errorf("box %q: %w", s, err)
	}
	b := domain.BoundingBox{South: vals[0], North: vals[1], West: vals[2], East: vals[3]}
	return b, b.Validate()
}

// resolveBox prefers an explicit --box and otherwise looks the viewport up in the
// default viewport set.
func resolveBox(box, viewport string) (domain.BoundingBox, error) {
	if box != "" {
		return parseBox(box)
	}
	for _, vc := range config.DefaultViewports() {
		if vc.ID == viewport {
			return domain.BoundingBox{South: vc.South, North: vc.North, West: vc.West, East: vc.East}, nil
		}
	}
	return domain.BoundingBox{}, fmt.Errorf("%w: %s", domain.ErrViewportNotFound, viewport)
}

func parseFloats(parts []string) ([]float64, error) {
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
