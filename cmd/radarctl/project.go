package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samirrijal/propfinder/internal/core/projection"
)

func newProjectCmd() *cobra.Command {
	var (
		box      string
		viewport string
		width    float64
		height   float64
	)
	cmd := &cobra.Command{
		Use:   "project <lat,lon>",
		Short: "Project a coordinate onto a viewport as top/left percentages",
		Example: `  radarctl project 10.3153,123.918 --viewport radar
  top 47.00% left 53.33%`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCoordinate(args[0])
			if err != nil {
				return err
			}
			b, err := resolveBox(box, viewport)
			if err != nil {
				return err
			}
			pos, err := projection.Project(c, b)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "top %.2f%% left %.2f%%\n", pos.Top, pos.Left)
			if width > 0 && height > 0 {
				x, y := pos.Pixels(width, height)
				fmt.Fprintf(out, "x %.1fpx y %.1fpx\n", x, y)
			}
			if !b.Contains(c) {
				fmt.Fprintln(out, "outside the box, clamped to the edge")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&box, "box", "", "bounding box as south,north,west,east")
	cmd.Flags().StringVar(&viewport, "viewport", "radar", "default viewport to take the box from")
	cmd.Flags().Float64Var(&width, "width", 0, "viewport width in pixels")
	cmd.Flags().Float64Var(&height, "height", 0, "viewport height in pixels")
	return cmd
}
