package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samirrijal/propfinder/internal/pkg/geospatial"
)

func newDistanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance <lat,lon> <lat,lon>",
		Short: "Great-circle distance between two coordinates",
		Example: `  radarctl distance 10.315366,123.918746 10.3153,123.918
  81.94 m (0.05 miles)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseCoordinate(args[0])
			if err != nil {
				return err
			}
			b, err := parseCoordinate(args[1])
			if err != nil {
				return err
			}
			d := a.DistanceTo(b)
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f m (%.2f miles)\n", d, geospatial.Miles(d))
			return nil
		},
	}
}
