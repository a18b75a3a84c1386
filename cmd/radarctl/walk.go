package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	natsadapter "github.com/samirrijal/propfinder/internal/adapters/nats"
	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/location"
	"github.com/samirrijal/propfinder/internal/pkg/logging"
)

func newWalkCmd() *cobra.Command {
	var (
		box      string
		viewport string
		start    string
		step     float64
		interval time.Duration
		natsURL  string
		logLevel string
	)
	cmd := &cobra.Command{
		Use:   "walk <direction>...",
		Short: "Walk a simulated observer and publish its fixes as a live device",
		Long: `walk drives a simulated location source through a sequence of compass steps
(n, s, e, w, ne, nw, se, sw, center) and publishes every fix to the viewport's
position subject. It also answers locate requests, so the API can switch the
viewport to live mode while the walk runs.`,
		Example: `  radarctl walk --viewport radar --interval 2s n n e e ne center`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := make([]domain.Direction, 0, len(args))
			for _, a := range args {
				d, err := domain.ParseDirection(a)
				if err != nil {
					return err
				}
				dirs = append(dirs, d)
			}
			b, err := resolveBox(box, viewport)
			if err != nil {
				return err
			}
			origin := b.Center()
			if start != "" {
				if origin, err = parseCoordinate(start); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := logging.New(cmd.ErrOrStderr(), logLevel, "text")
			sim, err := location.NewSimulated(b, origin, step, logger)
			if err != nil {
				return err
			}

			conn, err := natsadapter.Connect(natsURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			dev, err := natsadapter.NewDevicePublisher(conn, viewport, func() domain.Coordinate {
				c, _ := sim.Current(ctx)
				return c
			})
			if err != nil {
				return err
			}
			defer dev.Close()

			out := cmd.OutOrStdout()
			sub, err := sim.Watch(ctx, func(fix location.Fix) {
				if !fix.OK() {
					return
				}
				if err := dev.Publish(fix.Coordinate); err != nil {
					logger.Warn("publish fix failed", "error", err)
					return
				}
				fmt.Fprintf(out, "%s  %s\n", fix.Time.Format(time.TimeOnly), fix.Coordinate)
			})
			if err != nil {
				return err
			}
			defer sub.Stop()

			return walk(ctx, sim, dirs, interval)
		},
	}
	cmd.Flags().StringVar(&box, "box", "", "bounding box as south,north,west,east")
	cmd.Flags().StringVar(&viewport, "viewport", "radar", "viewport whose position subject receives the fixes")
	cmd.Flags().StringVar(&start, "start", "", "starting coordinate as lat,lon (default: box center)")
	cmd.Flags().Float64Var(&step, "step", location.DefaultStep, "degrees moved per step")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "pause between steps")
	cmd.Flags().StringVar(&natsURL, "nats", nats.DefaultURL, "NATS server URL")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level")
	return cmd
}

// walk applies dirs one interval apart. It stops early when ctx is done.
func walk(ctx context.Context, sim *location.Simulated, dirs []domain.Direction, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for _, d := range dirs {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if _, err := sim.Move(d); err != nil {
			return err
		}
	}
	return nil
}
