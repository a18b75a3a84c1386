package http

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/propfinder/internal/core/usecases"
)

// Pinger is a backing store that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Properties *usecases.PropertyService
	Viewports  *usecases.ViewportService
	NATS       *nats.Conn
	DB         Pinger
	Cache      Pinger
	Logger     *slog.Logger
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
