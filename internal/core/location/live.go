package location

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/ports"
)

// Live reads the observer position from a device provider. Every provider
// failure surfaces as domain.ErrLocationUnavailable.
type Live struct {
	provider ports.PositionProvider
	logger   *slog.Logger
}

// NewLive wraps provider. A nil provider yields a source that is always unavailable.
func NewLive(provider ports.PositionProvider, logger *slog.Logger) *Live {
	if logger == nil {
		logger = slog.Default()
	}
	return &Live{provider: provider, logger: logger}
}

func (l *Live) Mode() domain.LocationSourceMode { return domain.ModeLive }

func (l *Live) Current(ctx context.Context) (domain.Coordinate, error) {
	if l.provider == nil {
		return domain.Coordinate{}, fmt.Errorf("%w: no position provider", domain.ErrLocationUnavailable)
	}
	fix, err := l.provider.CurrentPosition(ctx)
	if err != nil {
		return domain.Coordinate{}, unavailable(err)
	}
	if err := fix.Coordinate.Validate(); err != nil {
		return domain.Coordinate{}, unavailable(err)
	}
	return fix.Coordinate, nil
}

// Watch forwards provider fixes and errors to fn in the order the provider reports them.
func (l *Live) Watch(ctx context.Context, fn func(Fix)) (*Subscription, error) {
	if fn == nil {
		return nil, fmt.Errorf("watch: nil callback")
	}
	if l.provider == nil {
		return nil, fmt.Errorf("%w: no position provider", domain.ErrLocationUnavailable)
	}

	onFix := func(pf ports.PositionFix) {
		if err := pf.Coordinate.Validate(); err != nil {
			l.logger.Warn("discarding invalid live fix", "error", err)
			fn(Fix{Err: unavailable(err), Time: stamp(pf.Time), Source: domain.ModeLive})
			return
		}
		fn(Fix{Coordinate: pf.Coordinate, Time: stamp(pf.Time), Source: domain.ModeLive})
	}
	onError := func(err error) {
		l.logger.Warn("live position error", "error", err)
		fn(Fix{Err: unavailable(err), Time: time.Now().UTC(), Source: domain.ModeLive})
	}

	stop, err := l.provider.WatchPosition(ctx, onFix, onError)
	if err != nil {
		return nil, unavailable(err)
	}
	sub := newSubscription(stop)
	bindContext(ctx, sub)
	return sub, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrLocationUnavailable, err)
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
