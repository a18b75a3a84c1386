package ports

import (
	"context"
	"errors"
	"time"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// ErrCacheMiss is returned by CacheService.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishProximityEvent(ctx context.Context, event *domain.ProximityEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeProximityEvents(ctx context.Context, handler func(ctx context.Context, event *domain.ProximityEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationService sends notifications (push, email, etc.).
type NotificationService interface {
	Notify(ctx context.Context, recipient, title, body string) error
}

// AlertDispatcher hands an enter event to the alerting pipeline.
type AlertDispatcher interface {
	DispatchProximityAlert(ctx context.Context, event *domain.ProximityEvent) error
}

// PositionFix is one reading from a positioning device.
type PositionFix struct {
	Coordinate domain.Coordinate
	Time       time.Time
}

// PositionProvider is the platform positioning facility behind a live location source.
// WatchPosition delivers fixes and errors in device order until stop is called.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (PositionFix, error)
	WatchPosition(ctx context.Context, onFix func(PositionFix), onError func(error)) (stop func() error, err error)
}
