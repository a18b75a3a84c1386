// Package location provides the observer coordinate feeds: a simulated
// source driven by direction steps and a live source backed by a device.
package location

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// Fix is one delivery from a source: either a coordinate or an error.
type Fix struct {
	Coordinate domain.Coordinate         `json:"coordinate"`
	Err        error                     `json:"-"`
	Time       time.Time                 `json:"time"`
	Source     domain.LocationSourceMode `json:"source"`
}

// OK reports whether the fix carries a coordinate.
func (f Fix) OK() bool { return f.Err == nil }

// Source yields observer coordinates.
type Source interface {
	Mode() domain.LocationSourceMode
	// Current returns a single reading.
	Current(ctx context.Context) (domain.Coordinate, error)
	// Watch delivers readings to fn until the subscription is stopped or ctx ends.
	Watch(ctx context.Context, fn func(Fix)) (*Subscription, error)
}

// Subscription is a running watch. Stop is idempotent and safe for concurrent use.
type Subscription struct {
	once    sync.Once
	stop    func() error
	err     error
	mu      sync.Mutex
	release func() bool
}

func newSubscription(stop func() error) *Subscription {
	return &Subscription{stop: stop}
}

// Stop releases the watch. Only the first call reaches the underlying source.
func (s *Subscription) Stop() error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		s.mu.Lock()
		release := s.release
		s.mu.Unlock()
		if release != nil {
			release()
		}
		if s.stop != nil {
			s.err = s.stop()
		}
	})
	return s.err
}

// bindContext stops sub when ctx is done.
func bindContext(ctx context.Context, sub *Subscription) {
	release := context.AfterFunc(ctx, func() { _ = sub.Stop() })
	sub.mu.Lock()
	sub.release = release
	sub.mu.Unlock()
}
