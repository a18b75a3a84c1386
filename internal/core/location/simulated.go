package location

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// DefaultStep is the simulated movement per step, in degrees (about 55 m of latitude).
const DefaultStep = 0.0005

type watcher struct {
	id uint64
	fn func(Fix)
}

// Simulated is a location source moved by explicit direction steps and kept inside a box.
// Watch callbacks run synchronously on the goroutine that moved the source and must
// not call Move or SetPosition.
type Simulated struct {
	deliver sync.Mutex // serialises delivery so watchers see moves in order

	mu       sync.Mutex
	current  domain.Coordinate
	box      domain.BoundingBox
	step     float64
	watchers []watcher
	nextID   uint64
	logger   *slog.Logger
}

// NewSimulated starts at start (clamped into box). A non-positive step uses DefaultStep.
func NewSimulated(box domain.BoundingBox, start domain.Coordinate, step float64, logger *slog.Logger) (*Simulated, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if !(step > 0) || math.IsInf(step, 0) {
		step = DefaultStep
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulated{
		current: box.Clamp(start),
		box:     box,
		step:    step,
		logger:  logger,
	}, nil
}

func (s *Simulated) Mode() domain.LocationSourceMode { return domain.ModeSimulated }

func (s *Simulated) Current(_ context.Context) (domain.Coordinate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

// Step returns the movement per step in degrees.
func (s *Simulated) Step() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Move advances one step in dir; Center jumps to the middle of the box.
func (s *Simulated) Move(dir domain.Direction) (domain.Coordinate, error) {
	if _, err := domain.ParseDirection(string(dir)); err != nil {
		return domain.Coordinate{}, err
	}
	return s.update(func(cur domain.Coordinate) (domain.Coordinate, error) {
		if dir == domain.Center {
			return s.box.Center(), nil
		}
		dLat, dLon := dir.Delta()
		return domain.Coordinate{
			Latitude:  cur.Latitude + dLat*s.step,
			Longitude: cur.Longitude + dLon*s.step,
		}, nil
	})
}

// SetPosition places the observer at c, clamped into the box.
func (s *Simulated) SetPosition(c domain.Coordinate) (domain.Coordinate, error) {
	if err := c.Validate(); err != nil {
		return domain.Coordinate{}, err
	}
	return s.update(func(domain.Coordinate) (domain.Coordinate, error) { return c, nil })
}

// SetBoundingBox replaces the box and pulls the current position back inside it.
func (s *Simulated) SetBoundingBox(box domain.BoundingBox) error {
	if err := box.Validate(); err != nil {
		return err
	}
	_, err := s.update(func(cur domain.Coordinate) (domain.Coordinate, error) {
		s.box = box
		return cur, nil
	})
	return err
}

// update applies fn under the lock, clamps the result and notifies watchers if it moved.
func (s *Simulated) update(fn func(domain.Coordinate) (domain.Coordinate, error)) (domain.Coordinate, error) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	prev := s.current
	next, err := fn(prev)
	if err != nil {
		s.mu.Unlock()
		return prev, err
	}
	next = s.box.Clamp(next)
	s.current = next
	targets := append([]watcher(nil), s.watchers...)
	s.mu.Unlock()

	s.logger.Debug("simulated position", "lat", next.Latitude, "lon", next.Longitude)

	fix := Fix{Coordinate: next, Time: time.Now().UTC(), Source: domain.ModeSimulated}
	for _, w := range targets {
		w.fn(fix)
	}
	return next, nil
}

// Watch registers fn and immediately delivers the current position to it.
func (s *Simulated) Watch(ctx context.Context, fn func(Fix)) (*Subscription, error) {
	if fn == nil {
		return nil, fmt.Errorf("watch: nil callback")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.watchers = append(s.watchers, watcher{id: id, fn: fn})
	cur := s.current
	s.mu.Unlock()

	fn(Fix{Coordinate: cur, Time: time.Now().UTC(), Source: domain.ModeSimulated})

	sub := newSubscription(func() error {
		s.remove(id)
		return nil
	})
	bindContext(ctx, sub)
	return sub, nil
}

// Watchers returns the number of active watches.
func (s *Simulated) Watchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

func (s *Simulated) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.watchers {
		if w.id == id {
			s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
			return
		}
	}
}
