// Package engine composes projection, proximity and zoom state into one
// instance per viewport.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/projection"
	"github.com/samirrijal/propfinder/internal/core/proximity"
	"github.com/samirrijal/propfinder/internal/core/viewstate"
	"github.com/samirrijal/propfinder/internal/pkg/geospatial"
)

// DefaultRadiusMeters is the proximity radius used when none is configured.
const DefaultRadiusMeters = 500.0

// Config describes one viewport.
type Config struct {
	ID           string
	Bounds       domain.BoundingBox
	RadiusMeters float64
	Zoom         float64
	Logger       *slog.Logger
}

// TransitionFunc receives enter/leave events.
type TransitionFunc func(domain.ProximityEvent)

// Engine is the state of one viewport. All methods are safe for concurrent use.
// Transition listeners run after the state lock is released, in transition order,
// and may read the engine but must not feed it.
type Engine struct {
	id     string
	logger *slog.Logger

	mu        sync.RWMutex
	bounds    domain.BoundingBox
	radius    float64
	points    []domain.PointOfInterest
	observer  *domain.Coordinate
	tracker   *proximity.Tracker
	view      *viewstate.ViewState
	listeners []TransitionFunc

	notify sync.Mutex // held across recompute and emit
}

// New validates cfg and builds an engine with no observer and no points.
func New(cfg Config) (*Engine, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("engine: empty viewport id")
	}
	if err := cfg.Bounds.Validate(); err != nil {
		return nil, fmt.Errorf("engine %s: %w", cfg.ID, err)
	}
	if cfg.RadiusMeters == 0 {
		cfg.RadiusMeters = DefaultRadiusMeters
	}
	if err := validateRadius(cfg.RadiusMeters); err != nil {
		return nil, fmt.Errorf("engine %s: %w", cfg.ID, err)
	}
	view := viewstate.New()
	if cfg.Zoom != 0 {
		if _, err := view.SetZoom(cfg.Zoom); err != nil {
			return nil, fmt.Errorf("engine %s: %w", cfg.ID, err)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		id:      cfg.ID,
		logger:  logger.With("viewport", cfg.ID),
		bounds:  cfg.Bounds,
		radius:  cfg.RadiusMeters,
		tracker: proximity.NewTracker(cfg.ID),
		view:    view,
	}, nil
}

func (e *Engine) ID() string { return e.id }

// OnTransition registers fn for every subsequent enter/leave event.
func (e *Engine) OnTransition(fn TransitionFunc) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// SetBoundingBox replaces the viewport box. Proximity does not depend on it.
func (e *Engine) SetBoundingBox(box domain.BoundingBox) error {
	if err := box.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.bounds = box
	e.mu.Unlock()
	return nil
}

// SetPointsOfInterest replaces the catalog and recomputes proximity for the last observer.
// IDs must be unique and non-empty, and every location valid.
func (e *Engine) SetPointsOfInterest(points []domain.PointOfInterest) ([]domain.ProximityEvent, error) {
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicatePoint, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	cp := append([]domain.PointOfInterest(nil), points...)
	e.notify.Lock()
	defer e.notify.Unlock()
	e.mu.Lock()
	e.points = cp
	events, listeners := e.recomputeLocked()
	e.mu.Unlock()

	e.logger.Debug("points of interest replaced", "count", len(cp))
	e.emit(events, listeners)
	return events, nil
}

// SetRadius changes the proximity radius and recomputes for the last observer.
func (e *Engine) SetRadius(meters float64) ([]domain.ProximityEvent, error) {
	if err := validateRadius(meters); err != nil {
		return nil, err
	}
	e.notify.Lock()
	defer e.notify.Unlock()
	e.mu.Lock()
	e.radius = meters
	events, listeners := e.recomputeLocked()
	e.mu.Unlock()

	e.logger.Debug("radius changed", "meters", meters)
	e.emit(events, listeners)
	return events, nil
}

// FeedObserverCoordinate records a new observer position and returns the transitions it caused.
func (e *Engine) FeedObserverCoordinate(c domain.Coordinate) (domain.ProximityState, []domain.ProximityEvent, error) {
	if err := c.Validate(); err != nil {
		return domain.NoProximity(), nil, err
	}
	e.notify.Lock()
	defer e.notify.Unlock()
	e.mu.Lock()
	e.observer = &c
	events, listeners := e.recomputeLocked()
	state := e.tracker.State()
	e.mu.Unlock()

	if state.Found() {
		e.logger.Debug("observer near point", "lat", c.Latitude, "lon", c.Longitude,
			"nearest", state.NearestID, "distance_m", math.Round(state.DistanceMeters))
	} else {
		e.logger.Debug("observer position", "lat", c.Latitude, "lon", c.Longitude)
	}
	e.emit(events, listeners)
	return state, events, nil
}

// recomputeLocked reruns the tracker for the last observer; e.mu must be held.
func (e *Engine) recomputeLocked() ([]domain.ProximityEvent, []TransitionFunc) {
	if e.observer == nil {
		return nil, nil
	}
	_, events := e.tracker.Update(*e.observer, e.points, e.radius)
	if len(events) == 0 {
		return nil, nil
	}
	return events, append([]TransitionFunc(nil), e.listeners...)
}

func (e *Engine) emit(events []domain.ProximityEvent, listeners []TransitionFunc) {
	if len(events) == 0 || len(listeners) == 0 {
		return
	}
	for _, ev := range events {
		e.logger.Info("proximity transition", "kind", ev.Kind, "point", ev.PointID,
			"distance_mi", fmt.Sprintf("%.2f", ev.DistanceMiles()))
		for _, fn := range listeners {
			fn(ev)
		}
	}
}

// SetZoom clamps level into the zoom range.
func (e *Engine) SetZoom(level float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.SetZoom(level)
}

func (e *Engine) ZoomIn() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.ZoomIn()
}

func (e *Engine) ZoomOut() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.ZoomOut()
}

func (e *Engine) ResetZoom() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.Reset()
}

// ObserverProjection places the observer on the viewport. Before the first
// coordinate arrives it reports the centre and false.
func (e *Engine) ObserverProjection() (domain.ScreenPosition, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.observerProjectionLocked()
}

func (e *Engine) observerProjectionLocked() (domain.ScreenPosition, bool) {
	if e.observer == nil {
		return domain.ScreenPosition{Top: 50, Left: 50}, false
	}
	pos, err := projection.Project(*e.observer, e.bounds)
	if err != nil {
		return domain.ScreenPosition{Top: 50, Left: 50}, false
	}
	return pos, true
}

// PointProjections places every point on the viewport, in catalog order, with its
// distance from the observer when one is known.
func (e *Engine) PointProjections() []domain.PointProjection {
	e.mu.RLock()
	defer e.mu.RUnlock()

	positions, err := projection.ProjectAll(e.points, e.bounds)
	if err != nil {
		return nil
	}
	nearest := e.tracker.State().NearestID
	out := make([]domain.PointProjection, len(e.points))
	for i, p := range e.points {
		out[i] = domain.PointProjection{
			Point:    p,
			Position: positions[i],
			Nearest:  p.ID == nearest && nearest != "",
		}
		if e.observer != nil {
			d := e.observer.DistanceTo(p.Location)
			mi := geospatial.Miles(d)
			out[i].DistanceMeters = &d
			out[i].DistanceMiles = &mi
		}
	}
	return out
}

// CurrentProximity returns the last computed proximity state.
func (e *Engine) CurrentProximity() domain.ProximityState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tracker.State()
}

// CurrentInverseScale returns 1/zoom.
func (e *Engine) CurrentInverseScale() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.view.InverseScale()
}

// Observer returns the last observer coordinate, if any.
func (e *Engine) Observer() (domain.Coordinate, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.observer == nil {
		return domain.Coordinate{}, false
	}
	return *e.observer, true
}

// Points returns a copy of the catalog.
func (e *Engine) Points() []domain.PointOfInterest {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.PointOfInterest(nil), e.points...)
}

// Snapshot reads the whole viewport state under one lock.
func (e *Engine) Snapshot() domain.ViewportSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	pos, _ := e.observerProjectionLocked()
	snap := domain.ViewportSnapshot{
		ID:               e.id,
		Bounds:           e.bounds,
		RadiusMeters:     e.radius,
		Zoom:             e.view.Zoom(),
		InverseScale:     e.view.InverseScale(),
		PanEnabled:       e.view.PanEnabled(),
		ObserverPosition: pos,
		Proximity:        e.tracker.State(),
		PointCount:       len(e.points),
	}
	if e.observer != nil {
		obs := *e.observer
		snap.Observer = &obs
	}
	return snap
}

func validateRadius(meters float64) error {
	if math.IsNaN(meters) || math.IsInf(meters, 0) || meters < 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRadius, meters)
	}
	return nil
}
