package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/engine"
	"github.com/samirrijal/propfinder/internal/core/location"
	"github.com/samirrijal/propfinder/internal/core/ports"
	"github.com/samirrijal/propfinder/internal/pkg/metrics"
	"github.com/samirrijal/propfinder/internal/pkg/telemetry"
)

// PositionProviderFactory yields the live position provider of a viewport.
type PositionProviderFactory interface {
	ForViewport(viewportID string) ports.PositionProvider
}

// Catalog supplies the points of interest loaded into every viewport.
type Catalog interface {
	List(ctx context.Context, filter domain.ListingFilter) ([]domain.PointOfInterest, error)
}

// ViewportDefaults apply to every viewport that does not override them.
type ViewportDefaults struct {
	RadiusMeters float64
	Step         float64
	Zoom         float64
	Mode         domain.LocationSourceMode
	Start        domain.Coordinate
}

// ViewportSpec declares one viewport. Zero radius or zoom inherit the defaults.
type ViewportSpec struct {
	ID           string
	Bounds       domain.BoundingBox
	RadiusMeters float64
	Zoom         float64
}

// ZoomAction names a zoom control.
type ZoomAction string

const (
	ZoomIn    ZoomAction = "in"
	ZoomOut   ZoomAction = "out"
	ZoomReset ZoomAction = "reset"
	ZoomSet   ZoomAction = "set"
)

type viewport struct {
	engine   *engine.Engine
	location *location.Manager
}

// ViewportService owns one engine and one location manager per named viewport
// and publishes their proximity transitions.
type ViewportService struct {
	catalog   Catalog
	publisher ports.EventPublisher
	providers PositionProviderFactory
	defaults  ViewportDefaults
	logger    *slog.Logger

	mu        sync.RWMutex
	base      context.Context
	viewports map[string]*viewport

	events  chan domain.ProximityEvent
	done    chan struct{}
	stopped chan struct{}
	closed  sync.Once
}

// NewViewportService creates the service. publisher and providers may be nil:
// transitions are then only logged and live mode is unavailable.
func NewViewportService(
	ctx context.Context,
	catalog Catalog,
	publisher ports.EventPublisher,
	providers PositionProviderFactory,
	defaults ViewportDefaults,
	logger *slog.Logger,
) *ViewportService {
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if defaults.Mode == "" {
		defaults.Mode = domain.ModeSimulated
	}
	s := &ViewportService{
		catalog:   catalog,
		publisher: publisher,
		providers: providers,
		defaults:  defaults,
		logger:    logger,
		base:      ctx,
		viewports: make(map[string]*viewport),
		events:    make(chan domain.ProximityEvent, 256),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go s.dispatchLoop()
	return s
}

// Register builds a viewport and starts its location source in the default mode.
// If live positioning is unavailable the viewport starts simulated.
func (s *ViewportService) Register(spec ViewportSpec) error {
	radius := spec.RadiusMeters
	if radius == 0 {
		radius = s.defaults.RadiusMeters
	}
	zoom := spec.Zoom
	if zoom == 0 {
		zoom = s.defaults.Zoom
	}

	eng, err := engine.New(engine.Config{
		ID:           spec.ID,
		Bounds:       spec.Bounds,
		RadiusMeters: radius,
		Zoom:         zoom,
		Logger:       s.logger,
	})
	if err != nil {
		return err
	}

	start := s.defaults.Start
	if !spec.Bounds.Contains(start) {
		start = spec.Bounds.Center()
	}
	sim, err := location.NewSimulated(spec.Bounds, start, s.defaults.Step, s.logger.With("viewport", spec.ID))
	if err != nil {
		return err
	}
	var provider ports.PositionProvider
	if s.providers != nil {
		provider = s.providers.ForViewport(spec.ID)
	}
	live := location.NewLive(provider, s.logger.With("viewport", spec.ID))

	vp := &viewport{engine: eng}
	vp.location = location.NewManager(sim, live, func(fix location.Fix) {
		s.handleFix(spec.ID, vp, fix)
	}, s.logger.With("viewport", spec.ID))
	eng.OnTransition(s.enqueue)

	if _, err := s.get(spec.ID); err == nil {
		return fmt.Errorf("viewport %q already registered", spec.ID)
	}

	if err := vp.location.Start(s.base, domain.ModeSimulated); err != nil {
		return fmt.Errorf("start viewport %s: %w", spec.ID, err)
	}
	if s.defaults.Mode == domain.ModeLive {
		if err := s.switchMode(s.base, spec.ID, vp, domain.ModeLive); err != nil {
			s.logger.Warn("viewport starting simulated", "viewport", spec.ID, "error", err)
		}
	}

	// visible only once its location source runs
	s.mu.Lock()
	if _, exists := s.viewports[spec.ID]; exists {
		s.mu.Unlock()
		s.stopViewport(spec.ID, vp)
		return fmt.Errorf("viewport %q already registered", spec.ID)
	}
	s.viewports[spec.ID] = vp
	s.mu.Unlock()

	s.logger.Info("viewport registered", "viewport", spec.ID, "radius_m", radius, "mode", vp.location.Mode())
	return nil
}

func (s *ViewportService) get(id string) (*viewport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vp, ok := s.viewports[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrViewportNotFound, id)
	}
	return vp, nil
}

func (s *ViewportService) handleFix(id string, vp *viewport, fix location.Fix) {
	if !fix.OK() {
		metrics.LocationErrors.WithLabelValues(id).Inc()
		s.logger.Warn("location fix failed", "viewport", id, "error", fix.Err)
		return
	}

	_, span := telemetry.Tracer().Start(s.base, telemetry.SpanFeedObserver, trace.WithAttributes(
		attribute.String("viewport", id),
		attribute.Float64("lat", fix.Coordinate.Latitude),
		attribute.Float64("lon", fix.Coordinate.Longitude),
	))
	defer span.End()

	state, _, err := vp.engine.FeedObserverCoordinate(fix.Coordinate)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("observer rejected", "viewport", id, "error", err)
		return
	}
	span.SetAttributes(attribute.String("nearest", state.NearestID))
	metrics.ObserverUpdates.WithLabelValues(id, string(fix.Source)).Inc()
}

// enqueue hands a transition to the dispatch goroutine without blocking the engine.
func (s *ViewportService) enqueue(ev domain.ProximityEvent) {
	metrics.ProximityTransitions.WithLabelValues(ev.ViewportID, string(ev.Kind)).Inc()
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("proximity event dropped, dispatch queue full", "viewport", ev.ViewportID, "point", ev.PointID)
	}
}

func (s *ViewportService) dispatchLoop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			// flush what the engines already emitted
			for {
				select {
				case ev := <-s.events:
					s.publish(ev)
				default:
					return
				}
			}
		case ev := <-s.events:
			s.publish(ev)
		}
	}
}

func (s *ViewportService) publish(ev domain.ProximityEvent) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishProximityEvent(ctx, &ev); err != nil {
		s.logger.Warn("publish proximity event failed", "viewport", ev.ViewportID, "kind", ev.Kind, "error", err)
	}
}

func (s *ViewportService) snapshot(vp *viewport) domain.ViewportSnapshot {
	snap := vp.engine.Snapshot()
	snap.Mode = vp.location.Mode()
	return snap
}

// List returns a snapshot of every viewport, ordered by id.
func (s *ViewportService) List() []domain.ViewportSnapshot {
	s.mu.RLock()
	vps := make([]*viewport, 0, len(s.viewports))
	for _, vp := range s.viewports {
		vps = append(vps, vp)
	}
	s.mu.RUnlock()

	out := make([]domain.ViewportSnapshot, 0, len(vps))
	for _, vp := range vps {
		out = append(out, s.snapshot(vp))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the snapshot of one viewport.
func (s *ViewportService) Get(id string) (domain.ViewportSnapshot, error) {
	vp, err := s.get(id)
	if err != nil {
		return domain.ViewportSnapshot{}, err
	}
	return s.snapshot(vp), nil
}

// SetBounds moves the viewport box and keeps the simulated observer inside it.
func (s *ViewportService) SetBounds(id string, box domain.BoundingBox) (domain.ViewportSnapshot, error) {
	vp, err := s.get(id)
	if err != nil {
		return domain.ViewportSnapshot{}, err
	}
	if err := vp.engine.SetBoundingBox(box); err != nil {
		return domain.ViewportSnapshot{}, err
	}
	if err := vp.location.Simulated().SetBoundingBox(box); err != nil {
		return domain.ViewportSnapshot{}, err
	}
	return s.snapshot(vp), nil
}

// SetRadius changes the proximity radius of a viewport.
func (s *ViewportService) SetRadius(id string, meters float64) (domain.ViewportSnapshot, error) {
	vp, err := s.get(id)
	if err != nil {
		return domain.ViewportSnapshot{}, err
	}
	if _, err := vp.engine.SetRadius(meters); err != nil {
		return domain.ViewportSnapshot{}, err
	}
	return s.snapshot(vp), nil
}

// FeedObserver places the simulated observer at c. Live viewports take their
// position from the device and reject manual placement.
func (s *ViewportService) FeedObserver(id string, c domain.Coordinate) (domain.ViewportSnapshot, error) {
	vp, err := s.get(id)
	if err != nil {
		return domain.ViewportSnapshot{}, err
	}
	if vp.location.Mode() != domain.ModeSimulated {
		return domain.ViewportSnapshot{}, fmt.Errorf("%w: observer placement needs simulated mode", domain.ErrInvalidMode)
	}
	if _, err := vp.location.Simulated().SetPosition(c); err != nil {
		return domain.ViewportSnapshot{}, err
	}
	return s.snapshot(vp), nil
}

// Move steps the simulated observer one step in dir.
func (s *ViewportService) Move(id string, dir domain.Direction) (domain.ViewportSnapshot, error) {
	vp, err := s.get(id)
	if err != nil {
		return domain.ViewportSnapshot{}, err
	}
	if _, err := vp.location.Move(dir); err != nil {
		return domain.ViewportSnapshot{}, err
	}
	return s.snapshot(vp), nil
}

// SwitchMode changes the location source. A failed switch to live leaves the
// viewport simulated and returns ErrLocationUnavailable.
func (s *ViewportService) SwitchMode(ctx context.Context, id string, mode domain.LocationSourceMode) (domain.ViewportSnapshot, error) {
	vp, err := s.get(id)
	if err != nil {
		return domain.ViewportSnapshot{}, err
	}
	if err := s.switchMode(ctx, id, vp, mode); err != nil {
		return s.snapshot(vp), err
	}
	return s.snapshot(vp), nil
}

func (s *ViewportService) switchMode(ctx context.Context, id string, vp *viewport, mode domain.LocationSourceMode) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSwitchMode, trace.WithAttributes(
		attribute.String("viewport", id),
		attribute.String("mode", string(mode)),
	))
	defer span.End()

	before := vp.location.Mode()
	err := vp.location.SwitchMode(ctx, mode)
	after := vp.location.Mode()
	if before != after {
		if after == domain.ModeLive {
			metrics.LiveWatchesActive.Inc()
		} else if before == domain.ModeLive {
			metrics.LiveWatchesActive.Dec()
		}
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// Zoom applies a zoom control. level is only read for ZoomSet.
func (s *ViewportService) Zoom(id string, action ZoomAction, level float64) (domain.ViewportSnapshot, error) {
	vp, err := s.get(id)
	if err != nil {
		return domain.ViewportSnapshot{}, err
	}
	switch action {
	case ZoomIn:
		vp.engine.ZoomIn()
	case ZoomOut:
		vp.engine.ZoomOut()
	case ZoomReset:
		vp.engine.ResetZoom()
	case ZoomSet:
		if _, err := vp.engine.SetZoom(level); err != nil {
			return domain.ViewportSnapshot{}, err
		}
	default:
		return domain.ViewportSnapshot{}, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidZoom, action)
	}
	return s.snapshot(vp), nil
}

// Points returns the projected points of a viewport, narrowed by filter.
func (s *ViewportService) Points(id string, filter domain.ListingFilter) ([]domain.PointProjection, error) {
	vp, err := s.get(id)
	if err != nil {
		return nil, err
	}
	all := vp.engine.PointProjections()
	out := make([]domain.PointProjection, 0, len(all))
	for _, p := range all {
		if filter.Match(p.Point) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ReloadPoints loads the catalog into every viewport and returns the number of points.
func (s *ViewportService) ReloadPoints(ctx context.Context) (int, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanReloadCatalog)
	defer span.End()
	start := time.Now()

	points, err := s.catalog.List(ctx, domain.FilterAll)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("load catalog: %w", err)
	}

	s.mu.RLock()
	vps := make(map[string]*viewport, len(s.viewports))
	for id, vp := range s.viewports {
		vps[id] = vp
	}
	s.mu.RUnlock()

	for id, vp := range vps {
		if _, err := vp.engine.SetPointsOfInterest(points); err != nil {
			span.RecordError(err)
			return 0, fmt.Errorf("viewport %s: %w", id, err)
		}
	}

	metrics.CatalogReloadDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("points", len(points)))
	s.logger.Info("catalog loaded into viewports", "points", len(points), "viewports", len(vps))
	return len(points), nil
}

// Close stops every location watch, publishes the transitions still queued
// and stops the dispatch goroutine.
func (s *ViewportService) Close() {
	s.closed.Do(func() {
		s.mu.RLock()
		for id, vp := range s.viewports {
			s.stopViewport(id, vp)
		}
		s.mu.RUnlock()
		close(s.done)
		<-s.stopped
	})
}

func (s *ViewportService) stopViewport(id string, vp *viewport) {
	if vp.location.Mode() == domain.ModeLive {
		metrics.LiveWatchesActive.Dec()
	}
	if err := vp.location.Stop(); err != nil {
		s.logger.Warn("stop location watch", "viewport", id, "error", err)
	}
}
