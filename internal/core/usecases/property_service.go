package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/ports"
	"github.com/samirrijal/propfinder/internal/pkg/geospatial"
	"github.com/samirrijal/propfinder/internal/pkg/metrics"
	"github.com/samirrijal/propfinder/internal/pkg/telemetry"
)

const catalogCacheKey = "properties:all"

// MaxNearbyRadius caps nearby searches at 50 km.
const MaxNearbyRadius = 50_000.0

// PropertyService handles listing queries with a read-through cache.
type PropertyService struct {
	properties ports.PropertyRepository
	cache      ports.CacheService
}

// NewPropertyService creates a new PropertyService. cache may be nil.
func NewPropertyService(properties ports.PropertyRepository, cache ports.CacheService) *PropertyService {
	return &PropertyService{properties: properties, cache: cache}
}

// List returns the catalog in catalog order, narrowed by filter.
func (s *PropertyService) List(ctx context.Context, filter domain.ListingFilter) ([]domain.PointOfInterest, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanListCatalog)
	defer span.End()

	var all []domain.PointOfInterest
	if s.readCache(ctx, catalogCacheKey, "list", &all) {
		return domain.FilterPoints(all, filter), nil
	}

	all, err := s.properties.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}

	// Cache for 5 minutes (listings don't change frequently)
	s.writeCache(ctx, catalogCacheKey, all, 300)

	return domain.FilterPoints(all, filter), nil
}

// GetByID returns a single listing.
func (s *PropertyService) GetByID(ctx context.Context, id string) (*domain.PointOfInterest, error) {
	cacheKey := "properties:id:" + id
	var cached domain.PointOfInterest
	if s.readCache(ctx, cacheKey, "get", &cached) {
		return &cached, nil
	}

	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, cacheKey, p, 600) // 10 min for a single listing
	return p, nil
}

// FindNearby returns listings within radiusMeters of center, closest first.
// Equal distances keep catalog order.
func (s *PropertyService) FindNearby(ctx context.Context, center domain.Coordinate, radiusMeters float64, filter domain.ListingFilter) ([]domain.NearbyPoint, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(radiusMeters) || radiusMeters <= 0 || radiusMeters > MaxNearbyRadius {
		return nil, fmt.Errorf("%w: must be in (0, %.0f], got %v", domain.ErrInvalidRadius, MaxNearbyRadius, radiusMeters)
	}

	cacheKey := fmt.Sprintf("properties:nearby:%.4f:%.4f:%.0f", center.Latitude, center.Longitude, radiusMeters)
	var candidates []domain.PointOfInterest
	if !s.readCache(ctx, cacheKey, "nearby", &candidates) {
		var err error
		candidates, err = s.properties.FindWithin(ctx, domain.BoxAround(center, radiusMeters))
		if err != nil {
			return nil, fmt.Errorf("find properties: %w", err)
		}
		s.writeCache(ctx, cacheKey, candidates, 300)
	}

	var out []domain.NearbyPoint
	for _, p := range domain.FilterPoints(candidates, filter) {
		d := center.DistanceTo(p.Location)
		if d <= radiusMeters {
			out = append(out, domain.NearbyPoint{Point: p, DistanceMeters: d, DistanceMiles: geospatial.Miles(d)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	return out, nil
}

// Import upserts listings and drops the cached catalog.
func (s *PropertyService) Import(ctx context.Context, points []domain.PointOfInterest) error {
	if err := s.properties.UpsertBatch(ctx, points); err != nil {
		return fmt.Errorf("upsert properties: %w", err)
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached catalog so the next List hits the repository.
func (s *PropertyService) Invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, catalogCacheKey)
	}
}

func (s *PropertyService) readCache(ctx context.Context, key, op string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(op).Inc()
	return true
}

func (s *PropertyService) writeCache(ctx context.Context, key string, v any, ttlSeconds int) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = s.cache.Set(ctx, key, data, ttlSeconds)
	}
}
