package ports

import (
	"context"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// PropertyRepository persists property listings. Listing order is catalog order.
type PropertyRepository interface {
	Upsert(ctx context.Context, p *domain.PointOfInterest) error
	UpsertBatch(ctx context.Context, points []domain.PointOfInterest) error
	GetByID(ctx context.Context, id string) (*domain.PointOfInterest, error)
	List(ctx context.Context) ([]domain.PointOfInterest, error)
	FindWithin(ctx context.Context, box domain.BoundingBox) ([]domain.PointOfInterest, error)
}
