package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

const propertyColumns = `id, name, category, latitude, longitude, price, details, image, created_at`

const upsertProperty = `
	INSERT INTO properties (id, name, category, latitude, longitude, price, details, image)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, category = EXCLUDED.category,
	    latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
	    price = EXCLUDED.price, details = EXCLUDED.details, image = EXCLUDED.image
`

// PropertyRepo implements ports.PropertyRepository with pgx.
type PropertyRepo struct {
	db *DB
}

// NewPropertyRepo creates a new PropertyRepo.
func NewPropertyRepo(db *DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

func upsertArgs(p *domain.PointOfInterest) []any {
	return []any{
		p.ID, p.Name, string(p.Category),
		p.Location.Latitude, p.Location.Longitude,
		p.Price(), p.Details(), p.Image(),
	}
}

// Upsert inserts or updates a single listing.
func (r *PropertyRepo) Upsert(ctx context.Context, p *domain.PointOfInterest) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := r.db.Pool.Exec(ctx, upsertProperty, upsertArgs(p)...)
	return err
}

// UpsertBatch inserts many listings using pgx.Batch.
func (r *PropertyRepo) UpsertBatch(ctx context.Context, points []domain.PointOfInterest) error {
	batch := &pgx.Batch{}
	for i := range points {
		if err := points[i].Validate(); err != nil {
			return err
		}
		batch.Queue(upsertProperty, upsertArgs(&points[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range points {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a listing by id.
func (r *PropertyRepo) GetByID(ctx context.Context, id string) (*domain.PointOfInterest, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	p, err := scanProperty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPropertyNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every listing in catalog (insertion) order.
func (r *PropertyRepo) List(ctx context.Context) ([]domain.PointOfInterest, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// FindWithin returns listings inside box, in catalog order.
func (r *PropertyRepo) FindWithin(ctx context.Context, box domain.BoundingBox) ([]domain.PointOfInterest, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+propertyColumns+`
		FROM properties
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		ORDER BY seq
	`, box.South, box.North, box.West, box.East)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]domain.PointOfInterest, error) {
	defer rows.Close()
	var out []domain.PointOfInterest
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProperty(row pgx.Row) (domain.PointOfInterest, error) {
	var (
		p                     domain.PointOfInterest
		category              string
		price, details, image string
	)
	if err := row.Scan(
		&p.ID, &p.Name, &category,
		&p.Location.Latitude, &p.Location.Longitude,
		&price, &details, &image, &p.CreatedAt,
	); err != nil {
		return p, err
	}
	p.Category = domain.Category(category)
	p.Attributes = map[string]any{
		domain.AttrPrice:   price,
		domain.AttrDetails: details,
		domain.AttrImage:   image,
	}
	return p, nil
}
