package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/samirrijal/propfinder/internal/adapters/catalogfile"
	"github.com/samirrijal/propfinder/internal/adapters/postgres"
	"github.com/samirrijal/propfinder/internal/adapters/valkey"
	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/ports"
	"github.com/samirrijal/propfinder/internal/core/usecases"
	"github.com/samirrijal/propfinder/internal/pkg/config"
	"github.com/samirrijal/propfinder/internal/pkg/logging"
)

const defaultChunk = 500

// Loads a listing catalog (YAML or JSON) into Postgres.
//
//	ingestor <catalog.yaml> [chunk-size]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: ingestor <catalog.yaml> [chunk-size]")
	}
	path := os.Args[1]
	chunk := defaultChunk
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			log.Fatalf("chunk size must be a positive integer, got %q", os.Args[2])
		}
		chunk = n
	}

	cfg, err := config.Load("propfinder-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	points, err := catalogfile.Load(path)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	logger.Info("catalog parsed", "file", path, "listings", len(points))

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Without the cache the API keeps serving the old catalog until its TTL runs out.
	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		logger.Warn("valkey unavailable, cached catalog will expire on its own", "error", err)
	} else {
		defer c.Close()
		cache = c
	}

	svc := usecases.NewPropertyService(postgres.NewPropertyRepo(db), cache)
	start := time.Now()
	for i, batch := range chunks(points, chunk) {
		if err := svc.Import(ctx, batch); err != nil {
			log.Fatalf("import batch %d: %v", i+1, err)
		}
		logger.Info("batch imported", "batch", i+1, "listings", len(batch))
	}

	logger.Info("ingestion complete", "listings", len(points), "took", time.Since(start).String())
}

func chunks(points []domain.PointOfInterest, size int) [][]domain.PointOfInterest {
	var out [][]domain.PointOfInterest
	for size < len(points) {
		points, out = points[size:], append(out, points[:size:size])
	}
	if len(points) > 0 {
		out = append(out, points)
	}
	return out
}
