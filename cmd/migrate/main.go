package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/propfinder/internal/adapters/catalogfile"
	"github.com/samirrijal/propfinder/internal/adapters/postgres"
	"github.com/samirrijal/propfinder/internal/pkg/config"
)

const defaultSeedFile = "data/listings.yaml"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|seed [catalog.yaml]>")
	}

	cfg, err := config.Load("propfinder-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, db.Pool)
	case "seed":
		path := defaultSeedFile
		if len(os.Args) > 2 {
			path = os.Args[2]
		}
		seed(ctx, db, path)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) {
	files, err := filepath.Glob("migrations/*.sql")
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	if len(files) == 0 {
		log.Fatal("no migrations found in ./migrations")
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

func seed(ctx context.Context, db *postgres.DB, path string) {
	points, err := catalogfile.Load(path)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if err := postgres.NewPropertyRepo(db).UpsertBatch(ctx, points); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seeded %d listings from %s", len(points), path)
}
