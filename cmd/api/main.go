package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/propfinder/internal/adapters/http"
	natsadapter "github.com/samirrijal/propfinder/internal/adapters/nats"
	"github.com/samirrijal/propfinder/internal/adapters/postgres"
	"github.com/samirrijal/propfinder/internal/adapters/valkey"
	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/ports"
	"github.com/samirrijal/propfinder/internal/core/usecases"
	"github.com/samirrijal/propfinder/internal/pkg/config"
	"github.com/samirrijal/propfinder/internal/pkg/logging"
	"github.com/samirrijal/propfinder/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("propfinder-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			logger.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	deps := &http.Dependencies{DB: db, Logger: logger}

	// Cache (optional)
	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		logger.Warn("valkey unavailable, serving uncached", "error", err)
	} else {
		defer c.Close()
		cache = c
		deps.Cache = c
	}

	// NATS (optional): proximity events, live positions and the WebSocket relay
	var (
		publisher ports.EventPublisher
		providers usecases.PositionProviderFactory
	)
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		logger.Warn("nats unavailable, live mode and event publishing disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		providers = natsadapter.NewPositionFeeds(pub.Conn(), time.Duration(cfg.NATS.LocateTimeout)*time.Millisecond)
		deps.NATS = pub.Conn()
	}

	// Use cases
	properties := usecases.NewPropertyService(postgres.NewPropertyRepo(db), cache)
	deps.Properties = properties

	viewports, err := buildViewports(ctx, cfg, properties, publisher, providers, logger)
	if err != nil {
		log.Fatalf("viewports: %v", err)
	}
	defer viewports.Close()
	deps.Viewports = viewports

	if n, err := viewports.ReloadPoints(ctx); err != nil {
		logger.Warn("initial catalog load failed", "error", err)
	} else {
		logger.Info("catalog loaded", "points", n)
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "PropFinder API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func buildViewports(
	ctx context.Context,
	cfg *config.Config,
	catalog usecases.Catalog,
	publisher ports.EventPublisher,
	providers usecases.PositionProviderFactory,
	logger *slog.Logger,
) (*usecases.ViewportService, error) {
	mode, err := domain.ParseMode(cfg.Radar.Mode)
	if err != nil {
		return nil, err
	}
	svc := usecases.NewViewportService(ctx, catalog, publisher, providers, usecases.ViewportDefaults{
		RadiusMeters: cfg.Radar.RadiusMeters,
		Step:         cfg.Radar.Step,
		Zoom:         cfg.Radar.Zoom,
		Mode:         mode,
		Start:        domain.Coordinate{Latitude: cfg.Radar.StartLat, Longitude: cfg.Radar.StartLon},
	}, logger)

	for _, vc := range cfg.Viewports {
		spec := usecases.ViewportSpec{
			ID:           vc.ID,
			Bounds:       domain.BoundingBox{South: vc.South, North: vc.North, West: vc.West, East: vc.East},
			RadiusMeters: vc.RadiusMeters,
			Zoom:         vc.Zoom,
		}
		if err := svc.Register(spec); err != nil {
			svc.Close()
			return nil, fmt.Errorf("register %s: %w", vc.ID, err)
		}
	}
	return svc, nil
}
