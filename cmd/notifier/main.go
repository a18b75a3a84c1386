package main

import (
	"context"
	"log"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/propfinder/internal/adapters/nats"
	"github.com/samirrijal/propfinder/internal/adapters/postgres"
	temporaladapter "github.com/samirrijal/propfinder/internal/adapters/temporal"
	"github.com/samirrijal/propfinder/internal/adapters/valkey"
	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/ports"
	"github.com/samirrijal/propfinder/internal/core/usecases"
	"github.com/samirrijal/propfinder/internal/pkg/config"
	"github.com/samirrijal/propfinder/internal/pkg/logging"
	"github.com/samirrijal/propfinder/internal/pkg/telemetry"
	"github.com/samirrijal/propfinder/internal/workflows"
)

const durableConsumer = "propfinder-notifier"

// Consumes stored proximity transitions and runs a ProximityAlertWorkflow per enter event.
func main() {
	cfg, err := config.Load("propfinder-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if !cfg.Temporal.Enabled {
		log.Fatal("temporal.enabled is false; the notifier has nothing to run alerts on")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			logger.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		logger.Warn("valkey unavailable, serving uncached", "error", err)
	} else {
		defer c.Close()
		cache = c
	}

	// Notifications go out on core NATS; events come in through a durable JetStream consumer.
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, durableConsumer)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	tc, err := temporaladapter.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer tc.Close()

	properties := usecases.NewPropertyService(postgres.NewPropertyRepo(db), cache)
	alerts := usecases.NewAlertService(
		properties,
		temporaladapter.NewDispatcher(tc, cfg.Temporal.TaskQueue),
		pub,
		logger,
	)

	w := worker.New(tc, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ProximityAlertWorkflow)
	acts := &workflows.AlertActivities{Alerts: alerts}
	w.RegisterActivityWithOptions(acts.DescribeProperty, activity.RegisterOptions{Name: workflows.ActivityDescribeProperty})
	w.RegisterActivityWithOptions(acts.SendAlert, activity.RegisterOptions{Name: workflows.ActivitySendAlert})

	err = sub.SubscribeProximityEvents(ctx, func(ctx context.Context, event *domain.ProximityEvent) error {
		dctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := alerts.HandleProximityEvent(dctx, event); err != nil {
			logger.Warn("alert dispatch failed", "event", event.ID, "point", event.PointID, "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe proximity events: %v", err)
	}

	logger.Info("notifier started", "task_queue", cfg.Temporal.TaskQueue, "consumer", durableConsumer)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
