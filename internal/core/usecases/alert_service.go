package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/ports"
	"github.com/samirrijal/propfinder/internal/pkg/geospatial"
	"github.com/samirrijal/propfinder/internal/pkg/metrics"
	"github.com/samirrijal/propfinder/internal/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PropertyLookup resolves a listing by id.
type PropertyLookup interface {
	GetByID(ctx context.Context, id string) (*domain.PointOfInterest, error)
}

// AlertService turns proximity transitions into "property nearby" notifications.
type AlertService struct {
	properties PropertyLookup
	dispatcher ports.AlertDispatcher
	notifier   ports.NotificationService
	logger     *slog.Logger
}

// NewAlertService creates a new AlertService.
func NewAlertService(
	properties PropertyLookup,
	dispatcher ports.AlertDispatcher,
	notifier ports.NotificationService,
	logger *slog.Logger,
) *AlertService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertService{
		properties: properties,
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// HandleProximityEvent starts an alert for every enter transition. Leaves are ignored.
func (s *AlertService) HandleProximityEvent(ctx context.Context, event *domain.ProximityEvent) error {
	if event.Kind != domain.TransitionEnter {
		return nil
	}
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanAlertDispatch, trace.WithAttributes(
		attribute.String("viewport", event.ViewportID),
		attribute.String("point", event.PointID),
	))
	defer span.End()

	if err := s.dispatcher.DispatchProximityAlert(ctx, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.AlertsDispatched.WithLabelValues("error").Inc()
		return fmt.Errorf("dispatch alert for %s: %w", event.PointID, err)
	}
	metrics.AlertsDispatched.WithLabelValues("ok").Inc()
	return nil
}

// Describe loads the listing an alert is about.
func (s *AlertService) Describe(ctx context.Context, pointID string) (*domain.PointOfInterest, error) {
	return s.properties.GetByID(ctx, pointID)
}

// Send composes and delivers the notification for p.
func (s *AlertService) Send(ctx context.Context, recipient string, p domain.PointOfInterest, distanceMeters float64) error {
	title, body := ComposeAlert(p, distanceMeters)
	if s.notifier == nil {
		s.logger.Info("alert (no notifier)", "recipient", recipient, "title", title, "body", body)
		return nil
	}
	if err := s.notifier.Notify(ctx, recipient, title, body); err != nil {
		return fmt.Errorf("notify %s: %w", recipient, err)
	}
	return nil
}

// ComposeAlert renders the popup text shown when the observer gets close to a listing.
func ComposeAlert(p domain.PointOfInterest, distanceMeters float64) (title, body string) {
	title = "Nearby: " + p.Name
	body = fmt.Sprintf("%.2f miles away", geospatial.Miles(distanceMeters))
	switch price, details := p.Price(), p.Details(); {
	case price != "" && details != "":
		body = fmt.Sprintf("%s | %s · %s", price, details, body)
	case price != "":
		body = price + " · " + body
	case details != "":
		body = details + " · " + body
	}
	return title, body
}
