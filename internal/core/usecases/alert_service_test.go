package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/usecases"
	"github.com/samirrijal/propfinder/internal/pkg/logging"
)

// --- Mock AlertDispatcher ---

type mockDispatcher struct {
	dispatched []domain.ProximityEvent
	err        error
}

func (m *mockDispatcher) DispatchProximityAlert(ctx context.Context, event *domain.ProximityEvent) error {
	m.dispatched = append(m.dispatched, *event)
	return m.err
}

// --- Mock NotificationService ---

type mockNotifier struct {
	recipient, title, body string
	err                    error
}

func (m *mockNotifier) Notify(ctx context.Context, recipient, title, body string) error {
	m.recipient, m.title, m.body = recipient, title, body
	return m.err
}

func TestAlertService_HandleProximityEvent(t *testing.T) {
	d := &mockDispatcher{}
	svc := usecases.NewAlertService(nil, d, nil, logging.Discard())

	enter := domain.NewProximityEvent("radar", domain.TransitionEnter, "condo", 40, domain.Coordinate{})
	leave := domain.NewProximityEvent("radar", domain.TransitionLeave, "condo", 600, domain.Coordinate{})

	if err := svc.HandleProximityEvent(context.Background(), &enter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.HandleProximityEvent(context.Background(), &leave); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.dispatched) != 1 || d.dispatched[0].Kind != domain.TransitionEnter {
		t.Fatalf("expected only the enter to be dispatched, got %+v", d.dispatched)
	}

	d.err = errors.New("temporal down")
	if err := svc.HandleProximityEvent(context.Background(), &enter); err == nil {
		t.Fatal("expected dispatch error")
	}
}

func TestComposeAlert(t *testing.T) {
	p := sampleListings()[1]
	title, body := usecases.ComposeAlert(p, 1609)
	if title != "Nearby: Condo IT Park" {
		t.Errorf("unexpected title %q", title)
	}
	if body != "$685,000 | 3 bed, 2 bath · 1.00 miles away" {
		t.Errorf("unexpected body %q", body)
	}

	_, body = usecases.ComposeAlert(domain.PointOfInterest{Name: "Lot"}, 0)
	if body != "0.00 miles away" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestAlertService_Send(t *testing.T) {
	n := &mockNotifier{}
	svc := usecases.NewAlertService(nil, nil, n, logging.Discard())

	if err := svc.Send(context.Background(), "radar", sampleListings()[0], 80); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.recipient != "radar" || n.title != "Nearby: Sugbo Apartment" {
		t.Errorf("unexpected notification %+v", n)
	}

	n.err = errors.New("no route")
	if err := svc.Send(context.Background(), "radar", sampleListings()[0], 80); err == nil {
		t.Fatal("expected notify error")
	}
}

func TestAlertService_Describe(t *testing.T) {
	repo := &mockPropertyRepo{getByIDFn: func(ctx context.Context, id string) (*domain.PointOfInterest, error) {
		p := sampleListings()[2]
		return &p, nil
	}}
	svc := usecases.NewAlertService(usecases.NewPropertyService(repo, nil), nil, nil, logging.Discard())

	p, err := svc.Describe(context.Background(), "bedspace")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Bed Spaces" {
		t.Errorf("expected Bed Spaces, got %s", p.Name)
	}
}
