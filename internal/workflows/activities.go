package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/core/usecases"
)

// Activity names registered on the worker.
const (
	ActivityDescribeProperty = "DescribeProperty"
	ActivitySendAlert        = "SendAlert"
)

// ErrTypePropertyGone marks a lookup for a listing that has been removed.
const ErrTypePropertyGone = "PropertyGone"

// AlertActivities holds the activity implementations for the proximity alert workflow.
type AlertActivities struct {
	Alerts *usecases.AlertService
}

// DescribeProperty returns the listing an alert is about.
func (a *AlertActivities) DescribeProperty(ctx context.Context, pointID string) (domain.PointOfInterest, error) {
	p, err := a.Alerts.Describe(ctx, pointID)
	if errors.Is(err, domain.ErrPropertyNotFound) {
		return domain.PointOfInterest{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("property %s not found", pointID), ErrTypePropertyGone, err)
	}
	if err != nil {
		return domain.PointOfInterest{}, fmt.Errorf("describe property %s: %w", pointID, err)
	}
	return *p, nil
}

// SendAlert notifies the viewport's subscribers.
func (a *AlertActivities) SendAlert(ctx context.Context, recipient string, p domain.PointOfInterest, distanceMeters float64) error {
	return a.Alerts.Send(ctx, recipient, p, distanceMeters)
}
