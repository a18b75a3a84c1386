package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// ProximityAlertInput is the input for the proximity alert workflow.
type ProximityAlertInput struct {
	EventID        string
	ViewportID     string
	PointID        string
	DistanceMeters float64
}

// ProximityAlertWorkflow looks up the listing the observer is near and notifies the
// viewport's subscribers. A listing that no longer exists ends the workflow quietly.
func ProximityAlertWorkflow(ctx workflow.Context, input ProximityAlertInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting proximity alert workflow", "viewport", input.ViewportID, "point", input.PointID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypePropertyGone},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Describe the listing
	var property domain.PointOfInterest
	err := workflow.ExecuteActivity(ctx, ActivityDescribeProperty, input.PointID).Get(ctx, &property)
	if err != nil {
		var appErr *temporal.ApplicationError
		if errors.As(err, &appErr) && appErr.Type() == ErrTypePropertyGone {
			logger.Warn("property gone, skipping alert", "point", input.PointID)
			return nil
		}
		return err
	}

	// Step 2: Notify
	err = workflow.ExecuteActivity(ctx, ActivitySendAlert, input.ViewportID, property, input.DistanceMeters).Get(ctx, nil)
	if err != nil {
		logger.Warn("alert delivery failed", "error", err)
		return err
	}

	logger.Info("Proximity alert sent", "point", input.PointID)
	return nil
}
