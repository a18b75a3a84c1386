package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

func condo() domain.PointOfInterest {
	return domain.PointOfInterest{
		ID:         "condo",
		Name:       "Condo IT Park",
		Location:   domain.Coordinate{Latitude: 10.3153, Longitude: 123.918},
		Attributes: map[string]any{domain.AttrPrice: "$685,000"},
	}
}

func newEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivityWithOptions(func(ctx context.Context, pointID string) (domain.PointOfInterest, error) {
		return domain.PointOfInterest{}, nil
	}, activity.RegisterOptions{Name: ActivityDescribeProperty})
	env.RegisterActivityWithOptions(func(ctx context.Context, recipient string, p domain.PointOfInterest, distance float64) error {
		return nil
	}, activity.RegisterOptions{Name: ActivitySendAlert})
	return env
}

var input = ProximityAlertInput{EventID: "e1", ViewportID: "radar", PointID: "condo", DistanceMeters: 42}

func TestProximityAlertWorkflow_Sends(t *testing.T) {
	env := newEnv(t)
	env.OnActivity(ActivityDescribeProperty, mock.Anything, "condo").Return(condo(), nil).Once()
	env.OnActivity(ActivitySendAlert, mock.Anything, "radar", mock.Anything, 42.0).Return(nil).Once()

	env.ExecuteWorkflow(ProximityAlertWorkflow, input)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	env.AssertExpectations(t)
}

func TestProximityAlertWorkflow_PropertyGone(t *testing.T) {
	env := newEnv(t)
	gone := temporal.NewNonRetryableApplicationError("property condo not found", ErrTypePropertyGone, nil)
	env.OnActivity(ActivityDescribeProperty, mock.Anything, "condo").Return(domain.PointOfInterest{}, gone).Once()

	env.ExecuteWorkflow(ProximityAlertWorkflow, input)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	env.AssertNumberOfCalls(t, ActivitySendAlert, 0)
}

func TestProximityAlertWorkflow_SendFails(t *testing.T) {
	env := newEnv(t)
	env.OnActivity(ActivityDescribeProperty, mock.Anything, "condo").Return(condo(), nil)
	env.OnActivity(ActivitySendAlert, mock.Anything, "radar", mock.Anything, 42.0).Return(errors.New("nats down"))

	env.ExecuteWorkflow(ProximityAlertWorkflow, input)

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}
