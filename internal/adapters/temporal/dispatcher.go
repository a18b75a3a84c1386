package temporal

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/propfinder/internal/core/domain"
	"github.com/samirrijal/propfinder/internal/workflows"
)

// Dispatcher implements ports.AlertDispatcher by starting a Temporal workflow per event.
type Dispatcher struct {
	client    client.Client
	taskQueue string
}

// NewDispatcher creates a dispatcher on an existing client.
func NewDispatcher(c client.Client, taskQueue string) *Dispatcher {
	return &Dispatcher{client: c, taskQueue: taskQueue}
}

// Dial connects to the Temporal frontend.
func Dial(hostPort, namespace string) (client.Client, error) {
	c, err := client.Dial(client.Options{HostPort: hostPort, Namespace: namespace})
	if err != nil {
		return nil, fmt.Errorf("temporal dial: %w", err)
	}
	return c, nil
}

// WorkflowID keys alerts by event so redelivered events do not alert twice.
func WorkflowID(event *domain.ProximityEvent) string {
	return "proximity-alert-" + event.ID
}

// DispatchProximityAlert starts ProximityAlertWorkflow for event.
func (d *Dispatcher) DispatchProximityAlert(ctx context.Context, event *domain.ProximityEvent) error {
	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(event),
		TaskQueue: d.taskQueue,
	}
	_, err := d.client.ExecuteWorkflow(ctx, opts, workflows.ProximityAlertWorkflow, workflows.ProximityAlertInput{
		EventID:        event.ID,
		ViewportID:     event.ViewportID,
		PointID:        event.PointID,
		DistanceMeters: event.DistanceMeters,
	})
	if err != nil {
		return fmt.Errorf("start alert workflow: %w", err)
	}
	return nil
}
