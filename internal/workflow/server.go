package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/tarek/provision/internal/activity"
	"github.com/tarek/provision/internal/model"
)

// PowerActionWorkflow applies a power transition to a server. Serialized
// per server via the workflow ID, so transitions cannot interleave.
func PowerActionWorkflow(ctx workflow.Context, input model.PowerActionInput) error {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var srv model.Server
	if err := workflow.ExecuteActivity(ctx, "GetServer", input.ServerID).Get(ctx, &srv); err != nil {
		return err
	}
	if srv.ProviderID == nil {
		return fmt.Errorf("server %s is self-hosted", input.ServerID)
	}

	return workflow.ExecuteActivity(ctx, "PowerAction", activity.PowerActionParams{
		ProjectID:  srv.ProjectID,
		ProviderID: *srv.ProviderID,
		Action:     input.Action,
	}).Get(ctx, nil)
}

// TestConnectionWorkflow probes SSH reachability of a server and returns
// the verdict to the caller. No retries: the caller wants the current
// truth, not an eventual success.
func TestConnectionWorkflow(ctx workflow.Context, serverID string) (model.ConnectionTestResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	var result model.ConnectionTestResult
	err := workflow.ExecuteActivity(ctx, "TestConnection", serverID).Get(ctx, &result)
	return result, err
}
