package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/tarek/provision/internal/model"
)

// SyncProjectWorkflow reconciles one project against the provider. The
// heavy lifting is a single transactional activity; the workflow exists
// for dedup (one pass per project at a time) and retry handling.
func SyncProjectWorkflow(ctx workflow.Context, projectID string) (model.SyncResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var result model.SyncResult
	err := workflow.ExecuteActivity(ctx, "SyncProject", projectID).Get(ctx, &result)
	return result, err
}

// SyncAllProjectsWorkflow reconciles every active project sequentially.
// A failing project is recorded and skipped; the pass always visits the
// whole fleet.
func SyncAllProjectsWorkflow(ctx workflow.Context) (model.SyncAllResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	result := model.SyncAllResult{Failed: map[string]string{}}

	var projectIDs []string
	if err := workflow.ExecuteActivity(ctx, "ListActiveProjectIDs").Get(ctx, &projectIDs); err != nil {
		return result, err
	}

	for _, projectID := range projectIDs {
		result.Projects++
		var r model.SyncResult
		if err := workflow.ExecuteActivity(ctx, "SyncProject", projectID).Get(ctx, &r); err != nil {
			result.Failed[projectID] = err.Error()
			continue
		}
		result.Created += r.Created
		result.Updated += r.Updated
		result.Deleted += r.Deleted
	}

	return result, nil
}
