package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/tarek/provision/internal/activity"
	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/remote"
)

// RunOperationWorkflow executes one remote operation (backup, update or
// deploy) and completes its record exactly once. The workflow itself
// succeeds even when the operation fails: the outcome lives in the
// record, and a retry is a new operation, not a rerun of this one.
func RunOperationWorkflow(ctx workflow.Context, input model.OperationInput) error {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	// Scripts are not retried automatically. A backup that half-ran must
	// not silently run again; the operator retries through a new record.
	scriptCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 35 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	var res remote.Result
	if err := workflow.ExecuteActivity(scriptCtx, "RunScript", activity.RunScriptParams{
		ServerID: input.ServerID,
		Kind:     input.Kind,
	}).Get(ctx, &res); err != nil {
		// Configuration and connection problems land here. The record is
		// completed as failed without any remote side effects.
		return completeOperation(ctx, input.OperationID, activity.CompleteOperationParams{
			Status:   model.OperationStatusFailed,
			ErrorLog: err.Error(),
		})
	}

	if res.TimedOut {
		return completeOperation(ctx, input.OperationID, activity.CompleteOperationParams{
			Status:    model.OperationStatusFailed,
			StdoutLog: res.Stdout,
			ErrorLog:  fmt.Sprintf("operation timed out; partial stderr: %s", res.Stderr),
		})
	}
	if !res.Success {
		return completeOperation(ctx, input.OperationID, activity.CompleteOperationParams{
			Status:    model.OperationStatusFailed,
			StdoutLog: res.Stdout,
			ErrorLog:  fmt.Sprintf("remote command failed with exit code %d: %s", res.ExitCode, res.Stderr),
		})
	}

	params := activity.CompleteOperationParams{
		Status:    model.OperationStatusCompleted,
		StdoutLog: res.Stdout,
		ErrorLog:  res.Stderr,
	}

	if input.Kind == model.OperationKindBackup {
		var artifact activity.FetchArtifactResult
		err := workflow.ExecuteActivity(scriptCtx, "FetchBackupArtifact", activity.FetchArtifactParams{
			ServerID:    input.ServerID,
			OperationID: input.OperationID,
		}).Get(ctx, &artifact)
		if err != nil {
			// The backup ran but we could not retrieve it. That is a
			// failed backup, with the transfer error distinguishable from
			// a script error.
			return completeOperation(ctx, input.OperationID, activity.CompleteOperationParams{
				Status:    model.OperationStatusFailed,
				StdoutLog: res.Stdout,
				ErrorLog:  err.Error(),
			})
		}
		params.ArtifactPath = &artifact.Path
		params.ArtifactSize = &artifact.Size
	}

	return completeOperation(ctx, input.OperationID, params)
}

func completeOperation(ctx workflow.Context, operationID string, params activity.CompleteOperationParams) error {
	params.ID = operationID
	return workflow.ExecuteActivity(ctx, "CompleteOperation", params).Get(ctx, nil)
}
