package core

import (
	"context"
	"fmt"

	temporalclient "go.temporal.io/sdk/client"
)

type SyncService struct {
	db DB
	tc temporalclient.Client
}

func NewSyncService(db DB, tc temporalclient.Client) *SyncService {
	return &SyncService{db: db, tc: tc}
}

// SyncProject starts a reconciliation pass for one project. The fixed
// workflow ID makes a second trigger while one is in flight fail fast
// instead of producing overlapping passes.
func (s *SyncService) SyncProject(ctx context.Context, projectID string) error {
	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&exists); err != nil {
		return fmt.Errorf("check project %s: %w", projectID, err)
	}
	if !exists {
		return fmt.Errorf("project %s not found", projectID)
	}

	if err := startWorkflow(ctx, s.tc, "SyncProjectWorkflow",
		workflowID("sync-project", projectID), projectID); err != nil {
		return fmt.Errorf("start SyncProjectWorkflow: %w", err)
	}
	return nil
}

// SyncAll starts a reconciliation pass over every active project.
func (s *SyncService) SyncAll(ctx context.Context) error {
	if err := startWorkflow(ctx, s.tc, "SyncAllProjectsWorkflow", "sync-all", nil); err != nil {
		return fmt.Errorf("start SyncAllProjectsWorkflow: %w", err)
	}
	return nil
}
