package core

import (
	"context"
	"fmt"

	temporalclient "go.temporal.io/sdk/client"

	"github.com/tarek/provision/internal/creds"
	"github.com/tarek/provision/internal/provider"
)

const taskQueue = "provision-tasks"

type Services struct {
	Project      *ProjectService
	Server       *ServerService
	Request      *RequestService
	Operation    *OperationService
	Notification *NotificationService
	Sync         *SyncService
	Catalog      *CatalogService
}

func NewServices(db DB, tc temporalclient.Client, resolver *creds.Resolver, factory provider.Factory) *Services {
	return &Services{
		Project:      NewProjectService(db),
		Server:       NewServerService(db, tc),
		Request:      NewRequestService(db, tc),
		Operation:    NewOperationService(db, tc),
		Notification: NewNotificationService(db),
		Sync:         NewSyncService(db, tc),
		Catalog:      NewCatalogService(resolver, factory),
	}
}

// startWorkflow executes a Temporal workflow on the shared task queue. The
// workflow ID doubles as the dedup key: Temporal rejects a second start
// while a workflow with the same ID is still running, which is how
// concurrent syncs and double provisioning are prevented.
func startWorkflow(ctx context.Context, tc temporalclient.Client, workflowName, wfID string, arg any) error {
	_, err := tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        wfID,
		TaskQueue: taskQueue,
	}, workflowName, arg)
	return err
}

func workflowID(prefix, id string) string {
	return fmt.Sprintf("%s-%s", prefix, id)
}
