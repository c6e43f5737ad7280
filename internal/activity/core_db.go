package activity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/platform"
)

// DB defines the database operations used by activity structs.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CoreDB contains activities that read from and update the core database.
type CoreDB struct {
	db DB
}

// NewCoreDB creates a new CoreDB activity struct.
func NewCoreDB(db DB) *CoreDB {
	return &CoreDB{db: db}
}

// GetServerRequest retrieves a server request by its ID.
func (a *CoreDB) GetServerRequest(ctx context.Context, id string) (*model.ServerRequest, error) {
	var r model.ServerRequest
	err := a.db.QueryRow(ctx,
		`SELECT id, requester_id, project_id, client_name, server_name, subdomain,
		        server_type, estimated_usage, justification, priority, status, deployment_progress,
		        server_ip, deployment_notes, reviewed_by, review_note, reviewed_at, deployed_at,
		        created_at, updated_at
		 FROM server_requests WHERE id = $1`, id,
	).Scan(&r.ID, &r.RequesterID, &r.ProjectID, &r.ClientName, &r.ServerName, &r.Subdomain,
		&r.ServerType, &r.EstimatedUsage, &r.Justification, &r.Priority, &r.Status, &r.DeploymentProgress,
		&r.ServerIP, &r.DeploymentNotes, &r.ReviewedBy, &r.ReviewNote, &r.ReviewedAt, &r.DeployedAt,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get server request by id: %w", err)
	}
	return &r, nil
}

// GetServer retrieves a server by its ID.
func (a *CoreDB) GetServer(ctx context.Context, id string) (*model.Server, error) {
	var s model.Server
	err := a.db.QueryRow(ctx,
		`SELECT id, provider_id, project_id, name, status, server_type, image,
		        public_ip, private_ip, ipv6, reverse_dns, datacenter, location,
		        cpu_cores, memory_gb, disk_gb, last_synced, created_at, updated_at
		 FROM servers WHERE id = $1`, id,
	).Scan(&s.ID, &s.ProviderID, &s.ProjectID, &s.Name, &s.Status, &s.ServerType, &s.Image,
		&s.PublicIP, &s.PrivateIP, &s.IPv6, &s.ReverseDNS, &s.Datacenter, &s.Location,
		&s.CPUCores, &s.MemoryGB, &s.DiskGB, &s.LastSynced, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get server by id: %w", err)
	}
	return &s, nil
}

// GetProjectBaseDomain returns the base domain configured for a project,
// empty when the project has none.
func (a *CoreDB) GetProjectBaseDomain(ctx context.Context, projectID string) (string, error) {
	var domain string
	err := a.db.QueryRow(ctx,
		`SELECT base_domain FROM projects WHERE id = $1`, projectID).Scan(&domain)
	if err != nil {
		return "", fmt.Errorf("get project base domain: %w", err)
	}
	return domain, nil
}

// SetRequestStatusParams holds the parameters for SetRequestStatus.
type SetRequestStatusParams struct {
	ID     string
	Status string
}

// SetRequestStatus moves a request to a new status. Terminal states stick:
// a request already deployed or rejected is never overwritten, so a late
// duplicate workflow run cannot corrupt the record.
func (a *CoreDB) SetRequestStatus(ctx context.Context, params SetRequestStatusParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE server_requests SET status = $1, updated_at = now()
		 WHERE id = $2 AND status NOT IN ($3, $4)`,
		params.Status, params.ID, model.RequestStatusDeployed, model.RequestStatusRejected)
	if err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	return nil
}

// SetRequestProgressParams holds the parameters for SetRequestProgress.
type SetRequestProgressParams struct {
	ID       string
	Progress int
}

// SetRequestProgress advances the deployment progress of a request.
// GREATEST keeps the value monotonic when activity retries land out of
// order.
func (a *CoreDB) SetRequestProgress(ctx context.Context, params SetRequestProgressParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE server_requests
		 SET deployment_progress = GREATEST(deployment_progress, $1), updated_at = now()
		 WHERE id = $2`,
		params.Progress, params.ID)
	if err != nil {
		return fmt.Errorf("set request progress: %w", err)
	}
	return nil
}

// SetRequestServerIPParams holds the parameters for SetRequestServerIP.
type SetRequestServerIPParams struct {
	ID string
	IP string
}

// SetRequestServerIP records the provisioned server's address on the request.
func (a *CoreDB) SetRequestServerIP(ctx context.Context, params SetRequestServerIPParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE server_requests SET server_ip = $1, updated_at = now() WHERE id = $2`,
		params.IP, params.ID)
	if err != nil {
		return fmt.Errorf("set request server ip: %w", err)
	}
	return nil
}

// SetRequestDeployedParams holds the parameters for SetRequestDeployed.
type SetRequestDeployedParams struct {
	ID    string
	Notes string
}

// SetRequestDeployed marks a request as fully provisioned.
func (a *CoreDB) SetRequestDeployed(ctx context.Context, params SetRequestDeployedParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE server_requests
		 SET status = $1, deployment_progress = 100, deployment_notes = $2,
		     deployed_at = now(), updated_at = now()
		 WHERE id = $3 AND status NOT IN ($1, $4)`,
		model.RequestStatusDeployed, params.Notes, params.ID, model.RequestStatusRejected)
	if err != nil {
		return fmt.Errorf("set request deployed: %w", err)
	}
	return nil
}

// SetRequestFailedParams holds the parameters for SetRequestFailed.
type SetRequestFailedParams struct {
	ID      string
	Message string
}

// SetRequestFailed marks a request as failed and records the provider or
// pipeline error verbatim so an operator can see the actual cause.
func (a *CoreDB) SetRequestFailed(ctx context.Context, params SetRequestFailedParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE server_requests
		 SET status = $1, deployment_notes = $2, updated_at = now()
		 WHERE id = $3 AND status NOT IN ($4, $5)`,
		model.RequestStatusFailed, params.Message, params.ID,
		model.RequestStatusDeployed, model.RequestStatusRejected)
	if err != nil {
		return fmt.Errorf("set request failed: %w", err)
	}
	return nil
}

// InsertServerParams holds the parameters for InsertServer.
type InsertServerParams struct {
	ProviderID int64
	ProjectID  *string
	Name       string
	Status     string
	ServerType string
	Image      string
	PublicIP   *string
	PrivateIP  *string
	IPv6       *string
	ReverseDNS *string
	Datacenter *string
	Location   *string
	CPUCores   int
	MemoryGB   float64
	DiskGB     int
}

// InsertServer records a newly provisioned machine and returns its local ID.
// An existing row for the same provider ID is updated instead, which makes
// the activity safe to retry.
func (a *CoreDB) InsertServer(ctx context.Context, params InsertServerParams) (string, error) {
	id := platform.NewID()
	err := a.db.QueryRow(ctx,
		`INSERT INTO servers (id, provider_id, project_id, name, status, server_type, image,
		        public_ip, private_ip, ipv6, reverse_dns, datacenter, location,
		        cpu_cores, memory_gb, disk_gb, last_synced, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now(), now())
		 ON CONFLICT (provider_id) DO UPDATE SET
		        status = EXCLUDED.status, public_ip = EXCLUDED.public_ip,
		        last_synced = now(), updated_at = now()
		 RETURNING id`,
		id, params.ProviderID, params.ProjectID, params.Name, params.Status, params.ServerType,
		params.Image, params.PublicIP, params.PrivateIP, params.IPv6, params.ReverseDNS,
		params.Datacenter, params.Location, params.CPUCores, params.MemoryGB, params.DiskGB,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert server: %w", err)
	}
	return id, nil
}

// InsertNotificationParams holds the parameters for InsertNotification.
type InsertNotificationParams struct {
	UserID    string
	Title     string
	Message   string
	Severity  string
	RequestID *string
}

// InsertNotification writes one notification row.
func (a *CoreDB) InsertNotification(ctx context.Context, params InsertNotificationParams) error {
	_, err := a.db.Exec(ctx,
		`INSERT INTO notifications (id, user_id, title, message, severity, request_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())`,
		platform.NewID(), params.UserID, params.Title, params.Message, params.Severity, params.RequestID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// CompleteOperationParams holds the parameters for CompleteOperation.
type CompleteOperationParams struct {
	ID           string
	Status       string
	StdoutLog    string
	ErrorLog     string
	ArtifactPath *string
	ArtifactSize *int64
}

// CompleteOperation finishes an operation record exactly once. The status
// guard means a retried workflow cannot reopen or rewrite a record that
// already completed.
func (a *CoreDB) CompleteOperation(ctx context.Context, params CompleteOperationParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE operations
		 SET status = $1, stdout_log = $2, error_log = $3,
		     artifact_path = $4, artifact_size = $5,
		     completed_at = now(), updated_at = now()
		 WHERE id = $6 AND status = $7`,
		params.Status, params.StdoutLog, params.ErrorLog,
		params.ArtifactPath, params.ArtifactSize,
		params.ID, model.OperationStatusRunning)
	if err != nil {
		return fmt.Errorf("complete operation: %w", err)
	}
	return nil
}

// ListActiveProjectIDs returns the IDs of all active projects, for the
// fleet-wide reconciliation pass.
func (a *CoreDB) ListActiveProjectIDs(ctx context.Context) ([]string, error) {
	rows, err := a.db.Query(ctx,
		`SELECT id FROM projects WHERE active = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active projects: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project ids: %w", err)
	}
	return ids, nil
}
