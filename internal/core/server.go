package core

import (
	"context"
	"fmt"
	"time"

	temporalclient "go.temporal.io/sdk/client"

	"github.com/tarek/provision/internal/api/request"
	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/platform"
)

const serverColumns = `id, provider_id, project_id, name, status, server_type, image,
	public_ip, private_ip, ipv6, reverse_dns, datacenter, location,
	cpu_cores, memory_gb, disk_gb, last_synced, created_at, updated_at`

type ServerService struct {
	db DB
	tc temporalclient.Client
}

func NewServerService(db DB, tc temporalclient.Client) *ServerService {
	return &ServerService{db: db, tc: tc}
}

func scanServer(row interface{ Scan(...any) error }) (*model.Server, error) {
	var srv model.Server
	err := row.Scan(&srv.ID, &srv.ProviderID, &srv.ProjectID, &srv.Name, &srv.Status,
		&srv.ServerType, &srv.Image, &srv.PublicIP, &srv.PrivateIP, &srv.IPv6,
		&srv.ReverseDNS, &srv.Datacenter, &srv.Location,
		&srv.CPUCores, &srv.MemoryGB, &srv.DiskGB,
		&srv.LastSynced, &srv.CreatedAt, &srv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &srv, nil
}

func (s *ServerService) GetByID(ctx context.Context, id string) (*model.Server, error) {
	srv, err := scanServer(s.db.QueryRow(ctx,
		`SELECT `+serverColumns+` FROM servers WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get server %s: %w", id, err)
	}
	return srv, nil
}

func (s *ServerService) List(ctx context.Context, params request.ListParams) ([]model.Server, bool, error) {
	query := `SELECT ` + serverColumns + ` FROM servers`
	args := []any{}
	argIdx := 1
	var conds []string

	if params.Search != "" {
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}
	if params.Cursor != "" {
		conds = append(conds, fmt.Sprintf("id > $%d", argIdx))
		args = append(args, params.Cursor)
		argIdx++
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, params.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list servers: %w", err)
	}
	defer rows.Close()

	var servers []model.Server
	for rows.Next() {
		srv, err := scanServer(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan server: %w", err)
		}
		servers = append(servers, *srv)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate servers: %w", err)
	}

	hasMore := len(servers) > params.Limit
	if hasMore {
		servers = servers[:params.Limit]
	}
	return servers, hasMore, nil
}

// RegisterSelfHosted records a client-managed machine so that remote
// operations can target it. Self-hosted servers have no provider ID and
// are never touched by reconciliation.
func (s *ServerService) RegisterSelfHosted(ctx context.Context, req request.RegisterSelfHostedServer) (*model.Server, error) {
	now := time.Now().UTC()
	srv := &model.Server{
		ID:        platform.NewID(),
		Name:      req.Name,
		Status:    model.ServerStatusRunning,
		PublicIP:  &req.PublicIP,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.ProjectID != "" {
		srv.ProjectID = &req.ProjectID
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO servers (id, provider_id, project_id, name, status, public_ip, created_at, updated_at)
		 VALUES ($1, NULL, $2, $3, $4, $5, $6, $7)`,
		srv.ID, srv.ProjectID, srv.Name, srv.Status, srv.PublicIP, srv.CreatedAt, srv.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("register self-hosted server: %w", err)
	}
	return srv, nil
}

// PowerAction starts a power workflow for a provider-managed server. The
// per-server workflow ID serializes power transitions so a reboot cannot
// race a poweroff.
func (s *ServerService) PowerAction(ctx context.Context, id, action string) error {
	srv, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if srv.SelfHosted() {
		return fmt.Errorf("server %s is self-hosted and has no provider power control", id)
	}

	if err := startWorkflow(ctx, s.tc, "PowerActionWorkflow", workflowID("power", id),
		model.PowerActionInput{ServerID: id, Action: action}); err != nil {
		return fmt.Errorf("start PowerActionWorkflow: %w", err)
	}
	return nil
}

// TestConnection probes SSH reachability of a server and waits for the
// verdict. The workflow does the dialing so credentials stay on the
// worker side.
func (s *ServerService) TestConnection(ctx context.Context, id string) (*model.ConnectionTestResult, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	run, err := s.tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        fmt.Sprintf("test-connection-%s-%d", id, time.Now().UnixNano()),
		TaskQueue: taskQueue,
	}, "TestConnectionWorkflow", id)
	if err != nil {
		return nil, fmt.Errorf("start TestConnectionWorkflow: %w", err)
	}

	var result model.ConnectionTestResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, fmt.Errorf("test connection for server %s: %w", id, err)
	}
	return &result, nil
}
