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

const operationColumns = `id, server_id, kind, initiator_id, status, started_at, completed_at,
	stdout_log, error_log, artifact_path, artifact_size, created_at, updated_at`

type OperationService struct {
	db DB
	tc temporalclient.Client
}

func NewOperationService(db DB, tc temporalclient.Client) *OperationService {
	return &OperationService{db: db, tc: tc}
}

func scanOperation(row interface{ Scan(...any) error }) (*model.Operation, error) {
	var op model.Operation
	err := row.Scan(&op.ID, &op.ServerID, &op.Kind, &op.InitiatorID, &op.Status,
		&op.StartedAt, &op.CompletedAt, &op.StdoutLog, &op.ErrorLog,
		&op.ArtifactPath, &op.ArtifactSize, &op.CreatedAt, &op.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// Run records a new operation in running state and starts the workflow
// that executes it. The record is created first so a worker crash still
// leaves an auditable row; the workflow later completes it exactly once.
func (s *OperationService) Run(ctx context.Context, serverID string, req request.RunOperation) (*model.Operation, error) {
	now := time.Now().UTC()
	op := &model.Operation{
		ID:          platform.NewID(),
		ServerID:    serverID,
		Kind:        req.Kind,
		InitiatorID: req.InitiatorID,
		Status:      model.OperationStatusRunning,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO operations (id, server_id, kind, initiator_id, status, started_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		op.ID, op.ServerID, op.Kind, op.InitiatorID, op.Status, op.StartedAt, op.CreatedAt, op.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert operation: %w", err)
	}

	if err := startWorkflow(ctx, s.tc, "RunOperationWorkflow",
		workflowID("operation", op.ID), model.OperationInput{
			OperationID: op.ID,
			ServerID:    serverID,
			Kind:        req.Kind,
		}); err != nil {
		return nil, fmt.Errorf("start RunOperationWorkflow: %w", err)
	}

	return op, nil
}

func (s *OperationService) GetByID(ctx context.Context, id string) (*model.Operation, error) {
	op, err := scanOperation(s.db.QueryRow(ctx,
		`SELECT `+operationColumns+` FROM operations WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get operation %s: %w", id, err)
	}
	return op, nil
}

func (s *OperationService) ListByServer(ctx context.Context, serverID string, params request.ListParams) ([]model.Operation, bool, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE server_id = $1`
	args := []any{serverID}
	argIdx := 2

	if params.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, params.Status)
		argIdx++
	}
	if params.Cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, params.Cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, params.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list operations for server %s: %w", serverID, err)
	}
	defer rows.Close()

	var ops []model.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan operation: %w", err)
		}
		ops = append(ops, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate operations: %w", err)
	}

	hasMore := len(ops) > params.Limit
	if hasMore {
		ops = ops[:params.Limit]
	}
	return ops, hasMore, nil
}
