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

const requestColumns = `id, requester_id, project_id, client_name, server_name, subdomain,
	server_type, estimated_usage, justification, priority, status, deployment_progress,
	server_ip, deployment_notes, reviewed_by, review_note, reviewed_at, deployed_at,
	created_at, updated_at`

type RequestService struct {
	db DB
	tc temporalclient.Client
}

func NewRequestService(db DB, tc temporalclient.Client) *RequestService {
	return &RequestService{db: db, tc: tc}
}

func scanRequest(row interface{ Scan(...any) error }) (*model.ServerRequest, error) {
	var r model.ServerRequest
	err := row.Scan(&r.ID, &r.RequesterID, &r.ProjectID, &r.ClientName, &r.ServerName,
		&r.Subdomain, &r.ServerType, &r.EstimatedUsage, &r.Justification, &r.Priority,
		&r.Status, &r.DeploymentProgress, &r.ServerIP, &r.DeploymentNotes,
		&r.ReviewedBy, &r.ReviewNote, &r.ReviewedAt, &r.DeployedAt,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Submit records a new provisioning request in pending state. The hardware
// tier is resolved from the usage estimate here, at submission time, so
// the approver reviews the actual tier that will be created.
func (s *RequestService) Submit(ctx context.Context, req request.SubmitServerRequest) (*model.ServerRequest, error) {
	now := time.Now().UTC()
	r := &model.ServerRequest{
		ID:             platform.NewID(),
		RequesterID:    req.RequesterID,
		ClientName:     req.ClientName,
		ServerName:     platform.SanitizeLabel(req.ServerName),
		Subdomain:      req.Subdomain,
		ServerType:     model.TierForUsage(req.EstimatedUsage),
		EstimatedUsage: req.EstimatedUsage,
		Justification:  req.Justification,
		Priority:       req.Priority,
		Status:         model.RequestStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if r.Priority == "" {
		r.Priority = "normal"
	}
	// Sanitization can empty a name that was all punctuation or unicode.
	if r.ServerName == "" {
		r.ServerName = platform.NewName("srv-")
	}
	if r.Subdomain == "" {
		r.Subdomain = platform.SuggestSubdomain(r.ServerName)
	}
	if req.ProjectID != "" {
		r.ProjectID = &req.ProjectID
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO server_requests (id, requester_id, project_id, client_name, server_name, subdomain, server_type, estimated_usage, justification, priority, status, deployment_progress, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, $13)`,
		r.ID, r.RequesterID, r.ProjectID, r.ClientName, r.ServerName, r.Subdomain,
		r.ServerType, r.EstimatedUsage, r.Justification, r.Priority, r.Status,
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert server request: %w", err)
	}
	return r, nil
}

func (s *RequestService) GetByID(ctx context.Context, id string) (*model.ServerRequest, error) {
	r, err := scanRequest(s.db.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM server_requests WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get server request %s: %w", id, err)
	}
	return r, nil
}

func (s *RequestService) List(ctx context.Context, params request.ListParams) ([]model.ServerRequest, bool, error) {
	query := `SELECT ` + requestColumns + ` FROM server_requests`
	args := []any{}
	argIdx := 1
	var conds []string

	if params.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}
	if params.Search != "" {
		conds = append(conds, fmt.Sprintf("(client_name ILIKE $%d OR server_name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
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
		return nil, false, fmt.Errorf("list server requests: %w", err)
	}
	defer rows.Close()

	var requests []model.ServerRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan server request: %w", err)
		}
		requests = append(requests, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate server requests: %w", err)
	}

	hasMore := len(requests) > params.Limit
	if hasMore {
		requests = requests[:params.Limit]
	}
	return requests, hasMore, nil
}

// Approve moves a pending request to approved and starts the provisioning
// workflow. A request that already left pending state is rejected here, so
// two approvers racing each other cannot both trigger provisioning; the
// workflow ID guards the same invariant on the Temporal side.
func (s *RequestService) Approve(ctx context.Context, id string, review request.ReviewServerRequest) (*model.ServerRequest, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != model.RequestStatusPending {
		return nil, fmt.Errorf("request %s is %s, only pending requests can be approved", id, r.Status)
	}

	if r.ProjectID != nil {
		if err := s.checkQuota(ctx, *r.ProjectID); err != nil {
			return nil, err
		}
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE server_requests
		 SET status = $1, reviewed_by = $2, review_note = $3, reviewed_at = now(), updated_at = now()
		 WHERE id = $4 AND status = $5`,
		model.RequestStatusApproved, review.ReviewerID, review.Note, id, model.RequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("approve request %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("request %s was reviewed concurrently", id)
	}

	if err := s.notify(ctx, r.RequesterID, "Server request approved",
		fmt.Sprintf("Your request for %s has been approved. Provisioning is starting.", r.ServerName),
		model.SeveritySuccess, r.ID); err != nil {
		return nil, err
	}

	if err := startWorkflow(ctx, s.tc, "ProvisionRequestWorkflow",
		workflowID("provision-request", id), id); err != nil {
		return nil, fmt.Errorf("start ProvisionRequestWorkflow: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Reject moves a pending request to its terminal rejected state.
func (s *RequestService) Reject(ctx context.Context, id string, review request.ReviewServerRequest) (*model.ServerRequest, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != model.RequestStatusPending {
		return nil, fmt.Errorf("request %s is %s, only pending requests can be rejected", id, r.Status)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE server_requests
		 SET status = $1, reviewed_by = $2, review_note = $3, reviewed_at = now(), updated_at = now()
		 WHERE id = $4 AND status = $5`,
		model.RequestStatusRejected, review.ReviewerID, review.Note, id, model.RequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("reject request %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("request %s was reviewed concurrently", id)
	}

	msg := fmt.Sprintf("Your request for %s has been rejected.", r.ServerName)
	if review.Note != "" {
		msg = fmt.Sprintf("%s Reason: %s", msg, review.Note)
	}
	if err := s.notify(ctx, r.RequesterID, "Server request rejected", msg,
		model.SeverityWarning, r.ID); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func (s *RequestService) checkQuota(ctx context.Context, projectID string) error {
	var maxServers, count int
	err := s.db.QueryRow(ctx,
		`SELECT p.max_servers, (SELECT count(*) FROM servers WHERE project_id = p.id AND provider_id IS NOT NULL)
		 FROM projects p WHERE p.id = $1`, projectID,
	).Scan(&maxServers, &count)
	if err != nil {
		return fmt.Errorf("check quota for project %s: %w", projectID, err)
	}
	if maxServers > 0 && count >= maxServers {
		return fmt.Errorf("project %s is at its server limit (%d)", projectID, maxServers)
	}
	return nil
}

func (s *RequestService) notify(ctx context.Context, userID, title, message, severity, requestID string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO notifications (id, user_id, title, message, severity, request_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())`,
		platform.NewID(), userID, title, message, severity, requestID,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
