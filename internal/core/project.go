package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tarek/provision/internal/api/request"
	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/platform"
)

type ProjectService struct {
	db DB
}

func NewProjectService(db DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) Create(ctx context.Context, req request.CreateProject) (*model.Project, error) {
	now := time.Now().UTC()
	p := &model.Project{
		ID:            platform.NewID(),
		Name:          req.Name,
		HetznerToken:  req.HetznerToken,
		SSHUser:       req.SSHUser,
		SSHPort:       req.SSHPort,
		SSHPrivateKey: req.SSHPrivateKey,
		SSHPassphrase: req.SSHPassphrase,
		MaxServers:    req.MaxServers,
		BaseDomain:    req.BaseDomain,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.SSHPort == 0 {
		p.SSHPort = 22
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO projects (id, name, hetzner_token, ssh_user, ssh_port, ssh_private_key, ssh_passphrase, max_servers, base_domain, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Name, p.HetznerToken, p.SSHUser, p.SSHPort, p.SSHPrivateKey, p.SSHPassphrase,
		p.MaxServers, p.BaseDomain, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	err := s.db.QueryRow(ctx,
		`SELECT id, name, ssh_user, ssh_port, max_servers, base_domain, active, created_at, updated_at
		 FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.SSHUser, &p.SSHPort, &p.MaxServers, &p.BaseDomain,
		&p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return &p, nil
}

func (s *ProjectService) List(ctx context.Context, params request.ListParams) ([]model.Project, bool, error) {
	query := `SELECT id, name, ssh_user, ssh_port, max_servers, base_domain, active, created_at, updated_at FROM projects`
	args := []any{}
	argIdx := 1
	where := ""

	if params.Search != "" {
		where = fmt.Sprintf(` WHERE name ILIKE $%d`, argIdx)
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Cursor != "" {
		if where == "" {
			where = fmt.Sprintf(` WHERE id > $%d`, argIdx)
		} else {
			where += fmt.Sprintf(` AND id > $%d`, argIdx)
		}
		args = append(args, params.Cursor)
		argIdx++
	}

	query += where + ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, params.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.SSHUser, &p.SSHPort, &p.MaxServers,
			&p.BaseDomain, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate projects: %w", err)
	}

	hasMore := len(projects) > params.Limit
	if hasMore {
		projects = projects[:params.Limit]
	}
	return projects, hasMore, nil
}

func (s *ProjectService) Update(ctx context.Context, id string, req request.UpdateProject) (*model.Project, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	argIdx := 1

	set := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if req.HetznerToken != nil {
		set("hetzner_token", *req.HetznerToken)
	}
	if req.SSHUser != nil {
		set("ssh_user", *req.SSHUser)
	}
	if req.SSHPort != nil {
		set("ssh_port", *req.SSHPort)
	}
	if req.SSHPrivateKey != nil {
		set("ssh_private_key", *req.SSHPrivateKey)
	}
	if req.SSHPassphrase != nil {
		set("ssh_passphrase", *req.SSHPassphrase)
	}
	if req.MaxServers != nil {
		set("max_servers", *req.MaxServers)
	}
	if req.BaseDomain != nil {
		set("base_domain", *req.BaseDomain)
	}
	if req.Active != nil {
		set("active", *req.Active)
	}

	query := "UPDATE projects SET " + strings.Join(sets, ", ") + fmt.Sprintf(" WHERE id = $%d", argIdx)
	args = append(args, id)

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("project %s not found", id)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a project that no longer tracks any servers. Projects with
// live server rows must be emptied (or synced away) first; a delete never
// cascades into the server mirror.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM servers WHERE project_id = $1`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("count project servers: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("project %s still tracks %d servers", id, count)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s not found", id)
	}
	return nil
}
