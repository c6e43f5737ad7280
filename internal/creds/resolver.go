package creds

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tarek/provision/internal/model"
)

// ErrConfiguration marks credential problems that are not retryable without
// admin action: inactive or missing projects, empty tokens, missing SSH keys.
// Callers surface these to the user instead of attempting the operation.
var ErrConfiguration = errors.New("configuration error")

// DB is the subset of pgx used by the resolver. *pgxpool.Pool satisfies it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Defaults are the process-wide fallback credentials from config.
type Defaults struct {
	CloudToken string
	SSHUser    string
	SSHPort    int
}

// Credentials is the resolved credential tuple for one project scope.
type Credentials struct {
	CloudToken    string
	SSHUser       string
	SSHPort       int
	SSHPrivateKey []byte
	SSHPassphrase string
}

// RequireCloudToken returns the cloud API token or a configuration error
// when none is available for this scope.
func (c *Credentials) RequireCloudToken() (string, error) {
	if c.CloudToken == "" {
		return "", fmt.Errorf("%w: no cloud API token configured", ErrConfiguration)
	}
	return c.CloudToken, nil
}

// RequireSSHKey returns the private key bytes or a configuration error.
// There is no password fallback: without a key, remote execution must not
// even attempt a connection.
func (c *Credentials) RequireSSHKey() ([]byte, error) {
	if len(c.SSHPrivateKey) == 0 {
		return nil, fmt.Errorf("%w: no SSH private key configured", ErrConfiguration)
	}
	return c.SSHPrivateKey, nil
}

// Resolver resolves per-project credentials, falling back to process-wide
// defaults. It carries no mutable state and is safe for concurrent use.
type Resolver struct {
	db       DB
	defaults Defaults
}

func NewResolver(db DB, defaults Defaults) *Resolver {
	return &Resolver{db: db, defaults: defaults}
}

// Resolve returns the credential tuple for the given project, or the
// process-wide defaults when projectID is nil. Inactive or missing projects
// resolve to a configuration error.
func (r *Resolver) Resolve(ctx context.Context, projectID *string) (*Credentials, error) {
	creds := &Credentials{
		CloudToken: r.defaults.CloudToken,
		SSHUser:    r.defaults.SSHUser,
		SSHPort:    r.defaults.SSHPort,
	}
	if projectID == nil {
		return creds, nil
	}

	var (
		token, sshUser, sshKey, sshPassphrase string
		sshPort                               int
		active                                bool
	)
	err := r.db.QueryRow(ctx,
		`SELECT hetzner_token, ssh_user, ssh_port, ssh_private_key, ssh_passphrase, active
		 FROM projects WHERE id = $1`, *projectID,
	).Scan(&token, &sshUser, &sshPort, &sshKey, &sshPassphrase, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: project %s not found", ErrConfiguration, *projectID)
		}
		return nil, fmt.Errorf("load project %s: %w", *projectID, err)
	}
	if !active {
		return nil, fmt.Errorf("%w: project %s is inactive", ErrConfiguration, *projectID)
	}

	if token != "" && token != model.DefaultCredentialSentinel {
		creds.CloudToken = token
	}
	if sshUser != "" {
		creds.SSHUser = sshUser
	}
	if sshPort != 0 {
		creds.SSHPort = sshPort
	}
	creds.SSHPrivateKey = []byte(sshKey)
	creds.SSHPassphrase = sshPassphrase

	return creds, nil
}
