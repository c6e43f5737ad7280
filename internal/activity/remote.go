package activity

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tarek/provision/internal/creds"
	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/remote"
)

// Scripts executed on managed servers, one per operation kind. Backups
// land under /var/backups with a timestamped name so the newest artifact
// can be located afterwards.
const (
	backupScript = `#!/bin/bash
set -euo pipefail
mkdir -p /var/backups
file="/var/backups/db_$(date +%Y%m%d_%H%M%S).sql"
sudo -u postgres pg_dumpall > "$file"
echo "backup written to $file"
`
	updateScript = `#!/bin/bash
set -euo pipefail
export DEBIAN_FRONTEND=noninteractive
apt-get update
apt-get -y upgrade
echo "system update complete"
`
	deployScript = `#!/bin/bash
set -euo pipefail
cd /opt/app
git pull --ff-only
systemctl restart app
echo "deploy complete"
`
)

const backupArtifactPattern = "/var/backups/db_*.sql"

// Remote contains activities that execute commands on managed servers
// over SSH.
type Remote struct {
	db          DB
	resolver    *creds.Resolver
	artifactDir string
}

// NewRemote creates a new Remote activity struct.
func NewRemote(db DB, resolver *creds.Resolver, artifactDir string) *Remote {
	return &Remote{db: db, resolver: resolver, artifactDir: artifactDir}
}

// clientFor builds an SSH client for a server using its project's
// credentials.
func (a *Remote) clientFor(ctx context.Context, serverID string) (*remote.Client, error) {
	core := NewCoreDB(a.db)
	srv, err := core.GetServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if srv.PublicIP == nil || *srv.PublicIP == "" {
		return nil, fmt.Errorf("server %s has no public address", serverID)
	}

	c, err := a.resolver.Resolve(ctx, srv.ProjectID)
	if err != nil {
		return nil, err
	}
	if _, err := c.RequireSSHKey(); err != nil {
		return nil, err
	}

	return remote.NewClient(remote.Target{
		Host:       *srv.PublicIP,
		Port:       c.SSHPort,
		User:       c.SSHUser,
		PrivateKey: c.SSHPrivateKey,
		Passphrase: c.SSHPassphrase,
	}), nil
}

// TestConnection probes SSH reachability of a server. An unreachable host
// is an answer, not an activity failure.
func (a *Remote) TestConnection(ctx context.Context, serverID string) (model.ConnectionTestResult, error) {
	client, err := a.clientFor(ctx, serverID)
	if err != nil {
		return model.ConnectionTestResult{}, err
	}
	ok, msg := client.TestConnection(ctx)
	return model.ConnectionTestResult{Success: ok, Message: msg}, nil
}

// RunScriptParams holds the parameters for RunScript.
type RunScriptParams struct {
	ServerID string
	Kind     string
}

// RunScript executes the operation script for the given kind on the
// server and returns the full execution outcome, including timeouts.
func (a *Remote) RunScript(ctx context.Context, params RunScriptParams) (remote.Result, error) {
	var script string
	switch params.Kind {
	case model.OperationKindBackup:
		script = backupScript
	case model.OperationKindUpdate:
		script = updateScript
	case model.OperationKindDeploy:
		script = deployScript
	default:
		return remote.Result{}, fmt.Errorf("unknown operation kind %q", params.Kind)
	}

	client, err := a.clientFor(ctx, params.ServerID)
	if err != nil {
		return remote.Result{}, err
	}

	res, err := client.ExecuteScript(ctx, script, remote.ScriptTimeout)
	if err != nil {
		return remote.Result{}, fmt.Errorf("remote command failed: %w", err)
	}
	return res, nil
}

// FetchArtifactParams holds the parameters for FetchBackupArtifact.
type FetchArtifactParams struct {
	ServerID    string
	OperationID string
}

// FetchArtifactResult describes the downloaded backup artifact.
type FetchArtifactResult struct {
	Path string
	Size int64
}

// FetchBackupArtifact locates the newest backup file on the server and
// downloads it into the local artifact directory.
func (a *Remote) FetchBackupArtifact(ctx context.Context, params FetchArtifactParams) (FetchArtifactResult, error) {
	client, err := a.clientFor(ctx, params.ServerID)
	if err != nil {
		return FetchArtifactResult{}, err
	}

	remotePath, err := client.FindLatestFile(ctx, backupArtifactPattern)
	if err != nil {
		return FetchArtifactResult{}, fmt.Errorf("artifact transfer failed: %w", err)
	}
	if remotePath == "" {
		return FetchArtifactResult{}, fmt.Errorf("artifact transfer failed: no backup file found on server %s", params.ServerID)
	}

	localPath := filepath.Join(a.artifactDir, params.OperationID+"_"+filepath.Base(remotePath))
	size, err := client.DownloadFile(ctx, remotePath, localPath)
	if err != nil {
		return FetchArtifactResult{}, fmt.Errorf("artifact transfer failed: %w", err)
	}
	return FetchArtifactResult{Path: localPath, Size: size}, nil
}
