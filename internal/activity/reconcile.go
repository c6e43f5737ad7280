package activity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/tarek/provision/internal/creds"
	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/platform"
	"github.com/tarek/provision/internal/provider"
)

// TxDB adds transaction support to DB. *pgxpool.Pool satisfies this
// interface.
type TxDB interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Reconcile contains the activity that aligns the local server mirror
// with the provider's actual fleet.
type Reconcile struct {
	db       TxDB
	resolver *creds.Resolver
	factory  provider.Factory
}

// NewReconcile creates a new Reconcile activity struct.
func NewReconcile(db TxDB, resolver *creds.Resolver, factory provider.Factory) *Reconcile {
	return &Reconcile{db: db, resolver: resolver, factory: factory}
}

// SyncProject reconciles one project's provider-managed servers. All
// writes happen in a single transaction: a half-applied pass is never
// visible. Servers the provider no longer lists are removed locally, new
// ones are adopted, known ones are refreshed only when a tracked field
// drifted.
func (a *Reconcile) SyncProject(ctx context.Context, projectID string) (model.SyncResult, error) {
	result := model.SyncResult{ProjectID: projectID}

	c, err := a.resolver.Resolve(ctx, &projectID)
	if err != nil {
		return result, err
	}
	if _, err := c.RequireCloudToken(); err != nil {
		return result, err
	}

	listed, err := a.factory(c.CloudToken).ListServers(ctx)
	if err != nil {
		return result, fmt.Errorf("list provider servers: %w", err)
	}
	listed = filterByProjectLabel(listed, projectID)

	local, err := a.localServers(ctx, projectID)
	if err != nil {
		return result, err
	}

	// An empty listing against a populated mirror is far more likely an
	// API hiccup than a fleet that vanished. Abort instead of deleting
	// everything.
	if len(listed) == 0 && len(local) > 0 {
		return result, fmt.Errorf("provider listed zero servers for project %s with %d known locally, refusing to reconcile", projectID, len(local))
	}

	plan := computeSyncPlan(local, listed)

	tx, err := a.db.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin sync transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, info := range plan.creates {
		if err := insertSyncedServer(ctx, tx, projectID, info); err != nil {
			return result, err
		}
		result.Created++
	}
	for localID, info := range plan.updates {
		if err := updateSyncedServer(ctx, tx, localID, info); err != nil {
			return result, err
		}
		result.Updated++
	}
	for _, localID := range plan.deletes {
		if _, err := tx.Exec(ctx, `DELETE FROM servers WHERE id = $1`, localID); err != nil {
			return result, fmt.Errorf("delete vanished server %s: %w", localID, err)
		}
		result.Deleted++
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit sync transaction: %w", err)
	}

	log.Info().Str("project_id", projectID).
		Int("created", result.Created).Int("updated", result.Updated).Int("deleted", result.Deleted).
		Msg("project reconciled")
	return result, nil
}

func (a *Reconcile) localServers(ctx context.Context, projectID string) ([]localServer, error) {
	rows, err := a.db.Query(ctx,
		`SELECT id, provider_id, name, status, public_ip, ipv6, reverse_dns FROM servers
		 WHERE project_id = $1 AND provider_id IS NOT NULL`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list local servers: %w", err)
	}
	defer rows.Close()

	var out []localServer
	for rows.Next() {
		var row localServer
		if err := rows.Scan(&row.ID, &row.ProviderID, &row.Name, &row.Status, &row.PublicIP, &row.IPv6, &row.ReverseDNS); err != nil {
			return nil, fmt.Errorf("scan local server: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate local servers: %w", err)
	}
	return out, nil
}

// filterByProjectLabel keeps only servers tagged for the project. Shared
// tokens see every project's machines in one listing; the label keeps the
// passes from claiming each other's servers.
func filterByProjectLabel(listed []provider.ServerInfo, projectID string) []provider.ServerInfo {
	out := listed[:0:0]
	for _, info := range listed {
		if info.Labels[provider.ProjectLabel] == projectID {
			out = append(out, info)
		}
	}
	return out
}

func insertSyncedServer(ctx context.Context, tx pgx.Tx, projectID string, info provider.ServerInfo) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO servers (id, provider_id, project_id, name, status, server_type, image,
		        public_ip, private_ip, ipv6, reverse_dns, datacenter, location,
		        cpu_cores, memory_gb, disk_gb, last_synced, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now(), now())`,
		platform.NewID(), info.ID, projectID, info.Name, info.Status, info.ServerType, info.Image,
		info.PublicIP, info.PrivateIP, info.IPv6, info.ReverseDNS, info.Datacenter, info.Location,
		info.Cores, info.MemoryGB, info.DiskGB)
	if err != nil {
		return fmt.Errorf("adopt server %d: %w", info.ID, err)
	}
	return nil
}

func updateSyncedServer(ctx context.Context, tx pgx.Tx, localID string, info provider.ServerInfo) error {
	_, err := tx.Exec(ctx,
		`UPDATE servers
		 SET name = $1, status = $2, server_type = $3, image = $4,
		     public_ip = $5, private_ip = $6, ipv6 = $7, reverse_dns = $8,
		     datacenter = $9, location = $10, cpu_cores = $11, memory_gb = $12, disk_gb = $13,
		     last_synced = now(), updated_at = now()
		 WHERE id = $14`,
		info.Name, info.Status, info.ServerType, info.Image,
		info.PublicIP, info.PrivateIP, info.IPv6, info.ReverseDNS,
		info.Datacenter, info.Location, info.Cores, info.MemoryGB, info.DiskGB,
		localID)
	if err != nil {
		return fmt.Errorf("refresh server %s: %w", localID, err)
	}
	return nil
}
