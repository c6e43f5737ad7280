package activity

import "github.com/tarek/provision/internal/provider"

// localServer is the slice of a servers row the planner needs: the match
// key plus the fields the provider can change behind our back.
type localServer struct {
	ID         string
	ProviderID int64
	Name       string
	Status     string
	PublicIP   *string
	IPv6       *string
	ReverseDNS *string
}

// syncPlan is the difference between the provider's listing and the local
// mirror. Self-hosted servers never appear here; the planner only ever
// sees provider-managed rows.
type syncPlan struct {
	creates []provider.ServerInfo
	updates map[string]provider.ServerInfo // local ID -> fresh state
	deletes []string                       // local IDs gone from the provider
}

// computeSyncPlan diffs local rows against the provider listing, matching
// on provider ID. A matched row is planned for update only when a tracked
// field actually differs, so an unchanged fleet plans zero updates and
// last_synced stays put.
func computeSyncPlan(local []localServer, listed []provider.ServerInfo) syncPlan {
	plan := syncPlan{updates: make(map[string]provider.ServerInfo)}

	byProviderID := make(map[int64]provider.ServerInfo, len(listed))
	for _, info := range listed {
		byProviderID[info.ID] = info
	}

	seen := make(map[int64]bool, len(local))
	for _, row := range local {
		seen[row.ProviderID] = true
		info, ok := byProviderID[row.ProviderID]
		switch {
		case !ok:
			plan.deletes = append(plan.deletes, row.ID)
		case serverDrifted(row, info):
			plan.updates[row.ID] = info
		}
	}

	for _, info := range listed {
		if !seen[info.ID] {
			plan.creates = append(plan.creates, info)
		}
	}

	return plan
}

// serverDrifted reports whether the provider's view differs from the local
// mirror in any tracked field.
func serverDrifted(row localServer, info provider.ServerInfo) bool {
	return row.Name != info.Name ||
		row.Status != info.Status ||
		!strPtrEqual(row.PublicIP, info.PublicIP) ||
		!strPtrEqual(row.IPv6, info.IPv6) ||
		!strPtrEqual(row.ReverseDNS, info.ReverseDNS)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
