package model

import "time"

// Server is the local mirror of one remote machine. Provider-managed
// servers carry a ProviderID and are kept in sync by the reconciler;
// self-hosted servers (nil ProviderID) are identified by name and IP and
// only ever participate in remote execution.
type Server struct {
	ID string `json:"id"`

	// ProviderID is the cloud provider's numeric server ID, unique across
	// the whole system. Nil for self-hosted servers.
	ProviderID *int64 `json:"provider_id,omitempty"`

	Name       string `json:"name"`
	Status     string `json:"status"`
	ServerType string `json:"server_type,omitempty"`
	Image      string `json:"image,omitempty"`

	PublicIP   *string `json:"public_ip,omitempty"`
	PrivateIP  *string `json:"private_ip,omitempty"`
	IPv6       *string `json:"ipv6,omitempty"`
	ReverseDNS *string `json:"reverse_dns,omitempty"`

	Datacenter *string `json:"datacenter,omitempty"`
	Location   *string `json:"location,omitempty"`

	CPUCores int     `json:"cpu_cores"`
	MemoryGB float64 `json:"memory_gb"`
	DiskGB   int     `json:"disk_gb"`

	ProjectID *string `json:"project_id,omitempty"`

	LastSynced *time.Time `json:"last_synced,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SelfHosted reports whether this server is client-managed, i.e. not
// reconciled against any provider.
func (s *Server) SelfHosted() bool {
	return s.ProviderID == nil
}
