package model

import "time"

// DefaultCredentialSentinel in a project's cloud token means "use the
// process-wide credential". Supports migrating many projects onto one
// shared token without rewriting rows.
const DefaultCredentialSentinel = "default"

// Project is an administrative scope owning a cloud credential, an SSH
// credential and a set of servers.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Cloud provider API token. Empty or DefaultCredentialSentinel falls
	// back to the process-wide token. Never serialized.
	HetznerToken string `json:"-"`

	SSHUser       string `json:"ssh_user,omitempty"`
	SSHPort       int    `json:"ssh_port,omitempty"`
	SSHPrivateKey string `json:"-"`
	SSHPassphrase string `json:"-"`

	// MaxServers caps how many provider-managed servers this project may
	// own. Zero means unlimited.
	MaxServers int `json:"max_servers"`

	// BaseDomain, when set, enables automatic DNS records for servers
	// provisioned in this project (subdomain.BaseDomain).
	BaseDomain string `json:"base_domain,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
