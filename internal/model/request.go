package model

import "time"

// ServerRequest is a staff request for a new server. Its status drives the
// provisioning pipeline; progress and IP are the polled source of truth
// while the pipeline runs.
type ServerRequest struct {
	ID          string  `json:"id"`
	RequesterID string  `json:"requester_id"`
	ProjectID   *string `json:"project_id,omitempty"`

	ClientName string `json:"client_name"`
	ServerName string `json:"server_name"`
	Subdomain  string `json:"subdomain,omitempty"`

	// ServerType is the hardware tier derived from EstimatedUsage at
	// submission time.
	ServerType     string `json:"server_type"`
	EstimatedUsage string `json:"estimated_usage"`

	Justification string `json:"justification,omitempty"`
	Priority      string `json:"priority"`

	Status string `json:"status"`

	// DeploymentProgress is 0-100 and never decreases for a request.
	DeploymentProgress int `json:"deployment_progress"`

	ServerIP        *string `json:"server_ip,omitempty"`
	DeploymentNotes *string `json:"deployment_notes,omitempty"`

	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewNote *string    `json:"review_note,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	DeployedAt *time.Time `json:"deployed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Estimated usage classes offered on the request form.
const (
	UsageMicro  = "micro" // < 50 users
	UsageLow    = "low"
	UsageMedium = "medium"
	UsageHigh   = "high"
)

// TierForUsage maps a coarse usage estimate to a provider server type.
// Unknown estimates get the smallest paid tier rather than an error; the
// approver sees the resolved tier before the machine is created.
func TierForUsage(usage string) string {
	switch usage {
	case UsageMicro:
		return "cx11" // 1 core, 2 GB RAM, 20 GB disk
	case UsageLow:
		return "cx21" // 2 cores, 4 GB RAM, 40 GB disk
	case UsageMedium:
		return "cx31" // 2 cores, 8 GB RAM, 80 GB disk
	case UsageHigh:
		return "cx41" // 4 cores, 16 GB RAM, 160 GB disk
	default:
		return "cx21"
	}
}
