package model

import "time"

// Operation is one immutable record of a remote execution attempt against
// a server (backup, system update or deployment). A retry creates a new
// record; completed records are never reopened.
type Operation struct {
	ID          string `json:"id"`
	ServerID    string `json:"server_id"`
	Kind        string `json:"kind"`
	InitiatorID string `json:"initiator_id"`

	Status string `json:"status"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	StdoutLog string `json:"stdout_log,omitempty"`
	ErrorLog  string `json:"error_log,omitempty"`

	// Backup artifact downloaded from the server, when the backup script
	// produced one and the transfer succeeded.
	ArtifactPath *string `json:"artifact_path,omitempty"`
	ArtifactSize *int64  `json:"artifact_size,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
