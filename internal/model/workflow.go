package model

// Inputs and results exchanged with Temporal workflows. These cross the
// wire as JSON, so they carry only plain data.

type PowerActionInput struct {
	ServerID string `json:"server_id"`
	Action   string `json:"action"` // poweron, poweroff, reboot
}

type ConnectionTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type OperationInput struct {
	OperationID string `json:"operation_id"`
	ServerID    string `json:"server_id"`
	Kind        string `json:"kind"`
}

// SyncResult summarizes one reconciliation pass over a project.
type SyncResult struct {
	ProjectID string `json:"project_id,omitempty"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Deleted   int    `json:"deleted"`
}

// SyncAllResult aggregates per-project reconciliation outcomes. Failed
// projects are reported by ID alongside the error text; one bad project
// does not abort the rest.
type SyncAllResult struct {
	Projects int               `json:"projects"`
	Created  int               `json:"created"`
	Updated  int               `json:"updated"`
	Deleted  int               `json:"deleted"`
	Failed   map[string]string `json:"failed,omitempty"`
}
