package model

// ServerRequest workflow statuses. Deployed and rejected are terminal.
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusDeploying = "deploying"
	RequestStatusDeployed  = "deployed"
	RequestStatusFailed    = "failed"
)

// Server lifecycle statuses as reported by the cloud provider.
const (
	ServerStatusRunning    = "running"
	ServerStatusStopped    = "stopped"
	ServerStatusStarting   = "starting"
	ServerStatusStopping   = "stopping"
	ServerStatusRebooting  = "rebooting"
	ServerStatusRebuilding = "rebuilding"
	ServerStatusMigrating  = "migrating"
	ServerStatusUnknown    = "unknown"
)

// Operation record statuses. A record is closed exactly once.
const (
	OperationStatusRunning   = "running"
	OperationStatusCompleted = "completed"
	OperationStatusFailed    = "failed"
)

// Operation kinds.
// Power transitions accepted for provider-managed servers.
const (
	PowerActionPowerOn  = "poweron"
	PowerActionPowerOff = "poweroff"
	PowerActionReboot   = "reboot"
)

const (
	OperationKindBackup = "backup"
	OperationKindUpdate = "update"
	OperationKindDeploy = "deploy"
)

// Notification severities.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// IsTerminalRequestStatus reports whether a request status is sticky:
// no transition out of it is ever permitted.
func IsTerminalRequestStatus(status string) bool {
	return status == RequestStatusDeployed || status == RequestStatusRejected
}
