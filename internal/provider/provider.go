// Package provider wraps the cloud provider API behind a small client
// interface so that activities and the reconciler never see SDK types.
package provider

import (
	"context"
	"errors"

	"github.com/tarek/provision/internal/model"
)

// ErrProvider marks failures reported by the cloud provider API. The
// provisioning pipeline surfaces these verbatim and aborts.
var ErrProvider = errors.New("provider error")

// ProjectLabel is the server label carrying the owning project ID. The
// reconciler uses it to scope listings when several projects share one
// credential.
const ProjectLabel = "project"

// ServerInfo is the provider-neutral view of one remote machine.
type ServerInfo struct {
	ID         int64
	Name       string
	Status     string
	ServerType string
	Image      string

	PublicIP   *string
	PrivateIP  *string
	IPv6       *string
	ReverseDNS *string

	Datacenter *string
	Location   *string

	Cores    int
	MemoryGB float64
	DiskGB   int

	Labels map[string]string
}

// CreateParams describe the machine to create.
type CreateParams struct {
	Name       string
	ServerType string
	Image      string
	Location   string
	Labels     map[string]string
}

// Client is one authenticated session against the provider API. A client
// is bound to a single credential; the reconciler resolves one per project.
type Client interface {
	ListServers(ctx context.Context) ([]ServerInfo, error)
	CreateServer(ctx context.Context, params CreateParams) (*ServerInfo, error)
	DeleteServer(ctx context.Context, id int64) error
	PowerOn(ctx context.Context, id int64) error
	PowerOff(ctx context.Context, id int64) error
	Reboot(ctx context.Context, id int64) error

	ListImages(ctx context.Context) ([]model.ImageInfo, error)
	ListServerTypes(ctx context.Context) ([]model.ServerTypeInfo, error)
	ListLocations(ctx context.Context) ([]model.LocationInfo, error)
}

// Factory builds a Client for one resolved API token.
type Factory func(token string) Client
