package activity

import (
	"context"
	"fmt"

	"github.com/tarek/provision/internal/creds"
	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/provider"
)

// Cloud contains activities that talk to the cloud provider API. Each
// call resolves the owning project's credential first, so one worker can
// serve many projects with different tokens.
type Cloud struct {
	resolver *creds.Resolver
	factory  provider.Factory
}

// NewCloud creates a new Cloud activity struct.
func NewCloud(resolver *creds.Resolver, factory provider.Factory) *Cloud {
	return &Cloud{resolver: resolver, factory: factory}
}

func (a *Cloud) client(ctx context.Context, projectID *string) (provider.Client, error) {
	c, err := a.resolver.Resolve(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := c.RequireCloudToken(); err != nil {
		return nil, err
	}
	return a.factory(c.CloudToken), nil
}

// CreateServerParams holds the parameters for CreateServer.
type CreateServerParams struct {
	ProjectID  *string
	Name       string
	ServerType string
	Image      string
	Location   string
	Labels     map[string]string
}

// CreateServer provisions a new machine and waits until the provider
// reports it ready.
func (a *Cloud) CreateServer(ctx context.Context, params CreateServerParams) (*provider.ServerInfo, error) {
	client, err := a.client(ctx, params.ProjectID)
	if err != nil {
		return nil, err
	}
	info, err := client.CreateServer(ctx, provider.CreateParams{
		Name:       params.Name,
		ServerType: params.ServerType,
		Image:      params.Image,
		Location:   params.Location,
		Labels:     params.Labels,
	})
	if err != nil {
		return nil, fmt.Errorf("create server %s: %w", params.Name, err)
	}
	return info, nil
}

// PowerActionParams holds the parameters for PowerAction.
type PowerActionParams struct {
	ProjectID  *string
	ProviderID int64
	Action     string
}

// PowerAction applies a power transition to a provider-managed server.
func (a *Cloud) PowerAction(ctx context.Context, params PowerActionParams) error {
	client, err := a.client(ctx, params.ProjectID)
	if err != nil {
		return err
	}

	switch params.Action {
	case model.PowerActionPowerOn:
		err = client.PowerOn(ctx, params.ProviderID)
	case model.PowerActionPowerOff:
		err = client.PowerOff(ctx, params.ProviderID)
	case model.PowerActionReboot:
		err = client.Reboot(ctx, params.ProviderID)
	default:
		return fmt.Errorf("unknown power action %q", params.Action)
	}
	if err != nil {
		return fmt.Errorf("power action %s on server %d: %w", params.Action, params.ProviderID, err)
	}
	return nil
}
