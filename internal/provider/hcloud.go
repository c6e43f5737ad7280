package provider

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/tarek/provision/internal/model"
)

// HCloud implements Client against the Hetzner Cloud API.
type HCloud struct {
	client *hcloud.Client
}

// NewHCloud builds a Hetzner client for one API token.
func NewHCloud(token string) Client {
	return &HCloud{client: hcloud.NewClient(hcloud.WithToken(token))}
}

func (h *HCloud) ListServers(ctx context.Context) ([]ServerInfo, error) {
	servers, err := h.client.Server.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list servers: %v", ErrProvider, err)
	}

	infos := make([]ServerInfo, 0, len(servers))
	for _, s := range servers {
		infos = append(infos, serverInfoFromHCloud(s))
	}
	return infos, nil
}

func (h *HCloud) CreateServer(ctx context.Context, params CreateParams) (*ServerInfo, error) {
	result, _, err := h.client.Server.Create(ctx, hcloud.ServerCreateOpts{
		Name:       params.Name,
		ServerType: &hcloud.ServerType{Name: params.ServerType},
		Image:      &hcloud.Image{Name: params.Image},
		Location:   &hcloud.Location{Name: params.Location},
		Labels:     params.Labels,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create server %s: %v", ErrProvider, params.Name, err)
	}

	// Wait for the create action so the returned record carries the
	// assigned network addresses.
	if result.Action != nil {
		if err := h.client.Action.WaitFor(ctx, result.Action); err != nil {
			return nil, fmt.Errorf("%w: wait for server %s: %v", ErrProvider, params.Name, err)
		}
	}

	created, _, err := h.client.Server.GetByID(ctx, result.Server.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: refetch server %d: %v", ErrProvider, result.Server.ID, err)
	}
	if created == nil {
		created = result.Server
	}

	info := serverInfoFromHCloud(created)
	return &info, nil
}

func (h *HCloud) DeleteServer(ctx context.Context, id int64) error {
	server, err := h.getByID(ctx, id)
	if err != nil {
		return err
	}
	if _, _, err := h.client.Server.DeleteWithResult(ctx, server); err != nil {
		return fmt.Errorf("%w: delete server %d: %v", ErrProvider, id, err)
	}
	return nil
}

func (h *HCloud) PowerOn(ctx context.Context, id int64) error {
	server, err := h.getByID(ctx, id)
	if err != nil {
		return err
	}
	if _, _, err := h.client.Server.Poweron(ctx, server); err != nil {
		return fmt.Errorf("%w: power on server %d: %v", ErrProvider, id, err)
	}
	return nil
}

func (h *HCloud) PowerOff(ctx context.Context, id int64) error {
	server, err := h.getByID(ctx, id)
	if err != nil {
		return err
	}
	if _, _, err := h.client.Server.Poweroff(ctx, server); err != nil {
		return fmt.Errorf("%w: power off server %d: %v", ErrProvider, id, err)
	}
	return nil
}

func (h *HCloud) Reboot(ctx context.Context, id int64) error {
	server, err := h.getByID(ctx, id)
	if err != nil {
		return err
	}
	if _, _, err := h.client.Server.Reboot(ctx, server); err != nil {
		return fmt.Errorf("%w: reboot server %d: %v", ErrProvider, id, err)
	}
	return nil
}

func (h *HCloud) ListImages(ctx context.Context) ([]model.ImageInfo, error) {
	images, err := h.client.Image.AllWithOpts(ctx, hcloud.ImageListOpts{
		Type: []hcloud.ImageType{hcloud.ImageTypeSystem},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list images: %v", ErrProvider, err)
	}

	infos := make([]model.ImageInfo, 0, len(images))
	for _, img := range images {
		infos = append(infos, model.ImageInfo{
			ID:          img.ID,
			Name:        img.Name,
			Description: img.Description,
			OSFlavor:    img.OSFlavor,
			OSVersion:   img.OSVersion,
		})
	}
	return infos, nil
}

func (h *HCloud) ListServerTypes(ctx context.Context) ([]model.ServerTypeInfo, error) {
	types, err := h.client.ServerType.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list server types: %v", ErrProvider, err)
	}

	infos := make([]model.ServerTypeInfo, 0, len(types))
	for _, st := range types {
		infos = append(infos, model.ServerTypeInfo{
			ID:       st.ID,
			Name:     st.Name,
			Cores:    st.Cores,
			MemoryGB: float64(st.Memory),
			DiskGB:   st.Disk,
		})
	}
	return infos, nil
}

func (h *HCloud) ListLocations(ctx context.Context) ([]model.LocationInfo, error) {
	locations, err := h.client.Location.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list locations: %v", ErrProvider, err)
	}

	infos := make([]model.LocationInfo, 0, len(locations))
	for _, loc := range locations {
		infos = append(infos, model.LocationInfo{
			ID:      loc.ID,
			Name:    loc.Name,
			City:    loc.City,
			Country: loc.Country,
		})
	}
	return infos, nil
}

func (h *HCloud) getByID(ctx context.Context, id int64) (*hcloud.Server, error) {
	server, _, err := h.client.Server.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get server %d: %v", ErrProvider, id, err)
	}
	if server == nil {
		return nil, fmt.Errorf("%w: server %d not found", ErrProvider, id)
	}
	return server, nil
}

func serverInfoFromHCloud(s *hcloud.Server) ServerInfo {
	info := ServerInfo{
		ID:     s.ID,
		Name:   s.Name,
		Status: NormalizeStatus(string(s.Status)),
		Labels: s.Labels,
	}

	if s.ServerType != nil {
		info.ServerType = s.ServerType.Name
		info.Cores = s.ServerType.Cores
		info.MemoryGB = float64(s.ServerType.Memory)
		info.DiskGB = s.ServerType.Disk
	}
	if s.Image != nil {
		info.Image = s.Image.Name
	}

	if !s.PublicNet.IPv4.IsUnspecified() && s.PublicNet.IPv4.IP != nil {
		ip := s.PublicNet.IPv4.IP.String()
		info.PublicIP = &ip
	}
	if !s.PublicNet.IPv6.IsUnspecified() && s.PublicNet.IPv6.IP != nil {
		ip := s.PublicNet.IPv6.IP.String()
		info.IPv6 = &ip
	}
	if len(s.PrivateNet) > 0 && s.PrivateNet[0].IP != nil {
		ip := s.PrivateNet[0].IP.String()
		info.PrivateIP = &ip
	}

	// Reverse DNS may come back on the IPv4 record, on any IPv6 PTR
	// entry, or not at all.
	candidates := []string{s.PublicNet.IPv4.DNSPtr}
	for _, ptr := range s.PublicNet.IPv6.DNSPtr {
		candidates = append(candidates, ptr)
	}
	info.ReverseDNS = NormalizeDNSPtr(candidates...)

	if s.Datacenter != nil {
		dc := s.Datacenter.Name
		info.Datacenter = &dc
		if s.Datacenter.Location != nil {
			loc := s.Datacenter.Location.Name
			info.Location = &loc
		}
	}

	return info
}
