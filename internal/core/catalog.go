package core

import (
	"context"
	"fmt"

	"github.com/tarek/provision/internal/creds"
	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/provider"
)

// CatalogService serves provider catalogs (images, server types,
// locations) for request forms. Reads go straight to the provider rather
// than through a workflow: they mutate nothing and the caller wants the
// answer inline.
type CatalogService struct {
	resolver *creds.Resolver
	factory  provider.Factory
}

func NewCatalogService(resolver *creds.Resolver, factory provider.Factory) *CatalogService {
	return &CatalogService{resolver: resolver, factory: factory}
}

func (s *CatalogService) client(ctx context.Context, projectID *string) (provider.Client, error) {
	c, err := s.resolver.Resolve(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := c.RequireCloudToken(); err != nil {
		return nil, err
	}
	return s.factory(c.CloudToken), nil
}

func (s *CatalogService) Images(ctx context.Context, projectID *string) ([]model.ImageInfo, error) {
	client, err := s.client(ctx, projectID)
	if err != nil {
		return nil, err
	}
	images, err := client.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

func (s *CatalogService) ServerTypes(ctx context.Context, projectID *string) ([]model.ServerTypeInfo, error) {
	client, err := s.client(ctx, projectID)
	if err != nil {
		return nil, err
	}
	types, err := client.ListServerTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list server types: %w", err)
	}
	return types, nil
}

func (s *CatalogService) Locations(ctx context.Context, projectID *string) ([]model.LocationInfo, error) {
	client, err := s.client(ctx, projectID)
	if err != nil {
		return nil, err
	}
	locations, err := client.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}
