package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarek/provision/internal/creds"
	"github.com/tarek/provision/internal/model"
	"github.com/tarek/provision/internal/provider"
)

type stubCatalogClient struct {
	provider.Client
	images []model.ImageInfo
}

func (s *stubCatalogClient) ListImages(ctx context.Context) ([]model.ImageInfo, error) {
	return s.images, nil
}

func TestCatalogImages(t *testing.T) {
	resolver := creds.NewResolver(nil, creds.Defaults{CloudToken: "tok-1"})

	var gotToken string
	svc := NewCatalogService(resolver, func(token string) provider.Client {
		gotToken = token
		return &stubCatalogClient{images: []model.ImageInfo{{Name: "ubuntu-24.04"}}}
	})

	images, err := svc.Images(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "ubuntu-24.04", images[0].Name)
	assert.Equal(t, "tok-1", gotToken)
}

func TestCatalogImages_NoToken(t *testing.T) {
	resolver := creds.NewResolver(nil, creds.Defaults{})

	factoryCalled := false
	svc := NewCatalogService(resolver, func(token string) provider.Client {
		factoryCalled = true
		return nil
	})

	_, err := svc.Images(context.Background(), nil)
	require.ErrorIs(t, err, creds.ErrConfiguration)
	assert.False(t, factoryCalled)
}
