// Package dns manages DNS records through the GoDaddy API.
package dns

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no API credentials are present. The
// provisioning pipeline logs it and carries on; a missing name never fails
// a deployed server.
var ErrNotConfigured = errors.New("dns: API credentials not configured")

// Client is the record management surface the orchestrator depends on.
type Client interface {
	UpsertRecord(ctx context.Context, domain, subdomain, ip string, ttl int) error
	DeleteRecord(ctx context.Context, domain, subdomain string) error
}

// GoDaddy implements Client against the GoDaddy domains API.
type GoDaddy struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

func NewGoDaddy(apiKey, apiSecret, baseURL string) *GoDaddy {
	return &GoDaddy{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type record struct {
	Data string `json:"data"`
	TTL  int    `json:"ttl"`
}

// UpsertRecord creates or replaces the A record subdomain.domain -> ip.
// PUT on the named record replaces any existing value, so create and
// update collapse into one call.
func (g *GoDaddy) UpsertRecord(ctx context.Context, domain, subdomain, ip string, ttl int) error {
	if g.apiKey == "" || g.apiSecret == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal([]record{{Data: ip, TTL: ttl}})
	if err != nil {
		return fmt.Errorf("marshal dns record: %w", err)
	}

	url := fmt.Sprintf("%s/domains/%s/records/A/%s", g.baseURL, domain, subdomain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create dns request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("upsert A record %s.%s: %w", subdomain, domain, err)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upsert A record %s.%s: godaddy returned %d: %s",
			subdomain, domain, resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

// DeleteRecord removes the A record for subdomain.domain. A 404 is treated
// as success: the record is gone either way.
func (g *GoDaddy) DeleteRecord(ctx context.Context, domain, subdomain string) error {
	if g.apiKey == "" || g.apiSecret == "" {
		return ErrNotConfigured
	}

	url := fmt.Sprintf("%s/domains/%s/records/A/%s", g.baseURL, domain, subdomain)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create dns request: %w", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete A record %s.%s: %w", subdomain, domain, err)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delete A record %s.%s: godaddy returned %d: %s",
			subdomain, domain, resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

func (g *GoDaddy) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("sso-key %s:%s", g.apiKey, g.apiSecret))
	req.Header.Set("Content-Type", "application/json")
}

func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(b))
}
