package activity

import (
	"context"
	"fmt"

	"github.com/tarek/provision/internal/dns"
)

const dnsRecordTTL = 600

// DNS contains activities that manage public DNS records for provisioned
// servers.
type DNS struct {
	client dns.Client
}

// NewDNS creates a new DNS activity struct.
func NewDNS(client dns.Client) *DNS {
	return &DNS{client: client}
}

// UpsertRecordParams holds the parameters for UpsertRecord.
type UpsertRecordParams struct {
	Domain    string
	Subdomain string
	IP        string
}

// UpsertRecord points subdomain.domain at the given address, replacing any
// existing A record.
func (a *DNS) UpsertRecord(ctx context.Context, params UpsertRecordParams) error {
	if err := a.client.UpsertRecord(ctx, params.Domain, params.Subdomain, params.IP, dnsRecordTTL); err != nil {
		return fmt.Errorf("upsert dns record %s.%s: %w", params.Subdomain, params.Domain, err)
	}
	return nil
}
