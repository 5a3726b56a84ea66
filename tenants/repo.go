package tenants

import "context"

// Repo looks up store information. Store info is read-only on the client.
type Repo interface {
	Get(ctx context.Context, subdomain string) (*Tenant, error)
}
