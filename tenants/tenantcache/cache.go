// Package tenantcache keeps store info lookups in memory for a while so the
// gateway does not ask the collaborator for the same store on every request.
package tenantcache

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-storefront/tenants"
	"golang.org/x/sync/singleflight"
)

var _ tenants.Repo = (*Cache)(nil)

const defaultTTL = 5 * time.Minute

type entry struct {
	tenant  *tenants.Tenant
	expires time.Time
}

// Cache is a tenants.Repo in front of another tenants.Repo. Failed lookups
// are not cached. Concurrent misses for one subdomain share a single lookup
// made with the first caller's context.
type Cache struct {
	source  tenants.Repo
	ttl     time.Duration
	nowFunc func() time.Time
	group   singleflight.Group

	entries map[string]entry
	mu      sync.RWMutex
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithNowFunc sets the clock (primarily for testing)
func WithNowFunc(now func() time.Time) Option {
	return func(c *Cache) {
		c.nowFunc = now
	}
}

func New(source tenants.Repo, options ...Option) *Cache {
	c := &Cache{
		source:  source,
		entries: make(map[string]entry),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.ttl <= 0 {
		c.ttl = defaultTTL
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}
	return c
}

func (c *Cache) Get(ctx context.Context, subdomain string) (*tenants.Tenant, error) {
	now := c.nowFunc()

	c.mu.RLock()
	cached, ok := c.entries[subdomain]
	c.mu.RUnlock()
	if ok && now.Before(cached.expires) {
		return cached.tenant, nil
	}

	v, err, _ := c.group.Do(subdomain, func() (any, error) {
		tenant, err := c.source.Get(ctx, subdomain)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.entries[subdomain] = entry{tenant: tenant, expires: now.Add(c.ttl)}
		return tenant, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*tenants.Tenant), nil
}

// Invalidate drops subdomain from the cache.
func (c *Cache) Invalidate(subdomain string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, subdomain)
}

// Cleanup removes expired entries.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowFunc()
	for subdomain, cached := range c.entries {
		if !now.Before(cached.expires) {
			delete(c.entries, subdomain)
		}
	}
}
