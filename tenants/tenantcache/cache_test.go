package tenantcache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront/tenants"
	"github.com/jrsteele09/go-storefront/tenants/tenantcache"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	calls int
	err   error
}

func (r *countingRepo) Get(_ context.Context, subdomain string) (*tenants.Tenant, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &tenants.Tenant{Subdomain: subdomain, StoreName: "Store " + subdomain}, nil
}

func TestCache_Get(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	source := &countingRepo{}
	cache := tenantcache.New(source,
		tenantcache.WithTTL(time.Minute),
		tenantcache.WithNowFunc(func() time.Time { return now }),
	)

	t.Run("second lookup is served from cache", func(t *testing.T) {
		first, err := cache.Get(ctx, "acme")
		require.NoError(t, err)
		second, err := cache.Get(ctx, "acme")
		require.NoError(t, err)
		require.Same(t, first, second)
		require.Equal(t, 1, source.calls)
	})

	t.Run("expired entries are refetched", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		_, err := cache.Get(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, 2, source.calls)
	})

	t.Run("invalidate forces a refetch", func(t *testing.T) {
		cache.Invalidate("acme")
		_, err := cache.Get(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, 3, source.calls)
	})
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	source := &countingRepo{err: errors.New("down")}
	cache := tenantcache.New(source)

	_, err := cache.Get(ctx, "acme")
	require.Error(t, err)

	source.err = nil
	tenant, err := cache.Get(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, "acme", tenant.Subdomain)
	require.Equal(t, 2, source.calls)
}
