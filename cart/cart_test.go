package cart_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/cart"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/kv"
	"github.com/jrsteele09/go-storefront/kv/kvfake"
	"github.com/stretchr/testify/require"
)

const testTenant = "acme"

type testFixture struct {
	kv   *kvfake.FakeStore
	cart *cart.Store
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	store := kvfake.NewFakeStore()
	return &testFixture{kv: store, cart: cart.NewStore(store)}
}

func discounted() cart.Item {
	return cart.Item{ID: "p1", Title: "Go in Practice", Price: 10000, DiscountPrice: utils.Ptr[int64](8000), Type: api.ProductTypeEbook}
}

func TestStore_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("adding twice keeps one item", func(t *testing.T) {
		f := setupTestFixture(t)
		added, err := f.cart.AddItem(ctx, testTenant, discounted())
		require.NoError(t, err)
		require.True(t, added)

		added, err = f.cart.AddItem(ctx, testTenant, discounted())
		require.NoError(t, err)
		require.False(t, added)

		count, err := f.cart.Count(ctx, testTenant)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("stored as json under the tenant key", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.cart.AddItem(ctx, testTenant, discounted())
		require.NoError(t, err)

		raw, ok, err := f.kv.Get(ctx, kv.CartKey(testTenant))
		require.NoError(t, err)
		require.True(t, ok)
		require.JSONEq(t, `[{"id":"p1","title":"Go in Practice","price":10000,"discount_price":8000,"type":"ebook"}]`, raw)
	})

	t.Run("carts are per tenant", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.cart.AddItem(ctx, testTenant, discounted())
		require.NoError(t, err)

		items, err := f.cart.Items(ctx, "other")
		require.NoError(t, err)
		require.Empty(t, items)
	})

	t.Run("invalid item", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.cart.AddItem(ctx, testTenant, cart.Item{Title: "no id"})
		require.ErrorIs(t, err, sferrors.ErrInvalidItem)
	})

	t.Run("quota failure leaves the cart unchanged", func(t *testing.T) {
		store := kvfake.NewFakeStoreWithQuota(20)
		c := cart.NewStore(store)
		_, err := c.AddItem(ctx, testTenant, discounted())
		require.ErrorIs(t, err, sferrors.ErrQuotaExceeded)

		items, err := c.Items(ctx, testTenant)
		require.NoError(t, err)
		require.Empty(t, items)
	})
}

func TestStore_Totals(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	_, err := f.cart.AddItem(ctx, testTenant, discounted())
	require.NoError(t, err)

	total, err := f.cart.Total(ctx, testTenant)
	require.NoError(t, err)
	require.Equal(t, int64(8000), total)
	discount, err := f.cart.DiscountTotal(ctx, testTenant)
	require.NoError(t, err)
	require.Equal(t, int64(2000), discount)

	t.Run("zero discount price is kept", func(t *testing.T) {
		_, err := f.cart.AddItem(ctx, testTenant, cart.Item{ID: "free", Price: 5000, DiscountPrice: utils.Ptr[int64](0), Type: api.ProductTypeVideo})
		require.NoError(t, err)
		_, err = f.cart.AddItem(ctx, testTenant, cart.Item{ID: "full", Price: 3000, Type: api.ProductTypeVideo})
		require.NoError(t, err)

		summary, err := f.cart.Summary(ctx, testTenant)
		require.NoError(t, err)
		require.Equal(t, 3, summary.Count)
		require.Equal(t, int64(11000), summary.Total)
		require.Equal(t, int64(7000), summary.DiscountTotal)
	})
}

func TestStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	_, err := f.cart.AddItem(ctx, testTenant, discounted())
	require.NoError(t, err)

	t.Run("removing a missing item is a no-op", func(t *testing.T) {
		require.NoError(t, f.cart.RemoveItem(ctx, testTenant, "missing"))
		ok, err := f.cart.Contains(ctx, testTenant, "p1")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("removing the last item keeps an empty list", func(t *testing.T) {
		require.NoError(t, f.cart.RemoveItem(ctx, testTenant, "p1"))
		raw, ok, err := f.kv.Get(ctx, kv.CartKey(testTenant))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "[]", raw)
	})

	t.Run("clear deletes the key", func(t *testing.T) {
		require.NoError(t, f.cart.Clear(ctx, testTenant))
		_, ok, err := f.kv.Get(ctx, kv.CartKey(testTenant))
		require.NoError(t, err)
		require.False(t, ok)
		require.NoError(t, f.cart.Clear(ctx, testTenant))
	})
}

func TestStore_Corrupted(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	require.NoError(t, f.kv.Set(ctx, kv.CartKey(testTenant), "{not json"))

	_, err := f.cart.Items(ctx, testTenant)
	require.ErrorIs(t, err, sferrors.ErrStorageCorrupted)
	_, err = f.cart.AddItem(ctx, testTenant, discounted())
	require.ErrorIs(t, err, sferrors.ErrStorageCorrupted)

	require.NoError(t, f.cart.Clear(ctx, testTenant))
	items, err := f.cart.Items(ctx, testTenant)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestStore_Watch(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	var counts []int
	stop := f.cart.Watch(ctx, testTenant, func(count int) { counts = append(counts, count) })

	_, err := f.cart.AddItem(ctx, testTenant, discounted())
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, "other", discounted())
	require.NoError(t, err)
	require.NoError(t, f.cart.Clear(ctx, testTenant))

	stop()
	_, err = f.cart.AddItem(ctx, testTenant, discounted())
	require.NoError(t, err)

	require.Equal(t, []int{1, 0}, counts)
}

func TestStore_WatchEndsWithContext(t *testing.T) {
	f := setupTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	var counts []int
	stop := f.cart.Watch(ctx, testTenant, func(count int) { counts = append(counts, count) })
	defer stop()

	_, err := f.cart.AddItem(context.Background(), testTenant, discounted())
	require.NoError(t, err)

	cancel()
	require.NoError(t, f.cart.Clear(context.Background(), testTenant))

	require.Equal(t, []int{1}, counts)
}

func TestItemFromProduct(t *testing.T) {
	p := api.Product{
		ID: "p1", Title: "Go in Practice", Price: 10000, DiscountPrice: utils.Ptr[int64](8000),
		Thumbnail: utils.Ptr("/thumb.png"), Type: api.ProductTypeEbook, IsPublished: true,
	}
	item := cart.ItemFromProduct(p)
	require.Equal(t, "p1", item.ID)
	require.Equal(t, int64(8000), item.EffectivePrice())
	require.Equal(t, "/thumb.png", utils.Value(item.Thumbnail))
}
