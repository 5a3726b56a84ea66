package sqlitekv_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/kv"
	"github.com/jrsteele09/go-storefront/kv/sqlitekv"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, quota int64) (*sqlitekv.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "storefront.db")
	store, err := sqlitekv.Open(path, quota)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store, path
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlitekv.Open("  ", 0)
	require.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t, 0)

	require.NoError(t, store.Set(ctx, kv.CartKey("acme"), `[{"id":"p1"}]`))
	require.NoError(t, store.Set(ctx, kv.CartKey("acme"), `[]`))

	value, ok, err := store.Get(ctx, kv.CartKey("acme"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[]`, value)

	require.NoError(t, store.Delete(ctx, kv.CartKey("acme")))
	_, ok, err = store.Get(ctx, kv.CartKey("acme"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storefront.db")

	first, err := sqlitekv.Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, kv.KeyCustomerToken, "tok"))
	require.NoError(t, first.Close())

	second, err := sqlitekv.Open(path, 0)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, second.Close())
	}()

	value, ok, err := second.Get(ctx, kv.KeyCustomerToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok", value)
}

func TestStore_Quota(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t, 12)

	require.NoError(t, store.Set(ctx, "a", "12345"))
	require.NoError(t, store.Set(ctx, "a", "1234567890"))
	require.ErrorIs(t, store.Set(ctx, "b", "1"), sferrors.ErrQuotaExceeded)

	value, _, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1234567890", value)
}

func TestStore_QuotaPerProfile(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t, 4096)
	browserA := kv.ForProfile(store, "browser-a")
	browserB := kv.ForProfile(store, "browser-b")

	require.NoError(t, browserA.Set(ctx, "big", strings.Repeat("x", 4000)))
	require.ErrorIs(t, browserA.Set(ctx, "more", strings.Repeat("x", 200)), sferrors.ErrQuotaExceeded)

	t.Run("other profiles keep their own quota", func(t *testing.T) {
		require.NoError(t, browserB.Set(ctx, kv.CartKey("acme"), strings.Repeat("y", 3000)))
	})

	t.Run("keys outside profiles are counted apart", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, kv.KeyCustomerToken, strings.Repeat("z", 3000)))
	})
}

func TestStore_KeysWithMultiByteProfile(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t, 0)
	reader := kv.ForProfile(store, "독자")

	require.NoError(t, reader.Set(ctx, kv.CartKey("acme"), "[]"))
	require.NoError(t, reader.Set(ctx, kv.KeyCustomerToken, "tok"))
	require.NoError(t, kv.ForProfile(store, "독").Set(ctx, kv.CartKey("acme"), "[]"))

	keys, err := reader.Keys(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{kv.CartKey("acme"), kv.KeyCustomerToken}, keys)

	keys, err = store.Keys(ctx, kv.ProfilePrefix("독자")+"cart_")
	require.NoError(t, err)
	require.Equal(t, []string{kv.ProfilePrefix("독자") + kv.CartKey("acme")}, keys)
}

func TestStore_KeysAndEvents(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t, 0)

	var events []kv.Event
	cancel := store.Subscribe(func(e kv.Event) { events = append(events, e) })
	defer cancel()

	require.NoError(t, store.Set(ctx, "cart_b", "[]"))
	require.NoError(t, store.Set(ctx, "cart_a", "[]"))
	require.NoError(t, store.Set(ctx, "customer_token", "t"))
	require.NoError(t, store.Delete(ctx, "missing"))

	keys, err := store.Keys(ctx, "cart_")
	require.NoError(t, err)
	require.Equal(t, []string{"cart_a", "cart_b"}, keys)

	require.Len(t, events, 3)
	require.Equal(t, kv.Event{Key: "cart_b"}, events[0])
}

func TestStore_NilSafe(t *testing.T) {
	var store *sqlitekv.Store
	_, _, err := store.Get(context.Background(), "a")
	require.Error(t, err)
	require.NoError(t, store.Close())
}
