package sessions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/backendfake"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/kv"
	"github.com/jrsteele09/go-storefront/kv/kvfake"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/validation"
	"github.com/stretchr/testify/require"
)

const (
	testTenant   = "acme"
	testEmail    = "reader@example.com"
	testPassword = "secret123"
	ownerEmail   = "owner@example.com"
)

type testFixture struct {
	backend  *backendfake.Backend
	client   *api.Client
	kv       *kvfake.FakeStore
	sessions *sessions.Store
	customer *api.Customer
	now      time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend := backendfake.New()
	srv := backend.Serve()
	t.Cleanup(srv.Close)

	_, err := backend.AddInstructor(ownerEmail, testPassword, testTenant, "ACME Academy")
	require.NoError(t, err)
	customer, err := backend.AddCustomer(testTenant, testEmail, testPassword, "Reader")
	require.NoError(t, err)

	f := &testFixture{
		backend:  backend,
		client:   api.New(srv.URL),
		kv:       kvfake.NewFakeStore(),
		customer: customer,
		now:      time.Now(),
	}
	f.sessions = sessions.NewStore(f.kv, f.client, sessions.WithNowFunc(func() time.Time { return f.now }))
	return f
}

func (f *testFixture) login(t *testing.T) *sessions.Session {
	t.Helper()
	session, err := f.sessions.Login(context.Background(), testTenant, api.Credentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	return session
}

func (f *testFixture) value(t *testing.T, key string) (string, bool) {
	t.Helper()
	value, ok, err := f.kv.Get(context.Background(), key)
	require.NoError(t, err)
	return value, ok
}

func TestStore_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("session is bound to the tenant", func(t *testing.T) {
		f := setupTestFixture(t)
		session := f.login(t)
		require.Equal(t, testTenant, session.Tenant)

		current, err := f.sessions.Current(ctx, testTenant)
		require.NoError(t, err)
		require.Equal(t, session, current)

		other, err := f.sessions.Current(ctx, "other")
		require.NoError(t, err)
		require.Nil(t, other)

		token, _ := f.value(t, kv.KeyCustomerToken)
		require.Equal(t, session.Token, token)
		tenant, _ := f.value(t, kv.KeyCustomerSubdomain)
		require.Equal(t, testTenant, tenant)
	})

	t.Run("rejected credentials store nothing", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.sessions.Login(ctx, testTenant, api.Credentials{Email: testEmail, Password: "wrong"})
		require.True(t, sferrors.IsAuth(err))

		_, ok := f.value(t, kv.KeyCustomerToken)
		require.False(t, ok)
	})

	t.Run("missing fields never reach the backend", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.sessions.Login(ctx, testTenant, api.Credentials{Email: testEmail})
		require.True(t, sferrors.IsValidation(err))
		require.Empty(t, f.backend.Calls())
	})

	t.Run("half saved login leaves no session", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.backend.AddInstructor("other-owner@example.com", testPassword, "other", "Other Academy")
		require.NoError(t, err)
		_, err = f.backend.AddCustomer("other", testEmail, testPassword, "Reader")
		require.NoError(t, err)

		// Room for the other store's token but not for its tenant.
		unlimited := sessions.NewStore(kvfake.NewFakeStore(), f.client)
		otherSession, err := unlimited.Login(ctx, "other", api.Credentials{Email: testEmail, Password: testPassword})
		require.NoError(t, err)
		quota := kv.EntrySize(kv.KeyCustomerToken, otherSession.Token) + kv.EntrySize(kv.KeyCustomerSubdomain, "other") - 1

		limited := kvfake.NewFakeStoreWithQuota(quota)
		store := sessions.NewStore(limited, f.client)
		_, err = store.Login(ctx, testTenant, api.Credentials{Email: testEmail, Password: testPassword})
		require.NoError(t, err)

		_, err = store.Login(ctx, "other", api.Credentials{Email: testEmail, Password: testPassword})
		require.ErrorIs(t, err, sferrors.ErrQuotaExceeded)

		for _, tenant := range []string{testTenant, "other"} {
			current, err := store.Current(ctx, tenant)
			require.NoError(t, err)
			require.Nil(t, current, tenant)
		}
		_, ok, err := limited.Get(ctx, kv.KeyCustomerToken)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		f := setupTestFixture(t)
		f.kv.FailWrites(sferrors.ErrQuotaExceeded)
		_, err := f.sessions.Login(ctx, testTenant, api.Credentials{Email: testEmail, Password: testPassword})
		require.ErrorIs(t, err, sferrors.ErrQuotaExceeded)
	})
}

func TestStore_Current(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		f := setupTestFixture(t)
		current, err := f.sessions.Current(ctx, testTenant)
		require.NoError(t, err)
		require.Nil(t, current)
	})

	t.Run("expired token is cleared", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		f.now = f.now.Add(48 * time.Hour)
		current, err := f.sessions.Current(ctx, testTenant)
		require.NoError(t, err)
		require.Nil(t, current)

		_, ok := f.value(t, kv.KeyCustomerToken)
		require.False(t, ok)
	})

	t.Run("opaque token is kept", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.kv.Set(ctx, kv.KeyCustomerToken, "opaque"))
		require.NoError(t, f.kv.Set(ctx, kv.KeyCustomerSubdomain, testTenant))

		current, err := f.sessions.Current(ctx, testTenant)
		require.NoError(t, err)
		require.Equal(t, &sessions.Session{Token: "opaque", Tenant: testTenant}, current)
	})
}

func TestStore_Logout(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.login(t)
	require.NoError(t, f.kv.Set(ctx, kv.CartKey(testTenant), `[{"id":"p1"}]`))
	require.NoError(t, f.kv.Set(ctx, kv.CartKey("other"), `[{"id":"p2"}]`))

	require.NoError(t, f.sessions.Logout(ctx, testTenant))
	require.NoError(t, f.sessions.Logout(ctx, testTenant))

	for _, key := range []string{kv.KeyCustomerToken, kv.KeyCustomerSubdomain, kv.CartKey(testTenant)} {
		_, ok := f.value(t, key)
		require.False(t, ok, key)
	}
	_, ok := f.value(t, kv.CartKey("other"))
	require.True(t, ok)
}

func TestStore_TokenSource(t *testing.T) {
	ctx := context.Background()

	t.Run("authenticated calls use the stored token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.login(t)

		me, err := f.client.Authorized(f.sessions.TokenSource(ctx, testTenant)).StoreMe(ctx, testTenant)
		require.NoError(t, err)
		require.Equal(t, f.customer.ID, me.ID)
	})

	t.Run("no session", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.sessions.TokenSource(ctx, testTenant).Token()
		require.ErrorIs(t, err, sferrors.ErrNoSession)
	})

	t.Run("a 401 logs out and keeps the cart", func(t *testing.T) {
		f := setupTestFixture(t)
		session := f.login(t)
		require.NoError(t, f.kv.Set(ctx, kv.CartKey(testTenant), `[]`))
		f.backend.Revoke(session.Token)

		_, err := f.client.Authorized(f.sessions.TokenSource(ctx, testTenant)).StoreMe(ctx, testTenant)
		require.True(t, sferrors.IsAuth(err))

		current, err := f.sessions.Current(ctx, testTenant)
		require.NoError(t, err)
		require.Nil(t, current)
		_, ok := f.value(t, kv.CartKey(testTenant))
		require.True(t, ok)
	})
}

func TestStore_Signup(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	t.Run("validation runs first", func(t *testing.T) {
		_, err := f.sessions.Signup(ctx, testTenant, validation.CustomerSignup{
			Email: "new@example.com", FullName: "New", Password: "secret1", PasswordConfirm: "secret2",
		})
		require.True(t, sferrors.IsValidation(err))
		require.Empty(t, f.backend.Calls())
	})

	t.Run("registers without logging in", func(t *testing.T) {
		customer, err := f.sessions.Signup(ctx, testTenant, validation.CustomerSignup{
			Email: "new@example.com", FullName: "New", Password: "secret1", PasswordConfirm: "secret1",
		})
		require.NoError(t, err)
		require.Equal(t, "new@example.com", customer.Email)

		current, err := f.sessions.Current(ctx, testTenant)
		require.NoError(t, err)
		require.Nil(t, current)
	})

	t.Run("duplicate email is a remote error", func(t *testing.T) {
		_, err := f.sessions.Signup(ctx, testTenant, validation.CustomerSignup{
			Email: testEmail, FullName: "Again", Password: "secret1", PasswordConfirm: "secret1",
		})
		var remoteErr *sferrors.RemoteError
		require.True(t, errors.As(err, &remoteErr))
		require.Equal(t, "Email already registered on this store", remoteErr.Detail)
	})
}

func TestStore_Instructor(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	session, err := f.sessions.InstructorLogin(ctx, api.Credentials{Email: ownerEmail, Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, ownerEmail, session.Email)

	current, err := f.sessions.Instructor(ctx)
	require.NoError(t, err)
	require.Equal(t, session, current)

	me, err := f.client.Authorized(f.sessions.InstructorTokenSource(ctx)).CurrentInstructor(ctx)
	require.NoError(t, err)
	require.Equal(t, testTenant, me.Subdomain)

	customer, err := f.sessions.Current(ctx, testTenant)
	require.NoError(t, err)
	require.Nil(t, customer)

	require.NoError(t, f.sessions.InstructorLogout(ctx))
	current, err = f.sessions.Instructor(ctx)
	require.NoError(t, err)
	require.Nil(t, current)

	t.Run("signup opens a store", func(t *testing.T) {
		instructor, err := f.sessions.InstructorSignup(ctx, validation.InstructorSignup{
			Email: "new-owner@example.com", FullName: "New Owner", Password: "secret1", PasswordConfirm: "secret1",
			Subdomain: "newstore", StoreName: "New Store", AgreeTerms: true,
		})
		require.NoError(t, err)
		require.Equal(t, "newstore", instructor.Subdomain)
	})
}
