package cli_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/backendfake"
	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/internal/cli"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/reading"
	"github.com/stretchr/testify/require"
)

const (
	testTenant   = "acme"
	testEmail    = "reader@example.com"
	testPassword = "secret123"
)

type testFixture struct {
	backend *backendfake.Backend
	product *api.Product
	ebook   *api.Product
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend := backendfake.New()
	srv := backend.Serve()
	t.Cleanup(srv.Close)

	owner, err := backend.AddInstructor("owner@example.com", testPassword, testTenant, "ACME Academy")
	require.NoError(t, err)
	customer, err := backend.AddCustomer(testTenant, testEmail, testPassword, "Reader")
	require.NoError(t, err)

	f := &testFixture{backend: backend}
	f.product = backend.AddProduct(owner.ID, api.Product{
		Title: "Video course", Price: 10000, DiscountPrice: utils.Ptr[int64](8000),
		Type: api.ProductTypeVideo, IsPublished: true,
	})
	f.ebook = backend.AddProduct(owner.ID, api.Product{
		Title: "Handbook", Price: 20000, Type: api.ProductTypeEbook, IsPublished: true,
	})
	_, err = backend.AddPaidOrder(customer.ID, f.ebook.ID)
	require.NoError(t, err)
	chapter := backend.AddChapter(f.ebook.ID, "Basics", 0, true)
	backend.AddSection(chapter.ID, "Intro", 0, true)
	backend.AddSection(chapter.ID, "Setup", 1, true)

	t.Setenv("ENV", "TEST")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STOREFRONT_LOCALE", "en-US")
	t.Setenv("STOREFRONT_API_URL", srv.URL)
	t.Setenv("STOREFRONT_DATA_FOLDER", t.TempDir())
	t.Setenv("STOREFRONT_PROFILE", "test")
	return f
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	return v
}

func login(t *testing.T) {
	t.Helper()
	mustRun(t, "login", "--tenant", testTenant, "--email", testEmail, "--password", testPassword)
}

func TestSession(t *testing.T) {
	t.Run("tenant is required without a session", func(t *testing.T) {
		setupTestFixture(t)
		_, err := run(t, "whoami")
		require.ErrorIs(t, err, sferrors.ErrTenantMissing)
	})

	t.Run("login remembers the store", func(t *testing.T) {
		setupTestFixture(t)
		login(t)
		out := mustRun(t, "whoami")
		require.Equal(t, "Reader <reader@example.com> on acme\n", out)
	})

	t.Run("invalid form never reaches the backend", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := run(t, "login", "--tenant", testTenant, "--email", testEmail)
		require.True(t, sferrors.IsValidation(err))
		require.Empty(t, f.backend.Calls())
	})

	t.Run("logout", func(t *testing.T) {
		setupTestFixture(t)
		login(t)
		require.Equal(t, "Logged out of acme\n", mustRun(t, "logout"))
		out := mustRun(t, "whoami", "--tenant", testTenant)
		require.Equal(t, "Not logged in to acme\n", out)
	})

	t.Run("profiles are separate", func(t *testing.T) {
		setupTestFixture(t)
		login(t)
		_, err := run(t, "whoami", "--profile", "other")
		require.ErrorIs(t, err, sferrors.ErrTenantMissing)
	})

	t.Run("signup", func(t *testing.T) {
		setupTestFixture(t)
		out := mustRun(t, "signup", "--tenant", testTenant, "--email", "new@example.com", "--name", "New",
			"--password", "secret1", "--password-confirm", "secret1")
		require.Equal(t, "Created account new@example.com on acme. Log in to continue.\n", out)
	})
}

func TestCart(t *testing.T) {
	f := setupTestFixture(t)

	summary := decode[cart.Summary](t, mustRun(t, "cart", "add", f.product.ID, "-t", testTenant, "-o", "json"))
	require.Equal(t, 1, summary.Count)
	require.Equal(t, int64(8000), summary.Total)
	require.Equal(t, int64(2000), summary.DiscountTotal)

	summary = decode[cart.Summary](t, mustRun(t, "cart", "add", f.product.ID, "-t", testTenant, "-o", "json"))
	require.Equal(t, 1, summary.Count)

	out := mustRun(t, "cart", "list", "-t", testTenant)
	require.Contains(t, out, "Video course")
	require.Contains(t, out, "KRW 8,000")

	mustRun(t, "cart", "add", f.ebook.ID, "-t", testTenant)
	summary = decode[cart.Summary](t, mustRun(t, "cart", "remove", f.product.ID, "-t", testTenant, "-o", "json"))
	require.Equal(t, 1, summary.Count)
	require.Equal(t, f.ebook.ID, summary.Items[0].ID)

	mustRun(t, "cart", "clear", "-t", testTenant)
	require.Equal(t, "The acme cart is empty\n", mustRun(t, "cart", "list", "-t", testTenant))

	_, err := run(t, "cart", "add", "missing", "-t", testTenant)
	require.Equal(t, 404, sferrors.RemoteStatus(err))
}

func TestRead(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := run(t, "read", "progress", f.ebook.ID, "-t", testTenant)
		require.ErrorIs(t, err, sferrors.ErrNoSession)
	})

	t.Run("open select and complete", func(t *testing.T) {
		f := setupTestFixture(t)
		login(t)

		view := decode[reading.View](t, mustRun(t, "read", "open", f.ebook.ID, "-o", "json"))
		require.Len(t, view.Sections, 2)
		first, second := view.Sections[0], view.Sections[1]
		require.Equal(t, first.ID, view.CurrentID)
		require.Equal(t, reading.Visited, first.State)
		require.Equal(t, 0, view.Percentage)

		mustRun(t, "read", "complete", f.ebook.ID, first.ID)
		view = decode[reading.View](t, mustRun(t, "read", "select", f.ebook.ID, second.ID, "-o", "json"))
		require.Equal(t, 50, view.Percentage)
		require.Equal(t, second.ID, view.CurrentID)
		require.Equal(t, reading.Completed, view.Sections[0].State)

		mustRun(t, "read", "bookmark", f.ebook.ID, second.ID)
		out := mustRun(t, "read", "progress", f.ebook.ID)
		require.Contains(t, out, "Handbook  50% complete")
		require.Contains(t, out, "Setup")
	})

	t.Run("unknown section", func(t *testing.T) {
		f := setupTestFixture(t)
		login(t)
		_, err := run(t, "read", "select", f.ebook.ID, "nope")
		require.ErrorIs(t, err, sferrors.ErrUnknownSection)
	})
}

func TestStoreAndOrders(t *testing.T) {
	f := setupTestFixture(t)

	out := mustRun(t, "store", "info", "-t", testTenant)
	require.Contains(t, out, "ACME Academy (acme)")

	products := decode[[]api.Product](t, mustRun(t, "store", "products", "-t", testTenant, "-o", "json"))
	require.Len(t, products, 2)

	out = mustRun(t, "store", "product", f.product.ID, "-t", testTenant)
	require.Contains(t, out, "KRW 8,000 (20% off KRW 10,000)")

	login(t)
	orders := decode[[]api.Order](t, mustRun(t, "orders", "-o", "json"))
	require.Len(t, orders, 1)
	require.Equal(t, f.ebook.ID, orders[0].ProductID)
}

func TestInstructor(t *testing.T) {
	setupTestFixture(t)

	_, err := run(t, "instructor", "whoami")
	require.ErrorIs(t, err, sferrors.ErrNoSession)

	mustRun(t, "instructor", "login", "--email", "owner@example.com", "--password", testPassword)
	out := mustRun(t, "instructor", "whoami")
	require.Contains(t, out, "ACME Academy (acme)")

	products := decode[[]api.Product](t, mustRun(t, "instructor", "products", "-o", "json"))
	require.Len(t, products, 2)

	mustRun(t, "instructor", "logout")
	_, err = run(t, "instructor", "whoami")
	require.ErrorIs(t, err, sferrors.ErrNoSession)
}
