package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/backendfake"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testTenant        = "acme"
	testCustomerEmail = "reader@example.com"
	testPassword      = "secret123"
)

type testFixture struct {
	backend  *backendfake.Backend
	client   *api.Client
	customer *api.Customer
	owner    *api.Instructor
	product  *api.Product
}

func setupTestFixture(t *testing.T, options ...api.Option) *testFixture {
	t.Helper()

	backend := backendfake.New()
	srv := backend.Serve()
	t.Cleanup(srv.Close)

	owner, err := backend.AddInstructor("owner@example.com", testPassword, testTenant, "ACME Academy")
	require.NoError(t, err)
	customer, err := backend.AddCustomer(testTenant, testCustomerEmail, testPassword, "Reader")
	require.NoError(t, err)
	product := backend.AddProduct(owner.ID, api.Product{
		Title:         "Go in Practice",
		Price:         10000,
		DiscountPrice: utils.Ptr(int64(8000)),
		Type:          api.ProductTypeEbook,
		IsPublished:   true,
	})

	return &testFixture{
		backend:  backend,
		client:   api.New(srv.URL+"/", options...),
		customer: customer,
		owner:    owner,
		product:  product,
	}
}

func (f *testFixture) customerClient(t *testing.T) *api.Client {
	t.Helper()
	token, err := f.client.StoreLogin(context.Background(), testTenant, api.Credentials{Email: testCustomerEmail, Password: testPassword})
	require.NoError(t, err)
	return f.client.Authorized(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.AccessToken}))
}

type invalidatingSource struct {
	token       string
	invalidated int
}

func (s *invalidatingSource) Token() (*oauth2.Token, error) {
	if s.token == "" {
		return nil, sferrors.ErrNoSession
	}
	return &oauth2.Token{AccessToken: s.token}, nil
}

func (s *invalidatingSource) Invalidate(context.Context) error {
	s.invalidated++
	s.token = ""
	return nil
}

func TestClient_PublicStore(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	t.Run("store info", func(t *testing.T) {
		info, err := f.client.StoreInfo(ctx, testTenant)
		require.NoError(t, err)
		require.Equal(t, "ACME Academy", info.StoreName)
		require.Equal(t, testTenant, info.Subdomain)
	})

	t.Run("store info through the tenants repo", func(t *testing.T) {
		info, err := f.client.Tenants().Get(ctx, testTenant)
		require.NoError(t, err)
		require.Equal(t, "ACME Academy", info.StoreName)
	})

	t.Run("unknown store is a remote error with the detail", func(t *testing.T) {
		_, err := f.client.StoreInfo(ctx, "nope")
		var remoteErr *sferrors.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		require.Equal(t, http.StatusNotFound, remoteErr.Status)
		require.Equal(t, "Store not found", remoteErr.Message)
	})

	t.Run("products", func(t *testing.T) {
		products, err := f.client.StoreProducts(ctx, testTenant, api.Page{})
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, int64(8000), *products[0].DiscountPrice)

		product, err := f.client.StoreProduct(ctx, testTenant, f.product.ID)
		require.NoError(t, err)
		require.Equal(t, "Go in Practice", product.Title)
	})
}

func TestClient_Login(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	t.Run("wrong password is an auth error", func(t *testing.T) {
		_, err := f.client.StoreLogin(ctx, testTenant, api.Credentials{Email: testCustomerEmail, Password: "wrong"})
		require.True(t, sferrors.IsAuth(err))
		require.Equal(t, "Incorrect email or password", err.Error())
		require.Equal(t, http.StatusUnauthorized, sferrors.RemoteStatus(err))
	})

	t.Run("valid credentials return a bearer token", func(t *testing.T) {
		token, err := f.client.StoreLogin(ctx, testTenant, api.Credentials{Email: testCustomerEmail, Password: testPassword})
		require.NoError(t, err)
		require.NotEmpty(t, token.AccessToken)
		require.Equal(t, "bearer", token.TokenType)
	})

	t.Run("me with the token", func(t *testing.T) {
		me, err := f.customerClient(t).StoreMe(ctx, testTenant)
		require.NoError(t, err)
		require.Equal(t, f.customer.ID, me.ID)
	})
}

func TestClient_Unauthorized(t *testing.T) {
	ctx := context.Background()

	t.Run("no token source", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.client.StoreMe(ctx, testTenant)
		require.True(t, sferrors.IsAuth(err))
		require.ErrorIs(t, err, sferrors.ErrNoSession)
		require.Empty(t, f.backend.Calls())
	})

	t.Run("token source without a token", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.client.Authorized(&invalidatingSource{}).StoreMe(ctx, testTenant)
		require.True(t, sferrors.IsAuth(err))
		require.ErrorIs(t, err, sferrors.ErrNoSession)
	})

	t.Run("rejected token is invalidated and the handler runs", func(t *testing.T) {
		handled := 0
		f := setupTestFixture(t, api.WithUnauthorizedHandler(func(context.Context) { handled++ }))
		source := &invalidatingSource{token: "not-a-jwt"}

		_, err := f.client.Authorized(source).StoreMe(ctx, testTenant)
		require.True(t, sferrors.IsAuth(err))
		require.Equal(t, http.StatusUnauthorized, sferrors.RemoteStatus(err))
		require.Equal(t, 1, source.invalidated)
		require.Equal(t, 1, handled)
	})

	t.Run("expired token", func(t *testing.T) {
		f := setupTestFixture(t)
		expired, err := f.backend.IssueToken(f.customer.ID, backendfake.RoleCustomer, testTenant, -time.Minute)
		require.NoError(t, err)

		source := &invalidatingSource{token: expired}
		_, err = f.client.Authorized(source).StoreMe(ctx, testTenant)
		require.True(t, sferrors.IsAuth(err))
		require.Equal(t, 1, source.invalidated)
	})
}

func TestClient_ErrorDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("list of validation problems", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.FailNext(http.MethodGet, "/public/store/acme/info", http.StatusUnprocessableEntity,
			[]map[string]string{{"msg": "field required"}, {"msg": "value too short"}})

		_, err := f.client.StoreInfo(ctx, testTenant)
		var remoteErr *sferrors.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		require.Equal(t, "field required; value too short", remoteErr.Detail)
	})

	t.Run("no detail falls back to a localized message", func(t *testing.T) {
		f := setupTestFixture(t, api.WithLocale("ko-KR"))
		f.backend.FailNext(http.MethodGet, "/public/store/acme/info", http.StatusInternalServerError, nil)

		_, err := f.client.StoreInfo(ctx, testTenant)
		var remoteErr *sferrors.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		require.Empty(t, remoteErr.Detail)
		require.Equal(t, "오류가 발생했습니다", remoteErr.Message)
	})

	t.Run("unknown locale uses the base locale", func(t *testing.T) {
		f := setupTestFixture(t, api.WithLocale("fr-FR"))
		require.Equal(t, "en-US", f.client.Locale())
	})
}

func TestClient_Ebook(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	client := f.customerClient(t)

	chapter := f.backend.AddChapter(f.product.ID, "Basics", 0, true)
	section := f.backend.AddSection(chapter.ID, "Hello", 0, true)
	f.backend.AddSection(chapter.ID, "Draft", 1, false)

	t.Run("structure requires a purchase", func(t *testing.T) {
		_, err := client.EbookStructure(ctx, f.product.ID)
		require.Equal(t, http.StatusForbidden, sferrors.RemoteStatus(err))
	})

	_, err := f.backend.AddPaidOrder(f.customer.ID, f.product.ID)
	require.NoError(t, err)

	t.Run("structure lists published sections", func(t *testing.T) {
		structure, err := client.EbookStructure(ctx, f.product.ID)
		require.NoError(t, err)
		require.Equal(t, "Go in Practice", structure.ProductTitle)
		require.Len(t, structure.Chapters, 1)
		require.Len(t, structure.Chapters[0].Sections, 1)
	})

	t.Run("progress and bookmarks", func(t *testing.T) {
		content, err := client.SectionContent(ctx, section.ID)
		require.NoError(t, err)
		require.Equal(t, "<p>Hello</p>", *content.ContentHTML)

		_, err = client.UpdateProgress(ctx, api.ProgressUpdate{SectionID: section.ID, IsCompleted: true, ReadingProgress: 100})
		require.NoError(t, err)
		progress, err := client.ProductProgress(ctx, f.product.ID)
		require.NoError(t, err)
		require.Len(t, progress, 1)
		require.True(t, progress[0].IsCompleted)

		bookmark, err := client.CreateBookmark(ctx, api.BookmarkInput{SectionID: section.ID})
		require.NoError(t, err)
		require.NoError(t, client.DeleteBookmark(ctx, bookmark.ID))
		bookmarks, err := client.ProductBookmarks(ctx, f.product.ID)
		require.NoError(t, err)
		require.Empty(t, bookmarks)
	})
}

func TestClient_Instructor(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	token, err := f.client.LoginInstructor(ctx, api.Credentials{Email: "owner@example.com", Password: testPassword})
	require.NoError(t, err)
	client := f.client.Authorized(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.AccessToken}))

	t.Run("profile", func(t *testing.T) {
		me, err := client.CurrentInstructor(ctx)
		require.NoError(t, err)
		require.Equal(t, testTenant, me.Subdomain)

		updated, err := client.UpdateInstructor(ctx, api.InstructorUpdate{Bio: utils.Ptr("Teaching Go")})
		require.NoError(t, err)
		require.Equal(t, "Teaching Go", *updated.Bio)
	})

	t.Run("products", func(t *testing.T) {
		created, err := client.CreateProduct(ctx, api.ProductUpdate{
			Title: utils.Ptr("Video course"),
			Price: utils.Ptr(int64(30000)),
			Type:  utils.Ptr(api.ProductTypeVideo),
		})
		require.NoError(t, err)

		stats, err := client.ProductStats(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, stats.TotalProducts)

		require.NoError(t, client.DeleteProduct(ctx, created.ID))
		_, err = client.GetProduct(ctx, created.ID)
		require.Equal(t, http.StatusNotFound, sferrors.RemoteStatus(err))
	})

	t.Run("orders", func(t *testing.T) {
		_, err := f.backend.AddPaidOrder(f.customer.ID, f.product.ID)
		require.NoError(t, err)

		orders, err := client.ListOrders(ctx, api.OrderFilter{Status: api.OrderPaid})
		require.NoError(t, err)
		require.Len(t, orders, 1)

		refunded, err := client.UpdateOrderStatus(ctx, orders[0].ID, api.OrderUpdate{Status: utils.Ptr(api.OrderRefunded)})
		require.NoError(t, err)
		require.NotNil(t, refunded.RefundedAt)

		stats, err := client.OrderStats(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, stats.OrdersByStatus[api.OrderRefunded])
	})

	t.Run("customers", func(t *testing.T) {
		customers, err := client.ListCustomers(ctx, api.CustomerFilter{Search: "reader"})
		require.NoError(t, err)
		require.Len(t, customers, 1)

		_, err = client.UpdateCustomer(ctx, f.customer.ID, api.CustomerUpdate{Notes: utils.Ptr("vip")})
		require.NoError(t, err)

		stats, err := client.CustomerStats(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, stats.TotalCustomers)
	})

	t.Run("authoring", func(t *testing.T) {
		chapter, err := client.CreateChapter(ctx, api.ChapterInput{ProductID: f.product.ID, Title: utils.Ptr("Intro")})
		require.NoError(t, err)
		section, err := client.CreateSection(ctx, api.SectionInput{ChapterID: chapter.ID, Title: utils.Ptr("Welcome")})
		require.NoError(t, err)

		chapters, err := client.ProductChapters(ctx, f.product.ID)
		require.NoError(t, err)
		require.Len(t, chapters, 1)
		require.Len(t, chapters[0].Sections, 1)

		_, err = client.UpdateSection(ctx, section.ID, api.SectionInput{IsFree: utils.Ptr(true)})
		require.NoError(t, err)
		require.NoError(t, client.DeleteSection(ctx, section.ID))
		require.NoError(t, client.DeleteChapter(ctx, chapter.ID))
	})
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	var record struct {
		At   api.Timestamp  `json:"at"`
		Opt  *api.Timestamp `json:"opt"`
		Zero api.Timestamp  `json:"zero"`
	}
	err := json.Unmarshal([]byte(`{"at":"2025-03-01T09:30:00.123456","opt":"2025-03-01T09:30:00+09:00","zero":null}`), &record)
	require.NoError(t, err)

	require.True(t, record.At.Equal(time.Date(2025, 3, 1, 9, 30, 0, 123456000, time.UTC)))
	require.True(t, record.Opt.Equal(time.Date(2025, 3, 1, 0, 30, 0, 0, time.UTC)))
	require.True(t, record.Zero.IsZero())
}
