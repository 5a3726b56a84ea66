// Package backendfake is an in-memory stand-in for the storefront backend.
// It serves the same REST surface the api package consumes, signs HS256
// bearer tokens and keeps bcrypt password hashes, so clients can be tested
// end to end and run locally without the real backend.
package backendfake

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Roles carried in issued tokens.
const (
	RoleCustomer   = "customer"
	RoleInstructor = "instructor"
	RoleUser       = "user"
)

type claims struct {
	Role   string `json:"role"`
	Tenant string `json:"tenant,omitempty"`
	jwt.RegisteredClaims
}

type instructorRecord struct {
	instructor   api.Instructor
	passwordHash []byte
}

type customerRecord struct {
	customer     api.Customer
	subdomain    string
	passwordHash []byte
}

type userRecord struct {
	user         api.User
	passwordHash []byte
}

// failure is a queued answer for one request. A zero status lets the
// request through.
type failure struct {
	status int
	detail any
}

// Backend holds all backend state behind one lock.
type Backend struct {
	secret   []byte
	tokenTTL time.Duration
	nowFunc  func() time.Time

	instructors []*instructorRecord
	customers   []*customerRecord
	users       []*userRecord
	products    []*api.Product
	orders      []*api.Order
	chapters    []*api.Chapter
	sections    []*api.Section
	progress    []*api.Progress
	bookmarks   []*api.Bookmark
	revoked     map[string]struct{}

	failures map[string][]failure
	calls    []string
	lock     sync.RWMutex
}

type Option func(*Backend)

// WithNowFunc sets the clock used for timestamps and token expiry
func WithNowFunc(now func() time.Time) Option {
	return func(b *Backend) {
		b.nowFunc = now
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.tokenTTL = ttl
	}
}

func WithSecret(secret string) Option {
	return func(b *Backend) {
		b.secret = []byte(secret)
	}
}

func New(options ...Option) *Backend {
	b := &Backend{
		revoked:  make(map[string]struct{}),
		failures: make(map[string][]failure),
	}
	for _, opt := range options {
		opt(b)
	}
	if len(b.secret) == 0 {
		b.secret = []byte(uuid.NewString())
	}
	if b.tokenTTL == 0 {
		b.tokenTTL = 24 * time.Hour
	}
	if b.nowFunc == nil {
		b.nowFunc = time.Now
	}
	return b
}

// Serve starts an httptest server for b. The caller closes it.
func (b *Backend) Serve() *httptest.Server {
	return httptest.NewServer(b.Handler())
}

// Calls lists "METHOD /path" for every request received, in order.
func (b *Backend) Calls() []string {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return append([]string(nil), b.calls...)
}

// ResetCalls forgets recorded requests.
func (b *Backend) ResetCalls() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = nil
}

// FailNext makes the next request matching method and path answer with
// status and a body of {"detail": detail}. A nil detail sends an empty body.
func (b *Backend) FailNext(method, path string, status int, detail any) {
	b.lock.Lock()
	defer b.lock.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], failure{status: status, detail: detail})
}

// PassNext lets the next request matching method and path through untouched.
// Queued before FailNext it makes the second such request fail.
func (b *Backend) PassNext(method, path string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], failure{})
}

// Revoke makes token fail authentication from now on.
func (b *Backend) Revoke(token string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.revoked[token] = struct{}{}
}

// IssueToken signs a token for subject. A negative ttl issues an expired token.
func (b *Backend) IssueToken(subject, role, tenant string, ttl time.Duration) (string, error) {
	now := b.nowFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role:   role,
		Tenant: tenant,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(b.secret)
	if err != nil {
		return "", errors.Wrap(err, "[Backend.IssueToken] sign")
	}
	return signed, nil
}

func (b *Backend) parseToken(raw string) (*claims, error) {
	b.lock.RLock()
	_, revoked := b.revoked[raw]
	b.lock.RUnlock()
	if revoked {
		return nil, errors.New("token revoked")
	}

	parsed := &claims{}
	_, err := jwt.ParseWithClaims(raw, parsed, func(*jwt.Token) (any, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(b.nowFunc))
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
}

func passwordMatches(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

func (b *Backend) now() api.Timestamp {
	return api.Timestamp{Time: b.nowFunc().UTC()}
}

// AddInstructor creates an instructor and their store.
func (b *Backend) AddInstructor(email, password, subdomain, storeName string) (*api.Instructor, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[Backend.AddInstructor] hash password")
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	record := &instructorRecord{
		instructor: api.Instructor{
			ID:         uuid.NewString(),
			Email:      email,
			FullName:   storeName + " owner",
			Subdomain:  subdomain,
			StoreName:  storeName,
			IsActive:   true,
			IsVerified: true,
			CreatedAt:  b.now(),
		},
		passwordHash: hash,
	}
	b.instructors = append(b.instructors, record)
	out := record.instructor
	return &out, nil
}

// AddCustomer registers a customer with the store at subdomain.
func (b *Backend) AddCustomer(subdomain, email, password, fullName string) (*api.Customer, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[Backend.AddCustomer] hash password")
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	instructor := b.instructorBySubdomain(subdomain)
	if instructor == nil {
		return nil, errors.Errorf("[Backend.AddCustomer] store %q not found", subdomain)
	}
	record := &customerRecord{
		customer: api.Customer{
			ID:           uuid.NewString(),
			InstructorID: instructor.instructor.ID,
			Email:        email,
			FullName:     fullName,
			IsActive:     true,
			CreatedAt:    b.now(),
		},
		subdomain:    subdomain,
		passwordHash: hash,
	}
	b.customers = append(b.customers, record)
	out := record.customer
	return &out, nil
}

// AddProduct stores p for instructorID; ID and timestamps are filled in.
func (b *Backend) AddProduct(instructorID string, p api.Product) *api.Product {
	b.lock.Lock()
	defer b.lock.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.InstructorID = instructorID
	p.CreatedAt = b.now()
	b.products = append(b.products, &p)
	out := p
	return &out
}

// AddPaidOrder records a purchase of productID by buyerID.
func (b *Backend) AddPaidOrder(buyerID, productID string) (*api.Order, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	product := b.product(productID)
	if product == nil {
		return nil, errors.Errorf("[Backend.AddPaidOrder] product %q not found", productID)
	}
	paidAt := b.now()
	order := b.newOrder(buyerID, product, api.OrderCreate{
		ProductID:     productID,
		OriginalPrice: product.Price,
		PaidPrice:     utils.ValueOr(product.DiscountPrice, product.Price),
	})
	order.Status = api.OrderPaid
	order.PaidAt = &paidAt
	out := *order
	return &out, nil
}

// AddChapter adds a chapter to productID.
func (b *Backend) AddChapter(productID, title string, orderIndex int, published bool) *api.Chapter {
	b.lock.Lock()
	defer b.lock.Unlock()
	chapter := &api.Chapter{
		ID:          uuid.NewString(),
		ProductID:   productID,
		Title:       title,
		OrderIndex:  orderIndex,
		IsPublished: published,
		CreatedAt:   b.now(),
	}
	b.chapters = append(b.chapters, chapter)
	out := *chapter
	return &out
}

// AddSection adds a section to chapterID.
func (b *Backend) AddSection(chapterID, title string, orderIndex int, published bool) *api.Section {
	b.lock.Lock()
	defer b.lock.Unlock()
	html := "<p>" + title + "</p>"
	section := &api.Section{
		ID:          uuid.NewString(),
		ChapterID:   chapterID,
		Title:       title,
		ContentHTML: &html,
		OrderIndex:  orderIndex,
		IsPublished: published,
		CreatedAt:   b.now(),
	}
	b.sections = append(b.sections, section)
	out := *section
	return &out
}

// Progress returns the stored progress of customerID on sectionID.
func (b *Backend) Progress(customerID, sectionID string) (api.Progress, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	for _, p := range b.progress {
		if p.CustomerID == customerID && p.SectionID == sectionID {
			return *p, true
		}
	}
	return api.Progress{}, false
}

// Bookmarks returns customerID's bookmarks.
func (b *Backend) Bookmarks(customerID string) []api.Bookmark {
	b.lock.RLock()
	defer b.lock.RUnlock()
	out := make([]api.Bookmark, 0)
	for _, bm := range b.bookmarks {
		if bm.CustomerID == customerID {
			out = append(out, *bm)
		}
	}
	return out
}

func (b *Backend) instructorBySubdomain(subdomain string) *instructorRecord {
	for _, r := range b.instructors {
		if r.instructor.Subdomain == subdomain {
			return r
		}
	}
	return nil
}

func (b *Backend) instructorByID(id string) *instructorRecord {
	for _, r := range b.instructors {
		if r.instructor.ID == id {
			return r
		}
	}
	return nil
}

func (b *Backend) customerByID(id string) *customerRecord {
	for _, r := range b.customers {
		if r.customer.ID == id {
			return r
		}
	}
	return nil
}

func (b *Backend) product(id string) *api.Product {
	for _, p := range b.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (b *Backend) chapter(id string) *api.Chapter {
	for _, c := range b.chapters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (b *Backend) section(id string) *api.Section {
	for _, s := range b.sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (b *Backend) newOrder(buyerID string, product *api.Product, in api.OrderCreate) *api.Order {
	order := &api.Order{
		ID:            uuid.NewString(),
		UserID:        buyerID,
		ProductID:     product.ID,
		InstructorID:  product.InstructorID,
		OrderNumber:   "ORD-" + uuid.NewString()[:8],
		Status:        api.OrderPending,
		OriginalPrice: in.OriginalPrice,
		PaidPrice:     in.PaidPrice,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     b.now(),
	}
	b.orders = append(b.orders, order)
	return order
}

func (b *Backend) hasPurchased(buyerID, productID string) bool {
	for _, o := range b.orders {
		if o.UserID == buyerID && o.ProductID == productID && o.Status == api.OrderPaid {
			return true
		}
	}
	return false
}

// Handler routes the backend's REST surface.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signup/user", b.handleSignupUser)
	mux.HandleFunc("POST /auth/signup/instructor", b.handleSignupInstructor)
	mux.HandleFunc("POST /auth/login/user", b.handleLoginUser)
	mux.HandleFunc("POST /auth/login/instructor", b.handleLoginInstructor)
	mux.HandleFunc("GET /auth/me/instructor", b.instructorOnly(b.handleGetMeInstructor))
	mux.HandleFunc("PUT /auth/me/instructor", b.instructorOnly(b.handleUpdateMeInstructor))

	mux.HandleFunc("GET /public/store/{subdomain}/info", b.handleStoreInfo)
	mux.HandleFunc("GET /public/store/{subdomain}/products", b.handleStoreProducts)
	mux.HandleFunc("GET /public/store/{subdomain}/products/{id}", b.handleStoreProduct)
	mux.HandleFunc("POST /public/store/{subdomain}/signup", b.handleStoreSignup)
	mux.HandleFunc("POST /public/store/{subdomain}/login", b.handleStoreLogin)
	mux.HandleFunc("GET /public/store/{subdomain}/me", b.customerOnly(b.handleStoreMe))

	mux.HandleFunc("GET /products", b.instructorOnly(b.handleListProducts))
	mux.HandleFunc("POST /products", b.instructorOnly(b.handleCreateProduct))
	mux.HandleFunc("GET /products/stats/summary", b.instructorOnly(b.handleProductStats))
	mux.HandleFunc("GET /products/{id}", b.instructorOnly(b.handleGetProduct))
	mux.HandleFunc("PUT /products/{id}", b.instructorOnly(b.handleUpdateProduct))
	mux.HandleFunc("DELETE /products/{id}", b.instructorOnly(b.handleDeleteProduct))

	mux.HandleFunc("GET /orders", b.instructorOnly(b.handleListOrders))
	mux.HandleFunc("POST /orders", b.buyerOnly(b.handleCreateOrder))
	mux.HandleFunc("GET /orders/my", b.buyerOnly(b.handleMyOrders))
	mux.HandleFunc("GET /orders/stats/summary", b.instructorOnly(b.handleOrderStats))
	mux.HandleFunc("GET /orders/{id}", b.authenticated(b.handleGetOrder))
	mux.HandleFunc("PATCH /orders/{id}/status", b.instructorOnly(b.handleUpdateOrderStatus))

	mux.HandleFunc("GET /customers", b.instructorOnly(b.handleListCustomers))
	mux.HandleFunc("GET /customers/stats/summary", b.instructorOnly(b.handleCustomerStats))
	mux.HandleFunc("GET /customers/{id}", b.instructorOnly(b.handleGetCustomer))
	mux.HandleFunc("PUT /customers/{id}", b.instructorOnly(b.handleUpdateCustomer))
	mux.HandleFunc("DELETE /customers/{id}", b.instructorOnly(b.handleDeleteCustomer))

	mux.HandleFunc("GET /ebook/customer/products/{id}/structure", b.customerOnly(b.handleEbookStructure))
	mux.HandleFunc("GET /ebook/customer/products/{id}/progress", b.customerOnly(b.handleProductProgress))
	mux.HandleFunc("GET /ebook/customer/products/{id}/bookmarks", b.customerOnly(b.handleProductBookmarks))
	mux.HandleFunc("GET /ebook/customer/sections/{id}", b.customerOnly(b.handleSectionContent))
	mux.HandleFunc("POST /ebook/customer/progress", b.customerOnly(b.handleUpdateProgress))
	mux.HandleFunc("POST /ebook/customer/bookmarks", b.customerOnly(b.handleCreateBookmark))
	mux.HandleFunc("DELETE /ebook/customer/bookmarks/{id}", b.customerOnly(b.handleDeleteBookmark))

	mux.HandleFunc("POST /ebook/instructor/chapters", b.instructorOnly(b.handleCreateChapter))
	mux.HandleFunc("GET /ebook/instructor/products/{id}/chapters", b.instructorOnly(b.handleProductChapters))
	mux.HandleFunc("PUT /ebook/instructor/chapters/{id}", b.instructorOnly(b.handleUpdateChapter))
	mux.HandleFunc("DELETE /ebook/instructor/chapters/{id}", b.instructorOnly(b.handleDeleteChapter))
	mux.HandleFunc("POST /ebook/instructor/sections", b.instructorOnly(b.handleCreateSection))
	mux.HandleFunc("PUT /ebook/instructor/sections/{id}", b.instructorOnly(b.handleUpdateSection))
	mux.HandleFunc("DELETE /ebook/instructor/sections/{id}", b.instructorOnly(b.handleDeleteSection))

	return b.record(mux)
}
