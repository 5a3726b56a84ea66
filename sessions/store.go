// Package sessions keeps the customer session (one token bound to one
// tenant) and the instructor session in local storage.
package sessions

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/kv"
	"github.com/jrsteele09/go-storefront/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Authenticator is the part of the backend client sessions need.
type Authenticator interface {
	StoreLogin(ctx context.Context, subdomain string, creds api.Credentials) (*api.Token, error)
	StoreSignup(ctx context.Context, subdomain string, in api.CustomerSignup) (*api.Customer, error)
	LoginInstructor(ctx context.Context, creds api.Credentials) (*api.Token, error)
	SignupInstructor(ctx context.Context, in api.SignupInstructorRequest) (*api.Instructor, error)
}

// Session is an authenticated customer of one tenant.
type Session struct {
	Token  string `json:"token" yaml:"token"`
	Tenant string `json:"tenant" yaml:"tenant"`
}

type Store struct {
	kv        kv.Store
	auth      Authenticator
	validator *validation.Validator
	nowFunc   func() time.Time
}

type Option func(*Store)

// WithNowFunc sets the clock used for token expiry checks
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		s.nowFunc = now
	}
}

// WithLocale sets the language of validation messages.
func WithLocale(locale string) Option {
	return func(s *Store) {
		s.validator = validation.New(locale)
	}
}

func NewStore(store kv.Store, auth Authenticator, options ...Option) *Store {
	s := &Store{
		kv:   store,
		auth: auth,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.validator == nil {
		s.validator = validation.New("")
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}
	return s
}

// Login authenticates against tenant and stores the session. Any previous
// customer session, for any tenant, is replaced.
func (s *Store) Login(ctx context.Context, tenant string, creds api.Credentials) (*Session, error) {
	if err := s.validator.Login(creds.Email, creds.Password); err != nil {
		return nil, err
	}

	token, err := s.auth.StoreLogin(ctx, tenant, creds)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Login] login")
	}

	// The token and its tenant are two entries. The old pair goes first and a
	// half written pair is removed, so a failed login leaves no session
	// rather than one tenant's token under another tenant.
	if err := s.clearCustomer(ctx); err != nil {
		return nil, errors.Wrap(err, "[Store.Login] clear previous session")
	}
	if err := s.kv.Set(ctx, kv.KeyCustomerToken, token.AccessToken); err != nil {
		return nil, s.abandonLogin(ctx, errors.Wrap(err, "[Store.Login] save token"))
	}
	if err := s.kv.Set(ctx, kv.KeyCustomerSubdomain, tenant); err != nil {
		return nil, s.abandonLogin(ctx, errors.Wrap(err, "[Store.Login] save tenant"))
	}

	log.Debug().Str("tenant", tenant).Msg("customer logged in")
	return &Session{Token: token.AccessToken, Tenant: tenant}, nil
}

// Current returns the session for tenant, or nil when there is none. A
// session stored for another tenant is not returned. A JWT whose exp has
// passed is cleared and treated as absent; opaque tokens are kept as is.
func (s *Store) Current(ctx context.Context, tenant string) (*Session, error) {
	token, _, err := s.kv.Get(ctx, kv.KeyCustomerToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Current] read token")
	}
	stored, _, err := s.kv.Get(ctx, kv.KeyCustomerSubdomain)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Current] read tenant")
	}
	if token == "" || stored != tenant {
		return nil, nil
	}

	if s.expired(token) {
		log.Debug().Str("tenant", tenant).Msg("customer token expired")
		if err := s.clearCustomer(ctx); err != nil {
			return nil, errors.Wrap(err, "[Store.Current] clear expired session")
		}
		return nil, nil
	}
	return &Session{Token: token, Tenant: stored}, nil
}

// Logout drops the customer session and tenant's cart. It is idempotent.
func (s *Store) Logout(ctx context.Context, tenant string) error {
	if err := s.clearCustomer(ctx); err != nil {
		return errors.Wrap(err, "[Store.Logout] clear session")
	}
	if err := s.kv.Delete(ctx, kv.CartKey(tenant)); err != nil {
		return errors.Wrap(err, "[Store.Logout] clear cart")
	}
	return nil
}

// HandleUnauthorized drops the customer session after the backend rejected
// its token. The cart is kept.
func (s *Store) HandleUnauthorized(ctx context.Context) {
	log.Warn().Msg("backend rejected the customer token, logging out")
	if err := s.clearCustomer(ctx); err != nil {
		log.Err(err).Msg("Failed to clear rejected customer session")
	}
}

// Signup validates form and registers the customer with tenant. It does not
// log in.
func (s *Store) Signup(ctx context.Context, tenant string, form validation.CustomerSignup) (*api.Customer, error) {
	if err := s.validator.CustomerSignup(form); err != nil {
		return nil, err
	}
	customer, err := s.auth.StoreSignup(ctx, tenant, api.CustomerSignup{
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
		Phone:    form.Phone,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Signup] signup")
	}
	return customer, nil
}

// abandonLogin removes whatever part of a session a failed login wrote and
// returns err.
func (s *Store) abandonLogin(ctx context.Context, err error) error {
	if clearErr := s.clearCustomer(ctx); clearErr != nil {
		log.Err(clearErr).Msg("Failed to remove partial customer session")
	}
	return err
}

func (s *Store) clearCustomer(ctx context.Context) error {
	if err := s.kv.Delete(ctx, kv.KeyCustomerToken); err != nil {
		return err
	}
	return s.kv.Delete(ctx, kv.KeyCustomerSubdomain)
}

// expired reports whether token is a JWT with an exp in the past.
func (s *Store) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.nowFunc().Before(exp.Time)
}
