package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/kv"
	"github.com/jrsteele09/go-storefront/tenants"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyTenant stores the resolved tenant subdomain
	ContextKeyTenant ContextKey = "tenant"
	// ContextKeyStore stores the tenant's store info
	ContextKeyStore ContextKey = "store"
	// ContextKeyProfile stores the browser profile id
	ContextKeyProfile ContextKey = "profile"
	// ContextKeyLocale stores the request locale
	ContextKeyLocale ContextKey = "locale"
)

// TenantMiddleware resolves the tenant from the Host header, falling back to
// the X-Storefront-Tenant header for hosts that carry none (localhost). The
// store must exist on the collaborator.
func (s *Server) TenantMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale := s.localeFor(r)
		ctx := context.WithValue(r.Context(), ContextKeyLocale, locale)

		tenant, ok := tenants.FromHost(r.Host, s.config.GetRootDomain())
		if !ok {
			tenant = strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderTenant)))
		}
		if tenant == "" {
			s.writeError(w, r.WithContext(ctx), sferrors.ErrTenantMissing)
			return
		}
		if err := tenants.ValidateSubdomain(tenant, locale); err != nil {
			s.writeError(w, r.WithContext(ctx), errors.Wrapf(sferrors.ErrInvalidTenant, "%q", tenant))
			return
		}

		store, err := s.tenants.Get(ctx, tenant)
		if err != nil {
			s.writeError(w, r.WithContext(ctx), err)
			return
		}

		ctx = context.WithValue(ctx, ContextKeyTenant, tenant)
		ctx = context.WithValue(ctx, ContextKeyStore, store)
		next(w, r.WithContext(ctx))
	}
}

// ProfileMiddleware assigns each browser a profile id cookie. The profile
// selects the namespace of the local store the request works on.
func (s *Server) ProfileMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := ""
		if cookie, err := r.Cookie(ProfileCookie); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				profile = id.String()
			}
		}
		if profile == "" {
			profile = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ProfileCookie,
				Value:    profile,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})
			log.Debug().Str("profile", profile).Msg("new browser profile")
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyProfile, profile)))
	}
}

// localeFor picks the first Accept-Language tag, else the configured locale.
func (s *Server) localeFor(r *http.Request) string {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return s.config.GetLocale()
	}
	return tags[0].String()
}

func tenantFrom(ctx context.Context) string {
	tenant, _ := ctx.Value(ContextKeyTenant).(string)
	return tenant
}

func storeFrom(ctx context.Context) *tenants.Tenant {
	store, _ := ctx.Value(ContextKeyStore).(*tenants.Tenant)
	return store
}

func profileFrom(ctx context.Context) string {
	profile, _ := ctx.Value(ContextKeyProfile).(string)
	return profile
}

func localeFrom(ctx context.Context) string {
	locale, _ := ctx.Value(ContextKeyLocale).(string)
	return locale
}

// profileStore is the request's view of the local store.
func (s *Server) profileStore(ctx context.Context) kv.Store {
	return kv.ForProfile(s.store, profileFrom(ctx))
}
