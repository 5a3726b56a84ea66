package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/cart"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/i18n"
	"github.com/jrsteele09/go-storefront/pricing"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/validation"
	"github.com/rs/zerolog/log"
)

// scope is everything one request works with: its tenant, its browser
// profile's stores and a client speaking its locale.
type scope struct {
	tenant   string
	locale   string
	client   *api.Client
	sessions *sessions.Store
	cart     *cart.Store
}

func (s *Server) scope(ctx context.Context) *scope {
	store := s.profileStore(ctx)
	locale := localeFrom(ctx)
	client := s.client.Localized(locale)
	return &scope{
		tenant:   tenantFrom(ctx),
		locale:   locale,
		client:   client,
		sessions: sessions.NewStore(store, client, sessions.WithLocale(locale), sessions.WithNowFunc(s.nowFunc)),
		cart:     cart.NewStore(store),
	}
}

// authorized is the client for calls made as the profile's customer.
func (sc *scope) authorized(ctx context.Context) *api.Client {
	return sc.client.Authorized(sc.sessions.TokenSource(ctx, sc.tenant))
}

func (s *Server) HealthcheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "app": s.config.GetAppName()})
	}
}

func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) StoreInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, storeFrom(r.Context()))
	}
}

func (s *Server) StoreProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scope(r.Context())
		products, err := sc.client.StoreProducts(r.Context(), sc.tenant, pageFrom(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out := make([]productView, 0, len(products))
		for _, p := range products {
			out = append(out, newProductView(p, sc.locale, s.nowFunc()))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) StoreProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scope(r.Context())
		product, err := sc.client.StoreProduct(r.Context(), sc.tenant, r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newProductView(*product, sc.locale, s.nowFunc()))
	}
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Tenant        string `json:"tenant"`
	CartCount     int    `json:"cart_count"`
}

func (s *Server) sessionState(ctx context.Context, sc *scope) (*sessionResponse, error) {
	session, err := sc.sessions.Current(ctx, sc.tenant)
	if err != nil {
		return nil, err
	}
	count, err := sc.cart.Count(ctx, sc.tenant)
	if err != nil {
		return nil, err
	}
	return &sessionResponse{Authenticated: session != nil, Tenant: sc.tenant, CartCount: count}, nil
}

func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := s.sessionState(r.Context(), s.scope(r.Context()))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds api.Credentials
		if !s.decodeBody(w, r, &creds) {
			return
		}
		sc := s.scope(r.Context())
		if _, err := sc.sessions.Login(r.Context(), sc.tenant, creds); err != nil {
			s.writeError(w, r, err)
			return
		}
		state, err := s.sessionState(r.Context(), sc)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scope(r.Context())
		if err := sc.sessions.Logout(r.Context(), sc.tenant); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form validation.CustomerSignup
		if !s.decodeBody(w, r, &form) {
			return
		}
		sc := s.scope(r.Context())
		customer, err := sc.sessions.Signup(r.Context(), sc.tenant, form)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, customer)
	}
}

func (s *Server) MyOrdersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scope(r.Context())
		orders, err := sc.authorized(r.Context()).MyOrders(r.Context(), pageFrom(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func pageFrom(r *http.Request) api.Page {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return api.Page{Skip: skip, Limit: limit}
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := decoder.Decode(target); err != nil {
		s.writeError(w, r, sferrors.NewValidationError("body", i18n.Text(localeFrom(r.Context()), i18n.MsgFieldRequired, "body")))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

// productView is a product with the figures its page displays.
type productView struct {
	api.Product
	EffectivePrice int64              `json:"effective_price"`
	DiscountRate   int                `json:"discount_rate"`
	DisplayPrice   string             `json:"display_price"`
	Countdown      *pricing.Remaining `json:"countdown,omitempty"`
}

func newProductView(p api.Product, locale string, now time.Time) productView {
	view := productView{
		Product:        p,
		EffectivePrice: pricing.EffectivePrice(p.Price, p.DiscountPrice),
		DiscountRate:   pricing.DiscountRate(p.Price, p.DiscountPrice),
	}
	view.DisplayPrice = pricing.FormatKRW(locale, view.EffectivePrice)
	if remaining, ok := pricing.ModalCountdown(p, now); ok {
		view.Countdown = &remaining
	}
	return view
}
