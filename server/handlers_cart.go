package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-storefront/cart"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/i18n"
	"github.com/jrsteele09/go-storefront/pricing"
	"github.com/rs/zerolog/log"
)

// cartResponse is a cart summary with display prices.
type cartResponse struct {
	*cart.Summary
	DisplayTotal    string `json:"display_total"`
	DisplayDiscount string `json:"display_discount"`
	Message         string `json:"message,omitempty"`
}

func (s *Server) writeCart(w http.ResponseWriter, r *http.Request, sc *scope, status int, message string) {
	summary, err := sc.cart.Summary(r.Context(), sc.tenant)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, cartResponse{
		Summary:         summary,
		DisplayTotal:    pricing.FormatKRW(sc.locale, summary.Total),
		DisplayDiscount: pricing.FormatKRW(sc.locale, summary.DiscountTotal),
		Message:         message,
	})
}

func (s *Server) CartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeCart(w, r, s.scope(r.Context()), http.StatusOK, "")
	}
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
}

// AddCartItemHandler looks the product up in the tenant's public catalog
// and adds it. Adding a product already in the cart answers 200 with the
// duplicate message.
func (s *Server) AddCartItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in addCartItemRequest
		if !s.decodeBody(w, r, &in) {
			return
		}
		sc := s.scope(r.Context())
		if strings.TrimSpace(in.ProductID) == "" {
			s.writeError(w, r, sferrors.NewValidationError("product_id", i18n.Text(sc.locale, i18n.MsgFieldRequired, "product_id")))
			return
		}

		product, err := sc.client.StoreProduct(r.Context(), sc.tenant, in.ProductID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		added, err := sc.cart.AddItem(r.Context(), sc.tenant, cart.ItemFromProduct(*product))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !added {
			s.writeCart(w, r, sc, http.StatusOK, i18n.Text(sc.locale, i18n.MsgCartDuplicate))
			return
		}
		s.writeCart(w, r, sc, http.StatusCreated, i18n.Text(sc.locale, i18n.MsgCartAdded))
	}
}

func (s *Server) RemoveCartItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scope(r.Context())
		if err := sc.cart.RemoveItem(r.Context(), sc.tenant, r.PathValue("id")); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeCart(w, r, sc, http.StatusOK, "")
	}
}

func (s *Server) ClearCartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := s.scope(r.Context())
		if err := sc.cart.Clear(r.Context(), sc.tenant); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CartEventsHandler streams the cart's item count as server-sent events:
// once on connect and again after every change to the cart.
func (s *Server) CartEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeDetail(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}
		sc := s.scope(r.Context())

		counts := make(chan int, 16)
		stop := sc.cart.Watch(r.Context(), sc.tenant, func(count int) {
			select {
			case counts <- count:
			default:
				log.Warn().Str("tenant", sc.tenant).Msg("Dropped cart event for a slow listener")
			}
		})
		defer stop()

		count, err := sc.cart.Count(r.Context(), sc.tenant)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		for {
			fmt.Fprintf(w, "event: cart\ndata: %d\n\n", count)
			flusher.Flush()

			select {
			case <-r.Context().Done():
				return
			case count = <-counts:
			}
		}
	}
}
