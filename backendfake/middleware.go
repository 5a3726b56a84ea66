package backendfake

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
)

type contextKey string

const claimsKey contextKey = "claims"

func claimsFrom(r *http.Request) *claims {
	c, _ := r.Context().Value(claimsKey).(*claims)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	if detail == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, map[string]any{"detail": detail})
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "invalid request body"}})
		return false
	}
	return true
}

// record logs the call and serves any failure queued with FailNext.
func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		b.lock.Lock()
		b.calls = append(b.calls, key)
		var injected *failure
		if queued := b.failures[key]; len(queued) > 0 {
			injected = &queued[0]
			b.failures[key] = queued[1:]
		}
		b.lock.Unlock()

		if injected != nil && injected.status != 0 {
			writeDetail(w, injected.status, injected.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return b.requireRole(next)
}

func (b *Backend) instructorOnly(next http.HandlerFunc) http.HandlerFunc {
	return b.requireRole(next, RoleInstructor)
}

func (b *Backend) customerOnly(next http.HandlerFunc) http.HandlerFunc {
	return b.requireRole(next, RoleCustomer)
}

// buyerOnly admits anyone who can place orders.
func (b *Backend) buyerOnly(next http.HandlerFunc) http.HandlerFunc {
	return b.requireRole(next, RoleCustomer, RoleUser)
}

func (b *Backend) requireRole(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		c, err := b.parseToken(raw)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid authentication credentials")
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, c.Role) {
			writeDetail(w, http.StatusForbidden, "Not authorized")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, c)))
	}
}
