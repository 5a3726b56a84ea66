package backendfake

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront/api"
)

const detailStoreNotFound = "Store not found"

func pageFrom(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	return max(skip, 0), limit
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	end := min(skip+limit, len(items))
	return items[skip:end]
}

func (b *Backend) handleStoreInfo(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	record := b.instructorBySubdomain(r.PathValue("subdomain"))
	if record == nil {
		writeDetail(w, http.StatusNotFound, detailStoreNotFound)
		return
	}
	writeJSON(w, http.StatusOK, storeInfo(record.instructor))
}

func (b *Backend) handleStoreProducts(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	record := b.instructorBySubdomain(r.PathValue("subdomain"))
	if record == nil {
		writeDetail(w, http.StatusNotFound, detailStoreNotFound)
		return
	}

	published := make([]api.Product, 0)
	for _, p := range b.products {
		if p.InstructorID == record.instructor.ID && p.IsPublished {
			published = append(published, *p)
		}
	}
	skip, limit := pageFrom(r)
	writeJSON(w, http.StatusOK, paginate(published, skip, limit))
}

func (b *Backend) handleStoreProduct(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	record := b.instructorBySubdomain(r.PathValue("subdomain"))
	if record == nil {
		writeDetail(w, http.StatusNotFound, detailStoreNotFound)
		return
	}
	p := b.product(r.PathValue("id"))
	if p == nil || p.InstructorID != record.instructor.ID || !p.IsPublished {
		writeDetail(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleStoreSignup(w http.ResponseWriter, r *http.Request) {
	var in api.CustomerSignup
	if !decodeBody(w, r, &in) {
		return
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	subdomain := r.PathValue("subdomain")
	b.lock.Lock()
	defer b.lock.Unlock()
	store := b.instructorBySubdomain(subdomain)
	if store == nil {
		writeDetail(w, http.StatusNotFound, detailStoreNotFound)
		return
	}
	for _, c := range b.customers {
		if c.subdomain == subdomain && c.customer.Email == in.Email {
			writeDetail(w, http.StatusBadRequest, "Email already registered on this store")
			return
		}
	}
	record := &customerRecord{
		customer: api.Customer{
			ID:           uuid.NewString(),
			InstructorID: store.instructor.ID,
			Email:        in.Email,
			FullName:     in.FullName,
			Phone:        in.Phone,
			IsActive:     true,
			CreatedAt:    b.now(),
		},
		subdomain:    subdomain,
		passwordHash: hash,
	}
	b.customers = append(b.customers, record)
	writeJSON(w, http.StatusCreated, record.customer)
}

func (b *Backend) handleStoreLogin(w http.ResponseWriter, r *http.Request) {
	var in api.Credentials
	if !decodeBody(w, r, &in) {
		return
	}

	subdomain := r.PathValue("subdomain")
	b.lock.RLock()
	storeExists := b.instructorBySubdomain(subdomain) != nil
	var found *customerRecord
	for _, c := range b.customers {
		if c.subdomain == subdomain && c.customer.Email == in.Email {
			found = c
		}
	}
	b.lock.RUnlock()

	switch {
	case !storeExists:
		writeDetail(w, http.StatusNotFound, detailStoreNotFound)
		return
	case found == nil || !passwordMatches(found.passwordHash, in.Password):
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	case !found.customer.IsActive:
		writeDetail(w, http.StatusForbidden, "Account is deactivated. Please contact the instructor.")
		return
	}

	b.lock.Lock()
	lastLogin := b.now()
	found.customer.LastLogin = &lastLogin
	b.lock.Unlock()

	b.writeToken(w, found.customer.ID, RoleCustomer, subdomain)
}

func (b *Backend) handleStoreMe(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r)
	b.lock.RLock()
	defer b.lock.RUnlock()
	record := b.customerByID(c.Subject)
	if record == nil || record.subdomain != r.PathValue("subdomain") {
		writeDetail(w, http.StatusNotFound, "Customer not found")
		return
	}
	writeJSON(w, http.StatusOK, record.customer)
}
