package backendfake

import (
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/internal/utils"
)

const (
	detailProductNotFound  = "Product not found"
	detailOrderNotFound    = "Order not found"
	detailCustomerNotFound = "Customer not found"
)

func applyProductUpdate(p *api.Product, in api.ProductUpdate) {
	setIf(&p.Title, in.Title)
	setIf(&p.Price, in.Price)
	setIf(&p.Type, in.Type)
	setIf(&p.IsPublished, in.IsPublished)
	setPtrIf(&p.Description, in.Description)
	setPtrIf(&p.DetailedDescription, in.DetailedDescription)
	setPtrIf(&p.DiscountPrice, in.DiscountPrice)
	setPtrIf(&p.Thumbnail, in.Thumbnail)
	setPtrIf(&p.Category, in.Category)
	setPtrIf(&p.Duration, in.Duration)
	setPtrIf(&p.FileURL, in.FileURL)
	setPtrIf(&p.IsNew, in.IsNew)
	setPtrIf(&p.BannerImage, in.BannerImage)
	setPtrIf(&p.Curriculum, in.Curriculum)
	setPtrIf(&p.ScheduleInfo, in.ScheduleInfo)
	if in.ProductOptions != nil {
		p.ProductOptions = in.ProductOptions
	}
	if in.AdditionalOptions != nil {
		p.AdditionalOptions = in.AdditionalOptions
	}
	p.PurchaseModal = mergeModal(p.PurchaseModal, in.PurchaseModal)
}

func mergeModal(current, in api.PurchaseModal) api.PurchaseModal {
	setPtrIf(&current.BgColor, in.BgColor)
	setPtrIf(&current.BgOpacity, in.BgOpacity)
	setPtrIf(&current.Text, in.Text)
	setPtrIf(&current.TextColor, in.TextColor)
	setPtrIf(&current.ButtonText, in.ButtonText)
	setPtrIf(&current.ButtonColor, in.ButtonColor)
	setPtrIf(&current.CountDays, in.CountDays)
	setPtrIf(&current.CountHours, in.CountHours)
	setPtrIf(&current.CountMinutes, in.CountMinutes)
	setPtrIf(&current.CountSeconds, in.CountSeconds)
	setPtrIf(&current.EndTime, in.EndTime)
	return current
}

func (b *Backend) ownedProduct(w http.ResponseWriter, r *http.Request) *api.Product {
	p := b.product(r.PathValue("id"))
	if p == nil || p.InstructorID != claimsFrom(r).Subject {
		writeDetail(w, http.StatusNotFound, detailProductNotFound)
		return nil
	}
	return p
}

func (b *Backend) handleListProducts(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	owned := make([]api.Product, 0)
	for _, p := range b.products {
		if p.InstructorID == claimsFrom(r).Subject {
			owned = append(owned, *p)
		}
	}
	skip, limit := pageFrom(r)
	writeJSON(w, http.StatusOK, paginate(owned, skip, limit))
}

func (b *Backend) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if p := b.ownedProduct(w, r); p != nil {
		writeJSON(w, http.StatusOK, p)
	}
}

func (b *Backend) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in api.ProductUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Title == nil || in.Price == nil || in.Type == nil || !in.Type.Valid() {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "title, price and type are required"}})
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	p := &api.Product{
		ID:           uuid.NewString(),
		InstructorID: claimsFrom(r).Subject,
		CreatedAt:    b.now(),
	}
	applyProductUpdate(p, in)
	b.products = append(b.products, p)
	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in api.ProductUpdate
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	p := b.ownedProduct(w, r)
	if p == nil {
		return
	}
	applyProductUpdate(p, in)
	updated := b.now()
	p.UpdatedAt = &updated
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	p := b.ownedProduct(w, r)
	if p == nil {
		return
	}
	b.products = slices.DeleteFunc(b.products, func(candidate *api.Product) bool { return candidate.ID == p.ID })
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleProductStats(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	instructorID := claimsFrom(r).Subject
	stats := api.ProductStats{InstructorID: instructorID}
	for _, p := range b.products {
		if p.InstructorID == instructorID {
			stats.TotalProducts++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) handleListOrders(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	status := api.OrderStatus(r.URL.Query().Get("status"))
	matched := make([]api.Order, 0)
	for _, o := range b.orders {
		if o.InstructorID == claimsFrom(r).Subject && (status == "" || o.Status == status) {
			matched = append(matched, *o)
		}
	}
	skip, limit := pageFrom(r)
	writeJSON(w, http.StatusOK, paginate(matched, skip, limit))
}

func (b *Backend) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	mine := make([]api.Order, 0)
	for _, o := range b.orders {
		if o.UserID == claimsFrom(r).Subject {
			mine = append(mine, *o)
		}
	}
	skip, limit := pageFrom(r)
	writeJSON(w, http.StatusOK, paginate(mine, skip, limit))
}

func (b *Backend) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in api.OrderCreate
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	p := b.product(in.ProductID)
	if p == nil {
		writeDetail(w, http.StatusNotFound, detailProductNotFound)
		return
	}
	order := b.newOrder(claimsFrom(r).Subject, p, in)
	writeJSON(w, http.StatusCreated, order)
}

func (b *Backend) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	c := claimsFrom(r)
	for _, o := range b.orders {
		if o.ID != r.PathValue("id") {
			continue
		}
		if o.UserID != c.Subject && o.InstructorID != c.Subject {
			writeDetail(w, http.StatusForbidden, "Not authorized to access this order")
			return
		}
		writeJSON(w, http.StatusOK, o)
		return
	}
	writeDetail(w, http.StatusNotFound, detailOrderNotFound)
}

func (b *Backend) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in api.OrderUpdate
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	for _, o := range b.orders {
		if o.ID != r.PathValue("id") {
			continue
		}
		if o.InstructorID != claimsFrom(r).Subject {
			writeDetail(w, http.StatusForbidden, "Not authorized to update this order")
			return
		}
		now := b.now()
		if in.Status != nil {
			o.Status = *in.Status
			switch o.Status {
			case api.OrderPaid:
				o.PaidAt = utils.Ptr(utils.ValueOr(in.PaidAt, now))
			case api.OrderCancelled:
				o.CancelledAt = &now
			case api.OrderRefunded:
				o.RefundedAt = &now
			}
		}
		setPtrIf(&o.PaymentID, in.PaymentID)
		setPtrIf(&o.RefundReason, in.RefundReason)
		o.UpdatedAt = &now
		writeJSON(w, http.StatusOK, o)
		return
	}
	writeDetail(w, http.StatusNotFound, detailOrderNotFound)
}

func (b *Backend) handleOrderStats(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	instructorID := claimsFrom(r).Subject
	stats := api.OrderStats{
		InstructorID: instructorID,
		OrdersByStatus: map[api.OrderStatus]int{
			api.OrderPending:   0,
			api.OrderPaid:      0,
			api.OrderCancelled: 0,
			api.OrderRefunded:  0,
		},
	}
	for _, o := range b.orders {
		if o.InstructorID != instructorID {
			continue
		}
		stats.TotalOrders++
		stats.OrdersByStatus[o.Status]++
		if o.Status == api.OrderPaid {
			stats.TotalRevenue += o.PaidPrice
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) ownedCustomer(w http.ResponseWriter, r *http.Request) *customerRecord {
	record := b.customerByID(r.PathValue("id"))
	if record == nil {
		writeDetail(w, http.StatusNotFound, detailCustomerNotFound)
		return nil
	}
	if record.customer.InstructorID != claimsFrom(r).Subject {
		writeDetail(w, http.StatusForbidden, "Not authorized to access this customer")
		return nil
	}
	return record
}

func (b *Backend) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	query := r.URL.Query()
	search := strings.ToLower(query.Get("search"))
	activeFilter := query.Get("is_active")

	matched := make([]api.Customer, 0)
	for _, record := range b.customers {
		c := record.customer
		if c.InstructorID != claimsFrom(r).Subject {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Email+" "+c.FullName), search) {
			continue
		}
		if activeFilter != "" && (activeFilter == "true") != c.IsActive {
			continue
		}
		matched = append(matched, c)
	}
	skip, limit := pageFrom(r)
	writeJSON(w, http.StatusOK, paginate(matched, skip, limit))
}

func (b *Backend) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if record := b.ownedCustomer(w, r); record != nil {
		writeJSON(w, http.StatusOK, record.customer)
	}
}

func (b *Backend) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var in api.CustomerUpdate
	if !decodeBody(w, r, &in) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	record := b.ownedCustomer(w, r)
	if record == nil {
		return
	}
	c := &record.customer
	setIf(&c.FullName, in.FullName)
	setIf(&c.IsActive, in.IsActive)
	setPtrIf(&c.Phone, in.Phone)
	setPtrIf(&c.Notes, in.Notes)
	setPtrIf(&c.Tags, in.Tags)
	updated := b.now()
	c.UpdatedAt = &updated
	writeJSON(w, http.StatusOK, c)
}

func (b *Backend) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	record := b.ownedCustomer(w, r)
	if record == nil {
		return
	}
	b.customers = slices.DeleteFunc(b.customers, func(candidate *customerRecord) bool { return candidate == record })
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleCustomerStats(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	instructorID := claimsFrom(r).Subject
	stats := api.CustomerStats{InstructorID: instructorID}
	for _, record := range b.customers {
		if record.customer.InstructorID == instructorID {
			stats.TotalCustomers++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}
