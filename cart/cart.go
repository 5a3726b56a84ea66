// Package cart keeps one ordered list of line items per tenant in local
// storage. Every call reads storage afresh, so writes by other processes
// sharing the store are observed.
package cart

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-storefront/api"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/kv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Item is one product in a cart. Prices are whole won.
type Item struct {
	ID            string          `json:"id" yaml:"id"`
	Title         string          `json:"title" yaml:"title"`
	Price         int64           `json:"price" yaml:"price"`
	DiscountPrice *int64          `json:"discount_price,omitempty" yaml:"discount_price,omitempty"`
	Thumbnail     *string         `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Type          api.ProductType `json:"type" yaml:"type"`
}

// EffectivePrice is what the customer pays for the item.
func (i Item) EffectivePrice() int64 {
	return utils.ValueOr(i.DiscountPrice, i.Price)
}

// ItemFromProduct builds the line item for p.
func ItemFromProduct(p api.Product) Item {
	return Item{
		ID:            p.ID,
		Title:         p.Title,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Thumbnail:     p.Thumbnail,
		Type:          p.Type,
	}
}

// Summary is a cart with its totals.
type Summary struct {
	Tenant        string `json:"tenant" yaml:"tenant"`
	Items         []Item `json:"items" yaml:"items"`
	Count         int    `json:"count" yaml:"count"`
	Total         int64  `json:"total" yaml:"total"`
	DiscountTotal int64  `json:"discount_total" yaml:"discount_total"`
}

type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// AddItem appends item unless an item with the same id is already in the
// cart, in which case nothing is written and added is false.
func (s *Store) AddItem(ctx context.Context, tenant string, item Item) (bool, error) {
	if item.ID == "" || item.Price < 0 {
		return false, errors.Wrapf(sferrors.ErrInvalidItem, "[Store.AddItem] item %q", item.ID)
	}

	items, err := s.Items(ctx, tenant)
	if err != nil {
		return false, err
	}
	if indexOf(items, item.ID) >= 0 {
		return false, nil
	}

	if err := s.save(ctx, tenant, append(items, item)); err != nil {
		return false, errors.Wrap(err, "[Store.AddItem] save")
	}
	log.Debug().Str("tenant", tenant).Str("item", item.ID).Msg("cart item added")
	return true, nil
}

// RemoveItem drops the item with id. A missing id writes nothing.
func (s *Store) RemoveItem(ctx context.Context, tenant, id string) error {
	items, err := s.Items(ctx, tenant)
	if err != nil {
		return err
	}
	i := indexOf(items, id)
	if i < 0 {
		return nil
	}

	remaining := append(items[:i:i], items[i+1:]...)
	if err := s.save(ctx, tenant, remaining); err != nil {
		return errors.Wrap(err, "[Store.RemoveItem] save")
	}
	log.Debug().Str("tenant", tenant).Str("item", id).Msg("cart item removed")
	return nil
}

// Clear empties tenant's cart.
func (s *Store) Clear(ctx context.Context, tenant string) error {
	if err := s.kv.Delete(ctx, kv.CartKey(tenant)); err != nil {
		return errors.Wrap(err, "[Store.Clear] delete")
	}
	log.Debug().Str("tenant", tenant).Msg("cart cleared")
	return nil
}

// Items returns tenant's cart in insertion order. A cart that was never
// written is empty.
func (s *Store) Items(ctx context.Context, tenant string) ([]Item, error) {
	raw, ok, err := s.kv.Get(ctx, kv.CartKey(tenant))
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Items] read")
	}
	items := make([]Item, 0)
	if !ok || raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.Wrapf(sferrors.ErrStorageCorrupted, "[Store.Items] cart %q: %v", tenant, err)
	}
	return items, nil
}

func (s *Store) Count(ctx context.Context, tenant string) (int, error) {
	items, err := s.Items(ctx, tenant)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *Store) Contains(ctx context.Context, tenant, id string) (bool, error) {
	items, err := s.Items(ctx, tenant)
	if err != nil {
		return false, err
	}
	return indexOf(items, id) >= 0, nil
}

// Total sums each item's discount price, or its price when it has none.
func (s *Store) Total(ctx context.Context, tenant string) (int64, error) {
	items, err := s.Items(ctx, tenant)
	if err != nil {
		return 0, err
	}
	return total(items), nil
}

// DiscountTotal sums price minus discount price over discounted items.
func (s *Store) DiscountTotal(ctx context.Context, tenant string) (int64, error) {
	items, err := s.Items(ctx, tenant)
	if err != nil {
		return 0, err
	}
	return discountTotal(items), nil
}

// Summary reads the cart once and computes its totals.
func (s *Store) Summary(ctx context.Context, tenant string) (*Summary, error) {
	items, err := s.Items(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Tenant:        tenant,
		Items:         items,
		Count:         len(items),
		Total:         total(items),
		DiscountTotal: discountTotal(items),
	}, nil
}

// Watch calls fn with the item count whenever tenant's cart changes. The
// counts are read with ctx, and watching ends when ctx is done or the
// returned func is called.
func (s *Store) Watch(ctx context.Context, tenant string, fn func(count int)) func() {
	key := kv.CartKey(tenant)
	unsubscribe := s.kv.Subscribe(func(event kv.Event) {
		if event.Key != key || ctx.Err() != nil {
			return
		}
		count, err := s.Count(ctx, tenant)
		if err != nil {
			log.Err(err).Str("tenant", tenant).Msg("Failed to count cart items")
			return
		}
		fn(count)
	})
	stopAfter := context.AfterFunc(ctx, unsubscribe)
	return func() {
		stopAfter()
		unsubscribe()
	}
}

func (s *Store) save(ctx context.Context, tenant string, items []Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, kv.CartKey(tenant), string(payload))
}

func indexOf(items []Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func total(items []Item) int64 {
	var sum int64
	for _, item := range items {
		sum += item.EffectivePrice()
	}
	return sum
}

func discountTotal(items []Item) int64 {
	var sum int64
	for _, item := range items {
		if item.DiscountPrice != nil {
			sum += item.Price - *item.DiscountPrice
		}
	}
	return sum
}
