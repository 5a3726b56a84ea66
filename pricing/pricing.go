// Package pricing holds the price and countdown arithmetic shown on product
// pages. Amounts are whole won.
package pricing

import (
	"math"
	"time"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/internal/i18n"
	"github.com/jrsteele09/go-storefront/internal/utils"
)

// EffectivePrice is the discount price when one is set, else price. A zero
// discount price is a valid price.
func EffectivePrice(price int64, discount *int64) int64 {
	return utils.ValueOr(discount, price)
}

// DiscountRate is the discount as a rounded percentage of price.
func DiscountRate(price int64, discount *int64) int {
	if discount == nil || price <= 0 {
		return 0
	}
	return int(math.Round(float64(price-*discount) / float64(price) * 100))
}

// Remaining is a countdown split into display units.
type Remaining struct {
	Days    int `json:"days" yaml:"days"`
	Hours   int `json:"hours" yaml:"hours"`
	Minutes int `json:"minutes" yaml:"minutes"`
	Seconds int `json:"seconds" yaml:"seconds"`
}

func (r Remaining) Expired() bool {
	return r == Remaining{}
}

// Countdown is the time from now until end, clamped at zero.
func Countdown(end, now time.Time) Remaining {
	left := end.Sub(now)
	if left <= 0 {
		return Remaining{}
	}
	return Remaining{
		Days:    int(left / (24 * time.Hour)),
		Hours:   int(left % (24 * time.Hour) / time.Hour),
		Minutes: int(left % time.Hour / time.Minute),
		Seconds: int(left % time.Minute / time.Second),
	}
}

// ModalCountdown is the countdown of a product's purchase modal. Products
// without an end time report ok false.
func ModalCountdown(p api.Product, now time.Time) (Remaining, bool) {
	if p.EndTime == nil || p.EndTime.IsZero() {
		return Remaining{}, false
	}
	return Countdown(p.EndTime.Time, now), true
}

// FormatKRW renders amount with thousands separators in locale's currency
// pattern, e.g. "8,000원".
func FormatKRW(locale string, amount int64) string {
	return i18n.Text(locale, i18n.MsgCurrencyKRW, amount)
}
