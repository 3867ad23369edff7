// Package inventory holds the resource quantity arithmetic. Every function is
// pure: it returns an updated copy and never touches the caller's value on
// error.
package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nhle/siteledger/internal/model"
)

// Init prepares a new resource: nothing used, everything remaining. The
// purchased quantity must be positive.
func Init(r model.Resource) (model.Resource, error) {
	if !r.QuantityPurchased.IsPositive() {
		return r, fmt.Errorf("purchased %s: %w", r.QuantityPurchased, model.ErrInvalidQuantity)
	}
	r.Used = decimal.Zero
	r.Remaining = r.QuantityPurchased
	return r, nil
}

// Consume applies a usage delta. A positive delta uses more stock, a
// negative one gives it back. The result must stay within [0, purchased].
func Consume(r model.Resource, delta decimal.Decimal) (model.Resource, error) {
	return SetUsed(r, r.Used.Add(delta))
}

// Revert gives back qty units, clamping used at zero.
func Revert(r model.Resource, qty decimal.Decimal) model.Resource {
	used := r.Used.Sub(qty)
	if used.IsNegative() {
		used = decimal.Zero
	}
	if used.GreaterThan(r.QuantityPurchased) {
		used = r.QuantityPurchased
	}
	r.Used = used
	r.Remaining = r.QuantityPurchased.Sub(used)
	return r
}

// SetQuantities sets purchased and used together, in whichever order keeps
// every intermediate state valid.
func SetQuantities(r model.Resource, purchased, used decimal.Decimal) (model.Resource, error) {
	var (
		next model.Resource
		err  error
	)
	if used.LessThan(r.Used) {
		next, err = SetUsed(r, used)
		if err == nil {
			next, err = SetPurchased(next, purchased)
		}
	} else {
		next, err = SetPurchased(r, purchased)
		if err == nil {
			next, err = SetUsed(next, used)
		}
	}
	if err != nil {
		return r, err
	}
	return next, nil
}

// SetUsed overwrites the used amount.
func SetUsed(r model.Resource, used decimal.Decimal) (model.Resource, error) {
	if used.IsNegative() {
		return r, fmt.Errorf("%s used would be %s: %w", r.Type, used, model.ErrInvalidQuantity)
	}
	if used.GreaterThan(r.QuantityPurchased) {
		return r, fmt.Errorf("%s used would be %s of %s purchased: %w",
			r.Type, used, r.QuantityPurchased, model.ErrInvalidQuantity)
	}
	r.Used = used
	r.Remaining = r.QuantityPurchased.Sub(used)
	return r, nil
}

// SetPurchased changes the purchased quantity, keeping used as is. It
// must stay positive and not drop below used.
func SetPurchased(r model.Resource, purchased decimal.Decimal) (model.Resource, error) {
	if !purchased.IsPositive() || purchased.LessThan(r.Used) {
		return r, fmt.Errorf("%s purchased %s below used %s: %w",
			r.Type, purchased, r.Used, model.ErrInvalidQuantity)
	}
	r.QuantityPurchased = purchased
	r.Remaining = purchased.Sub(r.Used)
	return r, nil
}

// Check verifies 0 <= used <= purchased and remaining = purchased - used.
func Check(r model.Resource) error {
	switch {
	case r.Used.IsNegative():
		return fmt.Errorf("resource %s: used %s is negative", r.ID, r.Used)
	case r.Used.GreaterThan(r.QuantityPurchased):
		return fmt.Errorf("resource %s: used %s exceeds purchased %s", r.ID, r.Used, r.QuantityPurchased)
	case !r.Remaining.Equal(r.QuantityPurchased.Sub(r.Used)):
		return fmt.Errorf("resource %s: remaining %s != %s - %s", r.ID, r.Remaining, r.QuantityPurchased, r.Used)
	}
	return nil
}

// NormalizeType is the key resource types are matched on.
func NormalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// FindByType returns the index of the first resource whose type matches t,
// or -1.
func FindByType(resources []model.Resource, t string) int {
	key := NormalizeType(t)
	if key == "" {
		return -1
	}
	for i, r := range resources {
		if NormalizeType(r.Type) == key {
			return i
		}
	}
	return -1
}
