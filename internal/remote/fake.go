package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"shopcart/internal/domain"
)

// Fake is an in-memory cart endpoint. Products are looked up by id in
// Catalog, a coupon is applied iff it is set and not rejected, and taxes are
// displayed once a postal code is known.
type Fake struct {
	mu sync.Mutex

	Catalog map[int]domain.ResponseCartProduct
	carts   map[string]domain.ResponseCart

	// Strict makes unseeded cart keys fail with ErrUnknownCartKey.
	Strict          bool
	RejectedCoupons map[string]bool
	// BeforeGet and BeforeSet run ahead of every call; a non-nil error fails it.
	BeforeGet func(ctx context.Context, cartKey string) error
	BeforeSet func(ctx context.Context, cartKey string, cart domain.RequestCart) error

	getCalls int
	setCalls int
}

func NewFake(catalog ...domain.ResponseCartProduct) *Fake {
	f := &Fake{
		Catalog:         map[int]domain.ResponseCartProduct{},
		carts:           map[string]domain.ResponseCart{},
		RejectedCoupons: map[string]bool{},
	}
	for _, p := range catalog {
		f.Catalog[p.ProductID] = p
	}
	return f
}

// Seed stores cart under cartKey, making the key known in Strict mode.
func (f *Fake) Seed(cartKey string, cart domain.ResponseCart) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart.CartKey = cartKey
	if cart.Products == nil {
		cart.Products = []domain.ResponseCartProduct{}
	}
	f.carts[cartKey] = cart
}

func (f *Fake) Calls() (get, set int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls, f.setCalls
}

func (f *Fake) GetCart(ctx context.Context, cartKey string) (domain.ResponseCart, error) {
	f.mu.Lock()
	f.getCalls++
	hook := f.BeforeGet
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, cartKey); err != nil {
			return domain.ResponseCart{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.ResponseCart{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[cartKey]
	if !ok {
		if f.Strict {
			return domain.ResponseCart{}, fmt.Errorf("%w: %s", ErrUnknownCartKey, cartKey)
		}
		cart = domain.EmptyResponseCart()
		cart.CartKey = cartKey
	}
	return cart, nil
}

func (f *Fake) SetCart(ctx context.Context, cartKey string, req domain.RequestCart) (domain.ResponseCart, error) {
	f.mu.Lock()
	f.setCalls++
	hook := f.BeforeSet
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, cartKey, req); err != nil {
			return domain.ResponseCart{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.ResponseCart{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	prev, ok := f.carts[cartKey]
	if !ok && f.Strict {
		return domain.ResponseCart{}, fmt.Errorf("%w: %s", ErrUnknownCartKey, cartKey)
	}

	cart := domain.EmptyResponseCart()
	cart.CartKey = cartKey
	var total int64
	for i, rp := range req.Products {
		p, ok := f.Catalog[rp.ProductID]
		if !ok {
			return domain.ResponseCart{}, fmt.Errorf("%w: %d", ErrUnknownProduct, rp.ProductID)
		}
		// Items keep their uuid across writes while they stay in place.
		if i < len(prev.Products) && prev.Products[i].ProductID == rp.ProductID {
			p.UUID = prev.Products[i].UUID
		}
		if p.UUID == "" {
			p.UUID = uuid.NewString()
		}
		if rp.Meta != "" {
			p.Meta = rp.Meta
		}
		if rp.Volume != 0 {
			p.Volume = rp.Volume
		}
		if rp.Quantity != nil {
			p.Quantity = rp.Quantity
		}
		if rp.Extra != (domain.ProductExtra{}) {
			p.Extra = rp.Extra
		}
		total += p.ItemSubtotalInteger
		cart.Products = append(cart.Products, p)
	}
	cart.Coupon = req.Coupon
	cart.IsCouponApplied = req.Coupon != "" && !f.RejectedCoupons[req.Coupon]
	cart.Tax = domain.TaxInfo{
		DisplayTaxes: req.Tax.Location.PostalCode != "",
		Location:     req.Tax.Location,
	}
	cart.SubTotalInteger = total
	cart.TotalCostInteger = total
	f.carts[cartKey] = cart
	return cart, nil
}
