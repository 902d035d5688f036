package services

import (
	"context"

	"shopcart/internal/cart"
	"shopcart/internal/domain"
)

// CartService is the caller-facing action API for one cart key. Every method
// returns once the change has been written back (or has failed), with the
// state the cart settled on.
type CartService struct {
	Key   string
	Store *cart.Store
	// Cache remembers product slugs added to logged-out carts. May be nil.
	Cache cart.KeyValueStore
}

func NewCartService(key string, store *cart.Store, cache cart.KeyValueStore) *CartService {
	return &CartService{Key: key, Store: store, Cache: cache}
}

func (s *CartService) rememberSlugs(products []domain.RequestCartProduct) {
	if s.Key != domain.NoUserCartKey {
		return
	}
	slugs := make([]string, 0, len(products))
	for _, p := range products {
		slugs = append(slugs, p.ProductSlug)
	}
	cart.RememberProductSlugs(s.Cache, slugs)
}

func (s *CartService) State() cart.State {
	return s.Store.State()
}

func validateProducts(products []domain.RequestCartProduct) error {
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AddProductsToCart appends products, unless that would mix renewals with
// new purchases; the cart is then replaced by products instead. The reducer
// makes that call, so an add queued behind a load or write checks the cart
// it actually lands on.
func (s *CartService) AddProductsToCart(ctx context.Context, products []domain.RequestCartProduct) (cart.State, error) {
	if err := validateProducts(products); err != nil {
		return cart.State{}, err
	}
	s.rememberSlugs(products)
	return s.Store.DispatchAndWait(ctx, cart.AddProducts{Products: products, SeparateRenewals: true})
}

func (s *CartService) ReplaceProductsInCart(ctx context.Context, products []domain.RequestCartProduct) (cart.State, error) {
	if err := validateProducts(products); err != nil {
		return cart.State{}, err
	}
	s.rememberSlugs(products)
	return s.Store.DispatchAndWait(ctx, cart.ReplaceAllProducts{Products: products})
}

func (s *CartService) ReplaceProductInCart(ctx context.Context, uuid string, changes domain.ProductChanges) (cart.State, error) {
	if changes.ProductID != nil && *changes.ProductID == 0 {
		return cart.State{}, domain.ErrMissingProductID
	}
	return s.Store.DispatchAndWait(ctx, cart.ReplaceProduct{UUID: uuid, Changes: changes})
}

func (s *CartService) RemoveProductFromCart(ctx context.Context, uuid string) (cart.State, error) {
	return s.Store.DispatchAndWait(ctx, cart.RemoveCartItem{UUID: uuid})
}

func (s *CartService) ApplyCoupon(ctx context.Context, coupon string) (cart.State, error) {
	return s.Store.DispatchAndWait(ctx, cart.AddCoupon{Coupon: coupon})
}

func (s *CartService) RemoveCoupon(ctx context.Context) (cart.State, error) {
	return s.Store.DispatchAndWait(ctx, cart.RemoveCoupon{})
}

func (s *CartService) UpdateLocation(ctx context.Context, loc domain.CartLocation) (cart.State, error) {
	return s.Store.DispatchAndWait(ctx, cart.SetLocation{Location: loc})
}

func (s *CartService) ReloadFromServer(ctx context.Context) (cart.State, error) {
	return s.Store.DispatchAndWait(ctx, cart.CartReload{})
}
