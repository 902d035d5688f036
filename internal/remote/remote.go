package remote

import (
	"context"
	"errors"

	"shopcart/internal/domain"
)

var (
	ErrUnknownCartKey = errors.New("unknown cart key")
	ErrUnknownProduct = errors.New("unknown product")
)

// CartService is the remote source of truth for carts, addressed by an
// opaque cart key.
type CartService interface {
	GetCart(ctx context.Context, cartKey string) (domain.ResponseCart, error)
	SetCart(ctx context.Context, cartKey string, cart domain.RequestCart) (domain.ResponseCart, error)
}
