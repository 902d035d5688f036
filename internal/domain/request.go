package domain

import (
	"errors"
	"fmt"
)

var ErrMissingProductID = errors.New("missing product_id")

// RequestCartProduct describes a product the caller wants in the cart. Only
// ProductID is required; the zero value of every other field means "server
// default".
type RequestCartProduct struct {
	ProductID   int          `json:"product_id"`
	ProductSlug string       `json:"product_slug,omitempty"`
	Meta        string       `json:"meta,omitempty"`
	Volume      int          `json:"volume,omitempty"`
	Quantity    *int         `json:"quantity,omitempty"`
	Extra       ProductExtra `json:"extra"`
}

func (p RequestCartProduct) IsRenewal() bool {
	return p.Extra.PurchaseType == RenewalPurchaseType
}

func (p RequestCartProduct) Validate() error {
	if p.ProductID == 0 {
		if p.ProductSlug != "" {
			return fmt.Errorf("%w: product %q", ErrMissingProductID, p.ProductSlug)
		}
		return ErrMissingProductID
	}
	return nil
}

// AnyRenewal reports whether any of products renews a subscription.
func AnyRenewal(products []RequestCartProduct) bool {
	for _, p := range products {
		if p.IsRenewal() {
			return true
		}
	}
	return false
}

// ProductChanges lists the properties to overwrite on an existing cart item.
// Nil fields are left untouched.
type ProductChanges struct {
	ProductID   *int          `json:"product_id,omitempty"`
	ProductSlug *string       `json:"product_slug,omitempty"`
	Meta        *string       `json:"meta,omitempty"`
	Volume      *int          `json:"volume,omitempty"`
	Quantity    *int          `json:"quantity,omitempty"`
	Extra       *ProductExtra `json:"extra,omitempty"`
}

// RequestCart is the body sent to the remote cart endpoint on a write.
type RequestCart struct {
	CartKey   string               `json:"cart_key,omitempty"`
	Products  []RequestCartProduct `json:"products"`
	Coupon    string               `json:"coupon"`
	Temporary bool                 `json:"temporary"`
	Tax       RequestCartTax       `json:"tax"`
}

type RequestCartTax struct {
	DisplayTaxes bool        `json:"display_taxes"`
	Location     TaxLocation `json:"location"`
}

// ConvertResponseCartToRequestCart builds the write body for a local cart.
func ConvertResponseCartToRequestCart(c ResponseCart) RequestCart {
	products := make([]RequestCartProduct, 0, len(c.Products))
	for _, p := range c.Products {
		products = append(products, ConvertResponseCartProductToRequestCartProduct(p))
	}
	return RequestCart{
		CartKey:   c.CartKey,
		Products:  products,
		Coupon:    c.Coupon,
		Temporary: false,
		Tax: RequestCartTax{
			DisplayTaxes: c.Tax.DisplayTaxes,
			Location:     c.Tax.Location,
		},
	}
}

func ConvertResponseCartProductToRequestCartProduct(p ResponseCartProduct) RequestCartProduct {
	return RequestCartProduct{
		ProductID:   p.ProductID,
		ProductSlug: p.ProductSlug,
		Meta:        p.Meta,
		Volume:      p.Volume,
		Quantity:    p.Quantity,
		Extra:       p.Extra,
	}
}
