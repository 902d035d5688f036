package cart

import (
	"slices"

	"github.com/google/uuid"

	"shopcart/internal/domain"
)

// Cart functions never modify their input; each returns a cart with a freshly
// allocated product slice.

func newLocalUUID() string {
	return "local-" + uuid.NewString()
}

func removeItemFromResponseCart(c domain.ResponseCart, uuidToRemove string) domain.ResponseCart {
	products := make([]domain.ResponseCartProduct, 0, len(c.Products))
	for _, p := range c.Products {
		if p.UUID != uuidToRemove {
			products = append(products, p)
		}
	}
	c.Products = products
	return c
}

// convertRequestProduct turns a requested product into a placeholder cart item
// that can be targeted by uuid until the server replaces it.
func convertRequestProduct(c domain.ResponseCart, p domain.RequestCartProduct, id string) domain.ResponseCartProduct {
	return domain.ResponseCartProduct{
		ProductID:   p.ProductID,
		ProductSlug: p.ProductSlug,
		Currency:    c.Currency,
		UUID:        id,
		Meta:        p.Meta,
		Volume:      p.Volume,
		Quantity:    p.Quantity,
		Extra:       p.Extra,
	}
}

func addItemsToResponseCart(c domain.ResponseCart, products []domain.RequestCartProduct, newUUID func() string) domain.ResponseCart {
	out := make([]domain.ResponseCartProduct, 0, len(c.Products)+len(products))
	out = append(out, c.Products...)
	for _, p := range products {
		out = append(out, convertRequestProduct(c, p, newUUID()))
	}
	c.Products = out
	return c
}

func replaceAllItemsInResponseCart(c domain.ResponseCart, products []domain.RequestCartProduct, newUUID func() string) domain.ResponseCart {
	out := make([]domain.ResponseCartProduct, 0, len(products))
	for _, p := range products {
		out = append(out, convertRequestProduct(c, p, newUUID()))
	}
	c.Products = out
	return c
}

func replaceItemInResponseCart(c domain.ResponseCart, uuidToReplace string, changes domain.ProductChanges) domain.ResponseCart {
	out := slices.Clone(c.Products)
	if out == nil {
		out = []domain.ResponseCartProduct{}
	}
	for i, p := range out {
		if p.UUID == uuidToReplace {
			out[i] = applyProductChanges(p, changes)
		}
	}
	c.Products = out
	return c
}

func applyProductChanges(p domain.ResponseCartProduct, ch domain.ProductChanges) domain.ResponseCartProduct {
	if ch.ProductID != nil {
		p.ProductID = *ch.ProductID
	}
	if ch.ProductSlug != nil {
		p.ProductSlug = *ch.ProductSlug
	}
	if ch.Meta != nil {
		p.Meta = *ch.Meta
	}
	if ch.Volume != nil {
		p.Volume = *ch.Volume
	}
	if ch.Quantity != nil {
		q := *ch.Quantity
		p.Quantity = &q
	}
	if ch.Extra != nil {
		p.Extra = *ch.Extra
	}
	return p
}

// doesResponseCartContainProductMatching reports whether the item with the
// given uuid already carries every requested change.
func doesResponseCartContainProductMatching(c domain.ResponseCart, uuidToMatch string, ch domain.ProductChanges) bool {
	for _, p := range c.Products {
		if p.UUID != uuidToMatch {
			continue
		}
		if ch.ProductID != nil && p.ProductID != *ch.ProductID {
			continue
		}
		if ch.ProductSlug != nil && p.ProductSlug != *ch.ProductSlug {
			continue
		}
		if ch.Meta != nil && p.Meta != *ch.Meta {
			continue
		}
		if ch.Volume != nil && p.Volume != *ch.Volume {
			continue
		}
		if ch.Quantity != nil && (p.Quantity == nil || *p.Quantity != *ch.Quantity) {
			continue
		}
		if ch.Extra != nil && p.Extra != *ch.Extra {
			continue
		}
		return true
	}
	return false
}

func addCouponToResponseCart(c domain.ResponseCart, coupon string) domain.ResponseCart {
	c.Products = slices.Clone(c.Products)
	c.Coupon = coupon
	c.IsCouponApplied = false
	return c
}

func removeCouponFromResponseCart(c domain.ResponseCart) domain.ResponseCart {
	c.Products = slices.Clone(c.Products)
	c.Coupon = ""
	c.IsCouponApplied = false
	return c
}

func addLocationToResponseCart(c domain.ResponseCart, loc domain.CartLocation) domain.ResponseCart {
	c.Products = slices.Clone(c.Products)
	c.Tax.Location = domain.TaxLocation{
		CountryCode:     loc.CountryCode,
		PostalCode:      loc.PostalCode,
		SubdivisionCode: loc.SubdivisionCode,
	}
	return c
}

func doesCartLocationDifferFromResponseCartLocation(c domain.ResponseCart, loc domain.CartLocation) bool {
	return c.Location() != loc
}
