package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"shopcart/internal/cart"
	"shopcart/internal/domain"
	applog "shopcart/internal/log"
	"shopcart/internal/services"
	"shopcart/internal/validate"
)

type CartHandler struct {
	Carts *services.Registry
	Cache cart.KeyValueStore
	// Wait bounds how long a request waits for the cart to settle.
	Wait time.Duration
}

type productsBody struct {
	Products []domain.RequestCartProduct `json:"products"`
}

type couponBody struct {
	Coupon string `json:"coupon"`
}

func (h *CartHandler) service(c *fiber.Ctx) (*services.CartService, string, bool) {
	key, ok := validate.CartKey(c.Params("key"))
	if !ok {
		return nil, "", false
	}
	return h.Carts.Get(key), key, true
}

func (h *CartHandler) waitCtx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.Wait)
}

type fieldError struct {
	field, msg string
}

func (h *CartHandler) products(c *fiber.Ctx) ([]domain.RequestCartProduct, *fieldError) {
	var body productsBody
	if err := c.BodyParser(&body); err != nil {
		return nil, &fieldError{"body", "invalid JSON body"}
	}
	if len(body.Products) == 0 {
		return nil, &fieldError{"products", "no products given"}
	}
	for i, p := range body.Products {
		if !validate.ProductID(p.ProductID) {
			return nil, &fieldError{"product_id", "every product needs a product_id"}
		}
		slug, ok := validate.Slug(p.ProductSlug)
		if !ok {
			return nil, &fieldError{"product_slug", "invalid product_slug"}
		}
		if !validate.Quantity(p.Quantity) {
			return nil, &fieldError{"quantity", "invalid quantity"}
		}
		body.Products[i].ProductSlug = slug
	}
	return body.Products, nil
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	svc, key, ok := h.service(c)
	if !ok {
		return badRequest(c, "key", "invalid cart key")
	}
	return c.JSON(h.view(key, svc.State()))
}

func (h *CartHandler) AddProducts(c *fiber.Ctx) error {
	svc, key, ok := h.service(c)
	if !ok {
		return badRequest(c, "key", "invalid cart key")
	}
	products, ferr := h.products(c)
	if ferr != nil {
		return badRequest(c, ferr.field, ferr.msg)
	}
	ctx, cancel := h.waitCtx(c)
	defer cancel()
	st, err := svc.AddProductsToCart(ctx, products)
	applog.Audit(c, "cart.products.add", map[string]any{"cart_key": key, "count": len(products)})
	return h.respond(c, key, st, err)
}

func (h *CartHandler) ReplaceProducts(c *fiber.Ctx) error {
	svc, key, ok := h.service(c)
	if !ok {
		return badRequest(c, "key", "invalid cart key")
	}
	products, ferr := h.products(c)
	if ferr != nil {
		return badRequest(c, ferr.field, ferr.msg)
	}
	ctx, cancel := h.waitCtx(c)
	defer cancel()
	st, err := svc.ReplaceProductsInCart(ctx, products)
	applog.Audit(c, "cart.products.replace_all", map[string]any{"cart_key": key, "count": len(products)})
	return h.respond(c, key, st, err)
}

func (h *CartHandler) ReplaceProduct(c *fiber.Ctx) error {
	svc, key, ok := h.service(c)
	if !ok {
		return badRequest(c, "key", "invalid cart key")
	}
	id, ok := validate.UUID(c.Params("uuid"))
	if !ok {
		return badRequest(c, "uuid", "invalid uuid")
	}
	var changes domain.ProductChanges
	if err := c.BodyParser(&changes); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	if changes.ProductID != nil && !validate.ProductID(*changes.ProductID) {
		return badRequest(c, "product_id", "invalid product_id")
	}
	if !validate.Quantity(changes.Quantity) {
		return badRequest(c, "quantity", "invalid quantity")
	}
	ctx, cancel := h.waitCtx(c)
	defer cancel()
	st, err := svc.ReplaceProductInCart(ctx, id, changes)
	applog.Audit(c, "cart.product.replace", map[string]any{"cart_key": key, "uuid": id})
	return h.respond(c, key, st, err)
}

func (h *CartHandler) RemoveProduct(c *fiber.Ctx) error {
	svc, key, ok := h.service(c)
	if !ok {
		return badRequest(c, "key", "invalid cart key")
	}
	id, ok := validate.UUID(c.Params("uuid"))
	if !ok {
		return badRequest(c, "uuid", "invalid uuid")
	}
	ctx, cancel := h.waitCtx(c)
	defer cancel()
	st, err := svc.RemoveProductFromCart(ctx, id)
	applog.Audit(c, "cart.product.remove", map[string]any{"cart_key": key, "uuid": id})
	return h.respond(c, key, st, err)
}

func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	svc, key, ok := h.service(c)
	if !ok {
		return badRequest(c, "key", "invalid cart key")
	}
	var body couponBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	coupon, ok := validate.Coupon(body.Coupon)
	if !ok {
		return badRequest(c, "coupon", "invalid coupon code")
	}
	ctx, cancel := h.waitCtx(c)
	defer cancel()
	st, err := svc.ApplyCoupon(ctx, coupon)
	applog.Audit(c, "cart.coupon.apply", map[string]any{"cart_key": key, "coupon": coupon})
	return h.respond(c, key, st, err)
}

func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	svc, key, ok := h.service(c)
	if !ok {
		return badRequest(c, "key", "invalid cart key")
	}
	ctx, cancel := h.waitCtx(c)
	defer cancel()
	st, err := svc.RemoveCoupon(ctx)
	applog.Audit(c, "cart.coupon.remove", map[string]any{"cart_key": key})
	return h.respond(c, key, st, err)
}

func (h *CartHandler) SetLocation(c *fiber.Ctx) error {
	svc, key, ok := h.service(c)
	if !ok {
		return badRequest(c, "key", "invalid cart key")
	}
	var loc domain.CartLocation
	if err := c.BodyParser(&loc); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	var okCountry, okPostal, okSubdiv bool
	loc.CountryCode, okCountry = validate.Country(loc.CountryCode)
	loc.PostalCode, okPostal = validate.Postal(loc.PostalCode)
	loc.SubdivisionCode, okSubdiv = validate.Subdivision(loc.SubdivisionCode)
	switch {
	case !okCountry:
		return badRequest(c, "countryCode", "enter a valid country code")
	case !okPostal:
		return badRequest(c, "postalCode", "enter a valid postal code")
	case !okSubdiv:
		return badRequest(c, "subdivisionCode", "enter a valid subdivision code")
	}
	ctx, cancel := h.waitCtx(c)
	defer cancel()
	st, err := svc.UpdateLocation(ctx, loc)
	applog.Audit(c, "cart.location.set", map[string]any{"cart_key": key, "country": loc.CountryCode})
	return h.respond(c, key, st, err)
}

func (h *CartHandler) Reload(c *fiber.Ctx) error {
	svc, key, ok := h.service(c)
	if !ok {
		return badRequest(c, "key", "invalid cart key")
	}
	ctx, cancel := h.waitCtx(c)
	defer cancel()
	st, err := svc.ReloadFromServer(ctx)
	applog.Info(c, "cart.reload", map[string]any{"cart_key": key})
	return h.respond(c, key, st, err)
}

// Release stops the running store for the key; the next request loads the
// cart from the server again.
func (h *CartHandler) Release(c *fiber.Ctx) error {
	key, ok := validate.CartKey(c.Params("key"))
	if !ok {
		return badRequest(c, "key", "invalid cart key")
	}
	if !h.Carts.Release(key) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cart not loaded"})
	}
	applog.Audit(c, "cart.release", map[string]any{"cart_key": key})
	return c.SendStatus(fiber.StatusNoContent)
}
