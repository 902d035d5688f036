package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"shopcart/internal/cart"
	"shopcart/internal/domain"
	applog "shopcart/internal/log"
)

type cartView struct {
	cart.State
	Queued         int      `json:"queuedActions"`
	CachedProducts []string `json:"cachedProducts,omitempty"`
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// respond maps the outcome of a cart action onto an HTTP status. Remote
// failures still return the cart so callers can show what they have.
func (h *CartHandler) respond(c *fiber.Ctx, key string, st cart.State, err error) error {
	var syncErr *cart.SyncError
	switch {
	case err == nil:
		return c.JSON(h.view(key, st))
	case errors.Is(err, domain.ErrMissingProductID):
		return badRequest(c, "product_id", err.Error())
	case errors.As(err, &syncErr):
		applog.Error(c, "cart.sync.fail", err, map[string]any{"cart_key": key})
		return c.Status(fiber.StatusBadGateway).JSON(h.view(key, st))
	case errors.Is(err, context.DeadlineExceeded):
		applog.Error(c, "cart.wait.timeout", err, map[string]any{"cart_key": key})
		return c.Status(fiber.StatusGatewayTimeout).JSON(h.view(key, st))
	case errors.Is(err, cart.ErrStoreClosed):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "cart is shutting down"})
	default:
		return err
	}
}

func (h *CartHandler) view(key string, st cart.State) cartView {
	v := cartView{State: st, Queued: len(st.QueuedActions)}
	if key == domain.NoUserCartKey {
		v.CachedProducts = cart.CachedProductSlugs(h.Cache)
	}
	return v
}
