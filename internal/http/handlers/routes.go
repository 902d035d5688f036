package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "shopcart/internal/log"
)

const friendlyError = "Something went wrong. Please try again."

// ErrorHandler logs err and answers with a generic message. Errors raised
// with fiber.NewError below 500 keep their status and message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": friendlyError})
}

type AppOptions struct {
	// RateLimit caps requests per IP per minute; zero means 60.
	RateLimit  int
	AccessLogs bool
}

// NewApp builds the HTTP surface over deps.
func NewApp(deps *Deps, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	limit := opts.RateLimit
	if limit <= 0 {
		limit = 60
	}

	app.Use(requestid.New())
	if opts.AccessLogs {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.cart.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	h := deps.CartHandler
	app.Get("/carts/:key", h.View)
	app.Delete("/carts/:key", h.Release)
	carts := app.Group("/carts/:key")
	carts.Post("/products", h.AddProducts)
	carts.Put("/products", h.ReplaceProducts)
	carts.Patch("/products/:uuid", h.ReplaceProduct)
	carts.Delete("/products/:uuid", h.RemoveProduct)
	carts.Post("/coupon", h.ApplyCoupon)
	carts.Delete("/coupon", h.RemoveCoupon)
	carts.Put("/location", h.SetLocation)
	carts.Post("/reload", h.Reload)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "carts": len(h.Carts.Keys())})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}
