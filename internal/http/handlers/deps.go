package handlers

import (
	"time"

	"shopcart/internal/cart"
	"shopcart/internal/config"
	"shopcart/internal/services"
)

type Deps struct {
	CartHandler *CartHandler
}

func NewDeps(cfg config.Config, reg *services.Registry, cache cart.KeyValueStore) *Deps {
	wait := cfg.RemoteTimeout * 2
	if wait <= 0 {
		wait = 20 * time.Second
	}
	return &Deps{
		CartHandler: &CartHandler{Carts: reg, Cache: cache, Wait: wait},
	}
}
