package cart

import applog "shopcart/internal/log"

// LoggingMiddleware debug-logs every action with the cart status it produced.
func LoggingMiddleware(cartKey string) Middleware {
	return func(a Action, s State, _ DispatchFunc) {
		applog.Debug(nil, "cart.action", map[string]any{
			"cart_key":      cartKey,
			"type":          a.Type(),
			"cache_status":  s.CacheStatus,
			"coupon_status": s.CouponStatus,
			"queued":        len(s.QueuedActions),
		})
	}
}
