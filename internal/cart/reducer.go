package cart

import (
	"slices"

	"shopcart/internal/domain"
	applog "shopcart/internal/log"
)

const (
	getCartErrorMessage = "Error while fetching the shopping cart. Please check your network connection and try again."
	setCartErrorMessage = "Error while updating the shopping cart endpoint. Please check your network connection and try again."
)

// Reducer applies actions to a State. Reduce has no effect outside the
// returned state except pruning the product-slug cache on anonymous updates.
type Reducer struct {
	Cache   KeyValueStore
	NewUUID func() string
}

func NewReducer(cache KeyValueStore) *Reducer {
	return &Reducer{Cache: cache, NewUUID: newLocalUUID}
}

// queueingStatuses are the cache statuses in which local edits wait instead
// of applying: before the first snapshot, and while a write is in flight.
var queueingStatuses = []CacheStatus{CacheFresh, CacheFreshPending, CachePending}

func shouldQueue(status CacheStatus, a Action) bool {
	if alwaysAllowed(a) {
		return false
	}
	return slices.Contains(queueingStatuses, status)
}

func (r *Reducer) Reduce(state State, a Action) State {
	// Edits applied now would be overwritten by the snapshot or write response
	// on its way, so they wait in the queue and replay once it has landed.
	if shouldQueue(state.CacheStatus, a) {
		if _, ok := a.(CartReload); ok {
			applog.Debug(nil, "cart.reload.ignored", map[string]any{"cache_status": state.CacheStatus})
			return state
		}
		applog.Debug(nil, "cart.queue", map[string]any{"type": a.Type()})
		next := state
		next.QueuedActions = append(slices.Clone(state.QueuedActions), a)
		return next
	}

	applog.Debug(nil, "cart.reduce", map[string]any{"type": a.Type(), "cache_status": state.CacheStatus})
	couponStatus := state.CouponStatus
	next := state

	switch act := a.(type) {
	case FetchInitialResponseCart:
		next.CacheStatus = CacheFreshPending
		return next

	case CartReload:
		next = InitialState()
		next.Generation = state.Generation + 1
		return next

	case ClearQueuedActions:
		next.QueuedActions = []Action{}
		return next

	case RemoveCartItem:
		next.ResponseCart = removeItemFromResponseCart(state.ResponseCart, act.UUID)
		next.CacheStatus = CacheInvalid
		next.Generation = state.Generation + 1
		return next

	case AddProducts:
		if act.SeparateRenewals && state.ResponseCart.ContainsRenewal() != domain.AnyRenewal(act.Products) {
			applog.Debug(nil, "cart.add.replaces", map[string]any{"count": len(act.Products)})
			next.ResponseCart = replaceAllItemsInResponseCart(state.ResponseCart, act.Products, r.newUUID)
		} else {
			next.ResponseCart = addItemsToResponseCart(state.ResponseCart, act.Products, r.newUUID)
		}
		next.CacheStatus = CacheInvalid
		next.Generation = state.Generation + 1
		return next

	case ReplaceAllProducts:
		next.ResponseCart = replaceAllItemsInResponseCart(state.ResponseCart, act.Products, r.newUUID)
		next.CacheStatus = CacheInvalid
		next.Generation = state.Generation + 1
		return next

	case ReplaceProduct:
		if doesResponseCartContainProductMatching(state.ResponseCart, act.UUID, act.Changes) {
			applog.Debug(nil, "cart.replace.unchanged", map[string]any{"uuid": act.UUID})
			return state
		}
		next.ResponseCart = replaceItemInResponseCart(state.ResponseCart, act.UUID, act.Changes)
		next.CacheStatus = CacheInvalid
		next.Generation = state.Generation + 1
		return next

	case RemoveCoupon:
		if couponStatus != CouponApplied {
			applog.Debug(nil, "cart.coupon.remove.skipped", map[string]any{"coupon_status": couponStatus})
			return state
		}
		next.ResponseCart = removeCouponFromResponseCart(state.ResponseCart)
		next.CouponStatus = CouponFresh
		next.CacheStatus = CacheInvalid
		next.Generation = state.Generation + 1
		return next

	case AddCoupon:
		if (couponStatus == CouponApplied || couponStatus == CouponPending) && act.Coupon == state.ResponseCart.Coupon {
			applog.Debug(nil, "cart.coupon.add.skipped", map[string]any{"coupon_status": couponStatus})
			return state
		}
		next.ResponseCart = addCouponToResponseCart(state.ResponseCart, act.Coupon)
		next.CouponStatus = CouponPending
		next.CacheStatus = CacheInvalid
		next.Generation = state.Generation + 1
		return next

	case ReceiveInitialResponseCart:
		next.ResponseCart = act.Cart
		next.CouponStatus = UpdatedCouponStatus(couponStatus, act.Cart)
		next.CacheStatus = CacheValid
		return next

	case RequestUpdatedResponseCart:
		next.CacheStatus = CachePending
		return next

	case ReceiveUpdatedResponseCart:
		// A response to an older write misses later local edits; keep the local
		// cart and let it be written again.
		if act.Generation != 0 && act.Generation != state.Generation {
			applog.Debug(nil, "cart.receive.stale", map[string]any{"generation": act.Generation, "current": state.Generation})
			next.CacheStatus = CacheInvalid
			return next
		}
		if act.Cart.CartKey == domain.NoUserCartKey {
			pruneProductSlugCache(r.Cache, act.Cart.ProductSlugs())
		}
		next.ResponseCart = act.Cart
		next.CouponStatus = UpdatedCouponStatus(couponStatus, act.Cart)
		next.CacheStatus = CacheValid
		return next

	case RaiseError:
		var msg string
		switch act.Kind {
		case GetServerCartError:
			msg = getCartErrorMessage
		case SetServerCartError:
			msg = setCartErrorMessage
		default:
			return state
		}
		if act.Message != "" {
			msg = act.Message
		}
		next.CacheStatus = CacheError
		next.LoadingError = msg
		next.LoadingErrorType = act.Kind
		return next

	case SetLocation:
		if !doesCartLocationDifferFromResponseCartLocation(state.ResponseCart, act.Location) {
			applog.Debug(nil, "cart.location.unchanged", nil)
			return state
		}
		next.ResponseCart = addLocationToResponseCart(state.ResponseCart, act.Location)
		next.CacheStatus = CacheInvalid
		next.Generation = state.Generation + 1
		return next
	}
	return state
}

func (r *Reducer) newUUID() string {
	if r.NewUUID == nil {
		return newLocalUUID()
	}
	return r.NewUUID()
}

// Replay runs the queued actions, in the order they arrived, once a snapshot
// has loaded. States without a loaded cart or without queued actions are
// returned as they are.
func (r *Reducer) Replay(state State) State {
	if state.CacheStatus != CacheValid || len(state.QueuedActions) == 0 {
		return state
	}
	queued := state.QueuedActions
	applog.Debug(nil, "cart.queue.replay", map[string]any{"count": len(queued)})
	state = r.Reduce(state, ClearQueuedActions{})
	for _, a := range queued {
		state = r.Reduce(state, a)
	}
	return state
}

// UpdatedCouponStatus derives the coupon status after a server snapshot: a
// pending coupon the server did not apply is rejected.
func UpdatedCouponStatus(current CouponStatus, c domain.ResponseCart) CouponStatus {
	if c.IsCouponApplied {
		return CouponApplied
	}
	if current == CouponPending {
		return CouponRejected
	}
	return CouponFresh
}
