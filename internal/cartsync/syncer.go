// Package cartsync keeps a cart store in step with the remote cart endpoint.
//
// The Syncer is installed as store middleware. Whenever the store reaches a
// state that needs the remote it issues the call on its own goroutine and
// feeds the result back as an action:
//
//	fresh   -> FETCH_INITIAL_RESPONSE_CART, GetCart -> RECEIVE_INITIAL_RESPONSE_CART | RAISE_ERROR
//	invalid -> REQUEST_UPDATED_RESPONSE_CART, SetCart -> RECEIVE_UPDATED_RESPONSE_CART | RAISE_ERROR
//
// At most one read and one write are in flight per cart. Failures are not
// retried; the next local edit or reload starts a new call.
package cartsync

import (
	"context"
	"sync"
	"time"

	"shopcart/internal/cart"
	"shopcart/internal/domain"
	applog "shopcart/internal/log"
	"shopcart/internal/remote"
)

type Syncer struct {
	cartKey string
	remote  remote.CartService
	ctx     context.Context
	timeout time.Duration

	mu       sync.Mutex
	fetching bool
	writing  bool
}

// New returns a Syncer for cartKey. Remote calls are bound to ctx and, when
// timeout is positive, limited to timeout each.
func New(ctx context.Context, cartKey string, svc remote.CartService, timeout time.Duration) *Syncer {
	return &Syncer{cartKey: cartKey, remote: svc, ctx: ctx, timeout: timeout}
}

func (s *Syncer) Middleware() cart.Middleware {
	return s.handle
}

func (s *Syncer) handle(a cart.Action, st cart.State, dispatch cart.DispatchFunc) {
	// In-flight flags are cleared only once the result has been reduced, so a
	// state observed afterwards already reflects it.
	switch act := a.(type) {
	case cart.ReceiveInitialResponseCart:
		s.setFetching(false)
	case cart.ReceiveUpdatedResponseCart:
		s.setWriting(false)
	case cart.RaiseError:
		if act.Kind == cart.GetServerCartError {
			s.setFetching(false)
		} else {
			s.setWriting(false)
		}
	}
	s.Sync(st, dispatch)
}

// Sync starts the remote call st calls for, if one is not already running.
// It is also used to kick off the initial load of a new store.
func (s *Syncer) Sync(st cart.State, dispatch cart.DispatchFunc) {
	switch st.CacheStatus {
	case cart.CacheFresh:
		if !s.begin(&s.fetching) {
			return
		}
		dispatch(cart.FetchInitialResponseCart{})
		go s.fetch(dispatch)
	case cart.CacheInvalid:
		if !s.begin(&s.writing) {
			return
		}
		req := domain.ConvertResponseCartToRequestCart(st.ResponseCart)
		req.CartKey = s.cartKey
		dispatch(cart.RequestUpdatedResponseCart{})
		go s.write(dispatch, req, st.Generation)
	}
}

func (s *Syncer) begin(flag *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *flag {
		return false
	}
	*flag = true
	return true
}

func (s *Syncer) setFetching(v bool) {
	s.mu.Lock()
	s.fetching = v
	s.mu.Unlock()
}

func (s *Syncer) setWriting(v bool) {
	s.mu.Lock()
	s.writing = v
	s.mu.Unlock()
}

func (s *Syncer) callContext() (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(s.ctx, s.timeout)
	}
	return context.WithCancel(s.ctx)
}

func (s *Syncer) fetch(dispatch cart.DispatchFunc) {
	ctx, cancel := s.callContext()
	defer cancel()

	c, err := s.remote.GetCart(ctx, s.cartKey)
	if err != nil {
		applog.Error(nil, "cart.sync.get", err, map[string]any{"cart_key": s.cartKey})
		dispatch(cart.RaiseError{Kind: cart.GetServerCartError, Message: err.Error()})
		return
	}
	applog.Debug(nil, "cart.sync.get", map[string]any{"cart_key": s.cartKey, "products": len(c.Products)})
	dispatch(cart.ReceiveInitialResponseCart{Cart: c})
}

func (s *Syncer) write(dispatch cart.DispatchFunc, req domain.RequestCart, generation uint64) {
	ctx, cancel := s.callContext()
	defer cancel()

	c, err := s.remote.SetCart(ctx, s.cartKey, req)
	if err != nil {
		applog.Error(nil, "cart.sync.set", err, map[string]any{"cart_key": s.cartKey})
		dispatch(cart.RaiseError{Kind: cart.SetServerCartError, Message: err.Error()})
		return
	}
	applog.Debug(nil, "cart.sync.set", map[string]any{"cart_key": s.cartKey, "generation": generation})
	dispatch(cart.ReceiveUpdatedResponseCart{Cart: c, Generation: generation})
}
