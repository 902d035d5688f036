package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"shopcart/internal/cart"
	"shopcart/internal/cartsync"
	applog "shopcart/internal/log"
	"shopcart/internal/remote"
)

type RegistryOptions struct {
	Timeout time.Duration

	// IdleTimeout evicts carts not used for this long; zero keeps them until
	// Release or Close.
	IdleTimeout time.Duration

	// MaxCarts caps the running stores; the least recently used settled cart
	// is evicted to make room. Zero means no cap.
	MaxCarts int

	// Clock defaults to time.Now.
	Clock func() time.Time
}

type registryEntry struct {
	svc      *CartService
	cancel   context.CancelFunc
	lastUsed time.Time
}

// Registry holds one running store per cart key.
type Registry struct {
	ctx    context.Context
	cancel context.CancelFunc
	remote remote.CartService
	cache  cart.KeyValueStore
	opts   RegistryOptions

	mu    sync.Mutex
	carts map[string]*registryEntry
	wg    sync.WaitGroup
}

func NewRegistry(ctx context.Context, svc remote.CartService, cache cart.KeyValueStore, opts RegistryOptions) *Registry {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &Registry{
		ctx:    ctx,
		cancel: cancel,
		remote: svc,
		cache:  cache,
		opts:   opts,
		carts:  map[string]*registryEntry{},
	}
	if opts.IdleTimeout > 0 {
		r.wg.Add(1)
		go r.sweep(opts.IdleTimeout)
	}
	return r
}

// Get returns the service for cartKey, starting its store and initial load
// on first use.
func (r *Registry) Get(cartKey string) *CartService {
	r.mu.Lock()
	now := r.opts.Clock()
	if e, ok := r.carts[cartKey]; ok {
		e.lastUsed = now
		r.mu.Unlock()
		return e.svc
	}
	var evicted *registryEntry
	if r.opts.MaxCarts > 0 && len(r.carts) >= r.opts.MaxCarts {
		evicted = r.evictOldestLocked()
	}

	storeCtx, cancel := context.WithCancel(r.ctx)
	reducer := cart.NewReducer(r.cache)
	syncer := cartsync.New(storeCtx, cartKey, r.remote, r.opts.Timeout)
	store := cart.NewStore(reducer, cart.LoggingMiddleware(cartKey), syncer.Middleware())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := store.Run(storeCtx); err != nil && !errors.Is(err, context.Canceled) {
			applog.Error(nil, "cart.store.stop", err, map[string]any{"cart_key": cartKey})
		}
	}()
	syncer.Sync(store.State(), store.Dispatch)

	svc := NewCartService(cartKey, store, r.cache)
	r.carts[cartKey] = &registryEntry{svc: svc, cancel: cancel, lastUsed: now}
	r.mu.Unlock()

	applog.Info(nil, "cart.store.start", map[string]any{"cart_key": cartKey})
	if evicted != nil {
		stopEntry(evicted, "cart.store.evict")
	}
	return svc
}

// Release stops the store for cartKey and forgets it; the next Get starts a
// fresh one that loads from the server again. It reports whether the key
// was running.
func (r *Registry) Release(cartKey string) bool {
	r.mu.Lock()
	e, ok := r.carts[cartKey]
	if ok {
		delete(r.carts, cartKey)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	stopEntry(e, "cart.store.release")
	return true
}

// EvictIdle releases every settled cart unused since IdleTimeout before now
// and returns their keys. Carts with a load or write in flight are kept so
// local edits still reach the server.
func (r *Registry) EvictIdle(now time.Time) []string {
	if r.opts.IdleTimeout <= 0 {
		return nil
	}
	r.mu.Lock()
	var keys []string
	var stale []*registryEntry
	for k, e := range r.carts {
		if now.Sub(e.lastUsed) < r.opts.IdleTimeout || !e.svc.Store.State().CacheStatus.Settled() {
			continue
		}
		delete(r.carts, k)
		keys = append(keys, k)
		stale = append(stale, e)
	}
	r.mu.Unlock()

	for _, e := range stale {
		stopEntry(e, "cart.store.idle")
	}
	sort.Strings(keys)
	return keys
}

// evictOldestLocked removes the least recently used settled entry. r.mu must
// be held; the caller stops the returned entry after unlocking.
func (r *Registry) evictOldestLocked() *registryEntry {
	var oldestKey string
	var oldest *registryEntry
	for k, e := range r.carts {
		if !e.svc.Store.State().CacheStatus.Settled() {
			continue
		}
		if oldest == nil || e.lastUsed.Before(oldest.lastUsed) {
			oldestKey, oldest = k, e
		}
	}
	if oldest == nil {
		applog.Info(nil, "cart.store.full", map[string]any{"carts": len(r.carts), "max": r.opts.MaxCarts})
		return nil
	}
	delete(r.carts, oldestKey)
	return oldest
}

func stopEntry(e *registryEntry, action string) {
	e.cancel()
	<-e.svc.Store.Done()
	applog.Info(nil, action, map[string]any{"cart_key": e.svc.Key})
}

func (r *Registry) sweep(every time.Duration) {
	defer r.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-t.C:
			if keys := r.EvictIdle(r.opts.Clock()); len(keys) > 0 {
				applog.Debug(nil, "cart.store.sweep", map[string]any{"evicted": len(keys)})
			}
		}
	}
}

func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.carts))
	for k := range r.carts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close stops every store and waits for their loops to exit.
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()
}
