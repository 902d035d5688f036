package cart

import (
	"context"
	"errors"
	"sync"
)

var ErrStoreClosed = errors.New("cart store stopped")

type DispatchFunc func(Action)

// Middleware observes every dispatched action after it has been reduced. It
// runs on the store's loop one turn after the reduction, receives the state
// as of that turn, and may dispatch further actions.
type Middleware func(a Action, s State, dispatch DispatchFunc)

// Store owns the State for a single cart key. All reductions happen on the
// goroutine running Run, in dispatch order.
type Store struct {
	reducer *Reducer

	mu         sync.Mutex
	tasks      []func()
	middleware []Middleware
	subs       map[int]func(State)
	nextSub    int

	wake chan struct{}
	done chan struct{}

	stateMu sync.RWMutex
	state   State

	// only touched from the loop
	waiters []chan State
}

func NewStore(reducer *Reducer, middleware ...Middleware) *Store {
	if reducer == nil {
		reducer = NewReducer(nil)
	}
	return &Store{
		reducer:    reducer,
		middleware: middleware,
		subs:       map[int]func(State){},
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		state:      InitialState(),
	}
}

// Use appends middleware. Middleware added after Run starts sees only the
// actions dispatched from then on.
func (s *Store) Use(mw ...Middleware) {
	s.mu.Lock()
	s.middleware = append(s.middleware, mw...)
	s.mu.Unlock()
}

// Subscribe registers fn to receive every state the store settles on after a
// turn. fn runs on the loop and must not block.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// State returns a snapshot safe to read from any goroutine.
func (s *Store) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.clone()
}

// Dispatch queues a for reduction and returns immediately.
func (s *Store) Dispatch(a Action) {
	s.post(func() { s.apply(a, nil) })
}

// DispatchAndWait dispatches a and blocks until the cart settles (valid or
// error) at or after the reduction of a. A no-op on a settled cart returns
// right away. An error state is reported as a *SyncError.
func (s *Store) DispatchAndWait(ctx context.Context, a Action) (State, error) {
	w := make(chan State, 1)
	s.post(func() { s.apply(a, w) })
	select {
	case st := <-w:
		return st, st.Err()
	case <-ctx.Done():
		return s.State(), ctx.Err()
	case <-s.done:
		return s.State(), ErrStoreClosed
	}
}

// Run drains the task queue until ctx is cancelled.
func (s *Store) Run(ctx context.Context) error {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		task, ok := s.next()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.wake:
			}
			continue
		}
		task()
	}
}

// Done is closed once Run has returned.
func (s *Store) Done() <-chan struct{} { return s.done }

func (s *Store) post(task func()) {
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) next() (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil, false
	}
	task := s.tasks[0]
	s.tasks[0] = nil
	s.tasks = s.tasks[1:]
	return task, true
}

func (s *Store) apply(a Action, w chan State) {
	s.stateMu.RLock()
	prev := s.state
	s.stateMu.RUnlock()

	next := s.reducer.Reduce(prev, a)
	next = s.reducer.Replay(next)

	s.stateMu.Lock()
	s.state = next
	s.stateMu.Unlock()

	s.mu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	mw := append([]Middleware(nil), s.middleware...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next.clone())
	}

	if w != nil {
		s.waiters = append(s.waiters, w)
	}
	if next.CacheStatus.Settled() {
		for _, ch := range s.waiters {
			ch <- next.clone()
		}
		s.waiters = nil
	}
	if len(mw) == 0 {
		return
	}
	// Deferred one turn so middleware never runs inside a reduction and sees
	// the state the reduction settled on.
	s.post(func() {
		st := s.State()
		for _, m := range mw {
			m(a, st, s.Dispatch)
		}
	})
}
