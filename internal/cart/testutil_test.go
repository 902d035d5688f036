package cart

import (
	"errors"
	"fmt"
	"sync"

	"shopcart/internal/domain"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.data[key], nil
}

func (m *memKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

var errKV = errors.New("storage unavailable")

func seqUUIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("local-%d", n)
	}
}

func testReducer(cache KeyValueStore) *Reducer {
	r := NewReducer(cache)
	r.NewUUID = seqUUIDs()
	return r
}

func product(id int, slug, uuid string) domain.ResponseCartProduct {
	return domain.ResponseCartProduct{ProductID: id, ProductSlug: slug, UUID: uuid, Currency: "USD"}
}

func serverCart(key string, products ...domain.ResponseCartProduct) domain.ResponseCart {
	c := domain.EmptyResponseCart()
	c.CartKey = key
	c.Products = append(c.Products, products...)
	return c
}

// loadedState is the state right after the first snapshot arrived.
func loadedState(r *Reducer, c domain.ResponseCart) State {
	return r.Reduce(InitialState(), ReceiveInitialResponseCart{Cart: c})
}
