package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcart/internal/domain"
)

func TestReduce_QueuesUntilLoaded(t *testing.T) {
	r := testReducer(nil)
	add := AddProducts{Products: []domain.RequestCartProduct{{ProductID: 1009, ProductSlug: "personal-bundle"}}}
	coupon := AddCoupon{Coupon: "SAVE10"}

	st := r.Reduce(InitialState(), add)
	st = r.Reduce(st, FetchInitialResponseCart{})
	require.Equal(t, CacheFreshPending, st.CacheStatus)
	st = r.Reduce(st, coupon)

	assert.Equal(t, []Action{add, coupon}, st.QueuedActions)
	assert.Empty(t, st.ResponseCart.Products)
	assert.Equal(t, "", st.ResponseCart.Coupon)
	assert.Equal(t, CouponFresh, st.CouponStatus)
}

func TestReduce_QueueDoesNotAliasPreviousState(t *testing.T) {
	r := testReducer(nil)
	first := r.Reduce(InitialState(), RemoveCartItem{UUID: "a"})
	second := r.Reduce(first, RemoveCartItem{UUID: "b"})

	assert.Len(t, first.QueuedActions, 1)
	assert.Len(t, second.QueuedActions, 2)
}

func TestReduce_ReloadIgnoredWhileLoading(t *testing.T) {
	r := testReducer(nil)
	st := r.Reduce(InitialState(), FetchInitialResponseCart{})
	st = r.Reduce(st, RemoveCoupon{})

	next := r.Reduce(st, CartReload{})
	assert.Equal(t, st, next)
}

func TestReduce_ReloadResetsLoadedCart(t *testing.T) {
	r := testReducer(nil)
	st := loadedState(r, serverCart("1", product(1009, "personal-bundle", "product001")))
	st = r.Reduce(st, RemoveCartItem{UUID: "product001"})
	gen := st.Generation

	st = r.Reduce(st, CartReload{})
	assert.Equal(t, CacheFresh, st.CacheStatus)
	assert.Equal(t, CouponFresh, st.CouponStatus)
	assert.Empty(t, st.ResponseCart.Products)
	assert.Empty(t, st.QueuedActions)
	assert.Equal(t, gen+1, st.Generation)
}

func TestReplay_AppliesQueueInOrder(t *testing.T) {
	r := testReducer(nil)
	st := r.Reduce(InitialState(), FetchInitialResponseCart{})
	st = r.Reduce(st, AddProducts{Products: []domain.RequestCartProduct{{ProductID: 1010, ProductSlug: "business-bundle"}}})
	st = r.Reduce(st, RemoveCartItem{UUID: "product001"})
	st = r.Reduce(st, AddCoupon{Coupon: "SAVE10"})

	st = r.Reduce(st, ReceiveInitialResponseCart{Cart: serverCart("1", product(1009, "personal-bundle", "product001"))})
	require.Equal(t, CacheValid, st.CacheStatus)
	require.Len(t, st.QueuedActions, 3)

	st = r.Replay(st)
	assert.Empty(t, st.QueuedActions)
	assert.Equal(t, CacheInvalid, st.CacheStatus)
	require.Len(t, st.ResponseCart.Products, 1)
	assert.Equal(t, 1010, st.ResponseCart.Products[0].ProductID)
	assert.Equal(t, "local-1", st.ResponseCart.Products[0].UUID)
	assert.Equal(t, "SAVE10", st.ResponseCart.Coupon)
	assert.Equal(t, CouponPending, st.CouponStatus)
}

func TestReplay_LeavesUnloadedStateAlone(t *testing.T) {
	r := testReducer(nil)
	st := r.Reduce(InitialState(), RemoveCoupon{})
	assert.Equal(t, st, r.Replay(st))

	loaded := loadedState(r, serverCart("1"))
	assert.Equal(t, loaded, r.Replay(loaded))
}

func TestReduce_AddCouponIdempotent(t *testing.T) {
	r := testReducer(nil)
	c := serverCart("1", product(1009, "personal-bundle", "product001"))
	c.Coupon = "SAVE10"
	c.IsCouponApplied = true
	st := loadedState(r, c)
	require.Equal(t, CouponApplied, st.CouponStatus)

	assert.Equal(t, st, r.Reduce(st, AddCoupon{Coupon: "SAVE10"}))

	pending := r.Reduce(loadedState(r, serverCart("1")), AddCoupon{Coupon: "OTHER"})
	require.Equal(t, CouponPending, pending.CouponStatus)
	assert.Equal(t, pending, r.Reduce(pending, AddCoupon{Coupon: "OTHER"}))

	changed := r.Reduce(st, AddCoupon{Coupon: "OTHER"})
	assert.Equal(t, "OTHER", changed.ResponseCart.Coupon)
	assert.False(t, changed.ResponseCart.IsCouponApplied)
	assert.Equal(t, CouponPending, changed.CouponStatus)
	assert.Equal(t, CacheInvalid, changed.CacheStatus)
}

func TestReduce_RemoveCouponNeedsAppliedCoupon(t *testing.T) {
	r := testReducer(nil)
	st := loadedState(r, serverCart("1"))
	assert.Equal(t, st, r.Reduce(st, RemoveCoupon{}))

	c := serverCart("1")
	c.Coupon = "SAVE10"
	c.IsCouponApplied = true
	st = loadedState(r, c)
	st = r.Reduce(st, RemoveCoupon{})
	assert.Equal(t, "", st.ResponseCart.Coupon)
	assert.False(t, st.ResponseCart.IsCouponApplied)
	assert.Equal(t, CouponFresh, st.CouponStatus)
	assert.Equal(t, CacheInvalid, st.CacheStatus)
}

func TestReduce_SetLocationOnlyWhenChanged(t *testing.T) {
	r := testReducer(nil)
	c := serverCart("1")
	c.Tax.Location = domain.TaxLocation{CountryCode: "US", PostalCode: "10001"}
	st := loadedState(r, c)

	same := domain.CartLocation{CountryCode: "US", PostalCode: "10001"}
	assert.Equal(t, st, r.Reduce(st, SetLocation{Location: same}))

	moved := domain.CartLocation{CountryCode: "CA", PostalCode: "K1A 0B1", SubdivisionCode: "ON"}
	next := r.Reduce(st, SetLocation{Location: moved})
	assert.Equal(t, CacheInvalid, next.CacheStatus)
	assert.Equal(t, moved, next.ResponseCart.Location())
	// the previous state is untouched
	assert.Equal(t, "US", st.ResponseCart.Tax.Location.CountryCode)
}

func TestReduce_AddProductRoundTrip(t *testing.T) {
	r := testReducer(nil)
	st := loadedState(r, serverCart("1"))

	st = r.Reduce(st, AddProducts{Products: []domain.RequestCartProduct{{ProductID: 1009, ProductSlug: "personal-bundle"}}})
	require.Equal(t, CacheInvalid, st.CacheStatus)
	require.Len(t, st.ResponseCart.Products, 1)
	assert.Equal(t, 1009, st.ResponseCart.Products[0].ProductID)
	assert.Equal(t, "personal-bundle", st.ResponseCart.Products[0].ProductSlug)

	st = r.Reduce(st, RequestUpdatedResponseCart{})
	assert.Equal(t, CachePending, st.CacheStatus)

	server := serverCart("1", product(1009, "personal-bundle", "product001"))
	st = r.Reduce(st, ReceiveUpdatedResponseCart{Cart: server})
	assert.Equal(t, CacheValid, st.CacheStatus)
	assert.Equal(t, server, st.ResponseCart)
}

func TestReduce_RemoveCartItemByUUID(t *testing.T) {
	r := testReducer(nil)
	st := loadedState(r, serverCart("1",
		product(1009, "personal-bundle", "product001"),
		product(1010, "business-bundle", "product002"),
	))
	next := r.Reduce(st, RemoveCartItem{UUID: "product001"})

	require.Len(t, next.ResponseCart.Products, 1)
	assert.Equal(t, "product002", next.ResponseCart.Products[0].UUID)
	assert.Equal(t, CacheInvalid, next.CacheStatus)
	assert.Len(t, st.ResponseCart.Products, 2)
}

func TestReduce_ReplaceProduct(t *testing.T) {
	r := testReducer(nil)
	p := product(1009, "personal-bundle", "product001")
	p.Volume = 1
	st := loadedState(r, serverCart("1", p))

	vol := 1
	assert.Equal(t, st, r.Reduce(st, ReplaceProduct{UUID: "product001", Changes: domain.ProductChanges{Volume: &vol}}))

	id, slug := 1010, "business-bundle"
	next := r.Reduce(st, ReplaceProduct{UUID: "product001", Changes: domain.ProductChanges{ProductID: &id, ProductSlug: &slug}})
	require.Len(t, next.ResponseCart.Products, 1)
	assert.Equal(t, 1010, next.ResponseCart.Products[0].ProductID)
	assert.Equal(t, "business-bundle", next.ResponseCart.Products[0].ProductSlug)
	assert.Equal(t, 1, next.ResponseCart.Products[0].Volume)
	assert.Equal(t, CacheInvalid, next.CacheStatus)
}

func TestReduce_PendingCouponRejected(t *testing.T) {
	r := testReducer(nil)
	st := loadedState(r, serverCart("1"))
	st = r.Reduce(st, AddCoupon{Coupon: "BOGUS"})
	st = r.Reduce(st, RequestUpdatedResponseCart{})

	server := serverCart("1")
	server.Coupon = "BOGUS"
	st = r.Reduce(st, ReceiveUpdatedResponseCart{Cart: server})
	assert.Equal(t, CouponRejected, st.CouponStatus)
	assert.Equal(t, CacheValid, st.CacheStatus)
}

func TestUpdatedCouponStatus(t *testing.T) {
	applied := serverCart("1")
	applied.Coupon = "X"
	applied.IsCouponApplied = true
	plain := serverCart("1")

	tests := []struct {
		name    string
		current CouponStatus
		cart    domain.ResponseCart
		want    CouponStatus
	}{
		{"applied wins", CouponPending, applied, CouponApplied},
		{"pending rejected", CouponPending, plain, CouponRejected},
		{"rejected resets", CouponRejected, plain, CouponFresh},
		{"applied dropped", CouponApplied, plain, CouponFresh},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UpdatedCouponStatus(tc.current, tc.cart))
		})
	}
}

func TestReduce_RaiseError(t *testing.T) {
	r := testReducer(nil)
	st := r.Reduce(InitialState(), FetchInitialResponseCart{})

	got := r.Reduce(st, RaiseError{Kind: GetServerCartError})
	assert.Equal(t, CacheError, got.CacheStatus)
	assert.Equal(t, GetServerCartError, got.LoadingErrorType)
	assert.Equal(t, getCartErrorMessage, got.LoadingError)

	got = r.Reduce(st, RaiseError{Kind: SetServerCartError, Message: "boom"})
	assert.Equal(t, "boom", got.LoadingError)

	var se *SyncError
	require.ErrorAs(t, got.Err(), &se)
	assert.Equal(t, SetServerCartError, se.Type)

	assert.Equal(t, st, r.Reduce(st, RaiseError{Kind: "SOMETHING_ELSE"}))
}

func TestReduce_PrunesSlugCacheForAnonymousCart(t *testing.T) {
	kv := newMemKV()
	kv.data[ProductSlugCacheKey] = `[{"product_slug":"personal-bundle","extra":1},{"product_slug":"business-bundle"}]`
	r := testReducer(kv)

	st := loadedState(r, serverCart(domain.NoUserCartKey))
	r.Reduce(st, ReceiveUpdatedResponseCart{Cart: serverCart(domain.NoUserCartKey, product(1009, "personal-bundle", "product001"))})
	assert.JSONEq(t, `[{"product_slug":"personal-bundle","extra":1}]`, kv.data[ProductSlugCacheKey])

	r.Reduce(st, ReceiveUpdatedResponseCart{Cart: serverCart("1")})
	assert.JSONEq(t, `[{"product_slug":"personal-bundle","extra":1}]`, kv.data[ProductSlugCacheKey])
}

func TestReduce_QueuesWhileWriting(t *testing.T) {
	r := testReducer(nil)
	st := loadedState(r, serverCart("1", product(1009, "personal-bundle", "product001")))
	st = r.Reduce(st, AddCoupon{Coupon: "SAVE10"})
	st = r.Reduce(st, RequestUpdatedResponseCart{})
	issued := st.Generation

	add := AddProducts{Products: []domain.RequestCartProduct{{ProductID: 1010, ProductSlug: "business-bundle"}}}
	st = r.Reduce(st, add)
	assert.Equal(t, []Action{add}, st.QueuedActions)
	assert.Equal(t, CachePending, st.CacheStatus)
	assert.Equal(t, issued, st.Generation)
	require.Len(t, st.ResponseCart.Products, 1)

	assert.Equal(t, st, r.Reduce(st, CartReload{}))

	server := serverCart("1", product(1009, "personal-bundle", "product001"))
	server.Coupon = "SAVE10"
	server.IsCouponApplied = true
	st = r.Replay(r.Reduce(st, ReceiveUpdatedResponseCart{Cart: server, Generation: issued}))
	assert.Empty(t, st.QueuedActions)
	assert.Equal(t, CacheInvalid, st.CacheStatus)
	require.Len(t, st.ResponseCart.Products, 2)
	assert.Equal(t, 1010, st.ResponseCart.Products[1].ProductID)
	assert.Equal(t, "SAVE10", st.ResponseCart.Coupon)
	assert.Equal(t, CouponApplied, st.CouponStatus)
}

func TestReduce_StaleResponseKeepsLocalCart(t *testing.T) {
	r := testReducer(nil)
	st := loadedState(r, serverCart("1", product(1009, "personal-bundle", "product001")))
	st = r.Reduce(st, RemoveCartItem{UUID: "product001"})
	issued := st.Generation
	// A second edit reduced before the write was marked pending.
	st = r.Reduce(st, AddCoupon{Coupon: "SAVE10"})
	st = r.Reduce(st, RequestUpdatedResponseCart{})
	require.Equal(t, issued+1, st.Generation)

	stale := r.Reduce(st, ReceiveUpdatedResponseCart{Cart: serverCart("1"), Generation: issued})
	assert.Equal(t, CacheInvalid, stale.CacheStatus)
	assert.Equal(t, st.ResponseCart, stale.ResponseCart)
	assert.Equal(t, CouponPending, stale.CouponStatus)
	assert.Equal(t, st.Generation, stale.Generation)

	current := r.Reduce(st, ReceiveUpdatedResponseCart{Cart: serverCart("1"), Generation: st.Generation})
	assert.Equal(t, CacheValid, current.CacheStatus)

	untagged := r.Reduce(st, ReceiveUpdatedResponseCart{Cart: serverCart("1")})
	assert.Equal(t, CacheValid, untagged.CacheStatus)
}

func TestReduce_AddProductsSeparatesRenewals(t *testing.T) {
	renewal := product(1009, "personal-bundle", "product001")
	renewal.Extra = domain.ProductExtra{PurchaseType: domain.RenewalPurchaseType, PurchaseID: "42"}
	plain := domain.RequestCartProduct{ProductID: 1010, ProductSlug: "business-bundle"}
	renew := domain.RequestCartProduct{ProductID: 1010, ProductSlug: "business-bundle", Extra: domain.ProductExtra{PurchaseType: domain.RenewalPurchaseType}}

	tests := []struct {
		name string
		add  AddProducts
		want []int
	}{
		{"plain add mixes", AddProducts{Products: []domain.RequestCartProduct{plain}}, []int{1009, 1010}},
		{"new purchase replaces renewals", AddProducts{Products: []domain.RequestCartProduct{plain}, SeparateRenewals: true}, []int{1010}},
		{"renewal joins renewals", AddProducts{Products: []domain.RequestCartProduct{renew}, SeparateRenewals: true}, []int{1009, 1010}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := testReducer(nil)
			// Queued before the renewal cart loaded, decided on replay.
			st := r.Reduce(InitialState(), FetchInitialResponseCart{})
			st = r.Reduce(st, tc.add)
			st = r.Replay(r.Reduce(st, ReceiveInitialResponseCart{Cart: serverCart("1", renewal)}))

			got := []int{}
			for _, p := range st.ResponseCart.Products {
				got = append(got, p.ProductID)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, CacheInvalid, st.CacheStatus)
		})
	}
}

func TestReduce_UnchangedActionsKeepGeneration(t *testing.T) {
	r := testReducer(nil)
	st := loadedState(r, serverCart("1"))
	st = r.Reduce(st, RequestUpdatedResponseCart{})
	st = r.Reduce(st, ReceiveUpdatedResponseCart{Cart: serverCart("1")})
	st = r.Reduce(st, RemoveCoupon{})
	assert.Zero(t, st.Generation)
}
