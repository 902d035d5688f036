package cart

import "shopcart/internal/domain"

type ActionType string

const (
	FetchInitialResponseCartType   ActionType = "FETCH_INITIAL_RESPONSE_CART"
	ReceiveInitialResponseCartType ActionType = "RECEIVE_INITIAL_RESPONSE_CART"
	CartReloadType                 ActionType = "CART_RELOAD"
	ClearQueuedActionsType         ActionType = "CLEAR_QUEUED_ACTIONS"
	RemoveCartItemType             ActionType = "REMOVE_CART_ITEM"
	AddProductsType                ActionType = "CART_PRODUCTS_ADD"
	ReplaceAllProductsType         ActionType = "CART_PRODUCTS_REPLACE_ALL"
	ReplaceProductType             ActionType = "CART_PRODUCT_REPLACE"
	AddCouponType                  ActionType = "ADD_COUPON"
	RemoveCouponType               ActionType = "REMOVE_COUPON"
	SetLocationType                ActionType = "SET_LOCATION"
	RequestUpdatedResponseCartType ActionType = "REQUEST_UPDATED_RESPONSE_CART"
	ReceiveUpdatedResponseCartType ActionType = "RECEIVE_UPDATED_RESPONSE_CART"
	RaiseErrorType                 ActionType = "RAISE_ERROR"
)

// Action is a closed set of cart commands. Only the types in this file
// implement it.
type Action interface {
	Type() ActionType
	action()
}

type FetchInitialResponseCart struct{}

type ReceiveInitialResponseCart struct {
	Cart domain.ResponseCart
}

type CartReload struct{}

type ClearQueuedActions struct{}

type RemoveCartItem struct {
	UUID string
}

// AddProducts appends Products. With SeparateRenewals set, Products replace
// the cart instead whenever one side holds renewals and the other does not;
// the check runs against the cart the action is finally applied to.
type AddProducts struct {
	Products         []domain.RequestCartProduct
	SeparateRenewals bool
}

type ReplaceAllProducts struct {
	Products []domain.RequestCartProduct
}

type ReplaceProduct struct {
	UUID    string
	Changes domain.ProductChanges
}

type AddCoupon struct {
	Coupon string
}

type RemoveCoupon struct{}

type SetLocation struct {
	Location domain.CartLocation
}

type RequestUpdatedResponseCart struct{}

// ReceiveUpdatedResponseCart carries the result of a write. Generation is the
// State.Generation the write was issued from; zero means untagged.
type ReceiveUpdatedResponseCart struct {
	Cart       domain.ResponseCart
	Generation uint64
}

type ErrorType string

const (
	GetServerCartError ErrorType = "GET_SERVER_CART_ERROR"
	SetServerCartError ErrorType = "SET_SERVER_CART_ERROR"
)

// RaiseError records a remote failure. An empty Message falls back to a
// canned network-failure message for the kind.
type RaiseError struct {
	Kind    ErrorType
	Message string
}

func (FetchInitialResponseCart) Type() ActionType   { return FetchInitialResponseCartType }
func (ReceiveInitialResponseCart) Type() ActionType { return ReceiveInitialResponseCartType }
func (CartReload) Type() ActionType                 { return CartReloadType }
func (ClearQueuedActions) Type() ActionType         { return ClearQueuedActionsType }
func (RemoveCartItem) Type() ActionType             { return RemoveCartItemType }
func (AddProducts) Type() ActionType                { return AddProductsType }
func (ReplaceAllProducts) Type() ActionType         { return ReplaceAllProductsType }
func (ReplaceProduct) Type() ActionType             { return ReplaceProductType }
func (AddCoupon) Type() ActionType                  { return AddCouponType }
func (RemoveCoupon) Type() ActionType               { return RemoveCouponType }
func (SetLocation) Type() ActionType                { return SetLocationType }
func (RequestUpdatedResponseCart) Type() ActionType { return RequestUpdatedResponseCartType }
func (ReceiveUpdatedResponseCart) Type() ActionType { return ReceiveUpdatedResponseCartType }
func (RaiseError) Type() ActionType                 { return RaiseErrorType }

func (FetchInitialResponseCart) action()   {}
func (ReceiveInitialResponseCart) action() {}
func (CartReload) action()                 {}
func (ClearQueuedActions) action()         {}
func (RemoveCartItem) action()             {}
func (AddProducts) action()                {}
func (ReplaceAllProducts) action()         {}
func (ReplaceProduct) action()             {}
func (AddCoupon) action()                  {}
func (RemoveCoupon) action()               {}
func (SetLocation) action()                {}
func (RequestUpdatedResponseCart) action() {}
func (ReceiveUpdatedResponseCart) action() {}
func (RaiseError) action()                 {}

// alwaysAllowed actions bypass the queue while the cart is loading or writing.
func alwaysAllowed(a Action) bool {
	switch a.(type) {
	case ReceiveInitialResponseCart, ReceiveUpdatedResponseCart, FetchInitialResponseCart, RaiseError:
		return true
	}
	return false
}
