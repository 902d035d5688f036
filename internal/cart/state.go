package cart

import (
	"fmt"
	"slices"

	"shopcart/internal/domain"
)

type CacheStatus string

const (
	CacheFresh        CacheStatus = "fresh"
	CacheFreshPending CacheStatus = "fresh-pending"
	CachePending      CacheStatus = "pending"
	CacheInvalid      CacheStatus = "invalid"
	CacheValid        CacheStatus = "valid"
	CacheError        CacheStatus = "error"
)

// Loaded reports whether a server snapshot has arrived since the last reset.
func (s CacheStatus) Loaded() bool {
	return s != CacheFresh && s != CacheFreshPending
}

// Settled reports whether no local change is waiting on the remote.
func (s CacheStatus) Settled() bool {
	return s == CacheValid || s == CacheError
}

type CouponStatus string

const (
	CouponFresh    CouponStatus = "fresh"
	CouponPending  CouponStatus = "pending"
	CouponApplied  CouponStatus = "applied"
	CouponRejected CouponStatus = "rejected"
)

// State is the client-visible projection of one remote cart.
type State struct {
	ResponseCart     domain.ResponseCart `json:"responseCart"`
	CacheStatus      CacheStatus         `json:"cacheStatus"`
	CouponStatus     CouponStatus        `json:"couponStatus"`
	QueuedActions    []Action            `json:"-"`
	LoadingError     string              `json:"loadingError,omitempty"`
	LoadingErrorType ErrorType           `json:"loadingErrorType,omitempty"`
	// Generation counts local edits and reloads. It survives CartReload.
	Generation       uint64              `json:"generation"`
}

func InitialState() State {
	return State{
		ResponseCart:  domain.EmptyResponseCart(),
		CacheStatus:   CacheFresh,
		CouponStatus:  CouponFresh,
		QueuedActions: []Action{},
	}
}

// clone copies the slices a caller could otherwise alias.
func (s State) clone() State {
	s.QueuedActions = slices.Clone(s.QueuedActions)
	s.ResponseCart.Products = slices.Clone(s.ResponseCart.Products)
	return s
}

// SyncError is returned to callers waiting on an update when the cart ends up
// in the error state.
type SyncError struct {
	Type    ErrorType
	Message string
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (s State) Err() error {
	if s.CacheStatus != CacheError {
		return nil
	}
	return &SyncError{Type: s.LoadingErrorType, Message: s.LoadingError}
}
