package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart means checkout was attempted with nothing to buy
	ErrEmptyCart = errors.New("checkout requires at least one course or learning path")
	// ErrContentNotFound means a requested course or learning path does not exist
	ErrContentNotFound = errors.New("requested content not found")
	// ErrAlreadyEnrolled means a standalone course is already owned by the buyer
	ErrAlreadyEnrolled = errors.New("already enrolled in one of the requested courses")
	// ErrPathAlreadyOwned means a requested learning path was already purchased
	ErrPathAlreadyOwned = errors.New("learning path already purchased")
	// ErrDuplicateContent means a standalone course is also inside a requested bundle
	ErrDuplicateContent = errors.New("course requested standalone is already part of a requested learning path")
	// ErrOrderAlreadyProcessed guards idempotent re-entry on a SUCCESS order
	ErrOrderAlreadyProcessed = errors.New("order already processed")
	// ErrOrderNotPending means the order is in a terminal non-success state
	ErrOrderNotPending = errors.New("order is not pending")
	// ErrGatewayOrderMismatch means the confirmation references a different gateway order
	ErrGatewayOrderMismatch = errors.New("confirmation does not match the order's gateway id")
)

// ConflictError is returned when a fresh PENDING order already covers some of
// the requested content. It carries the blocking order id so the client can
// resume that order instead of paying twice.
type ConflictError struct {
	OrderID uint
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a pending order (#%d) already covers some of this content", e.OrderID)
}

// AmountMismatchError is returned when a gateway confirmation disagrees with
// the stored order amount. The order is marked FAILED before this surfaces.
type AmountMismatchError struct {
	OrderID   uint
	Expected  float64
	Confirmed float64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("payment amount %.2f does not match order #%d amount %.2f", e.Confirmed, e.OrderID, e.Expected)
}
