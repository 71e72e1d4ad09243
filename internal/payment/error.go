package payment

import (
	"errors"
	"fmt"

	"bazarpay-be/internal/sslcommerz"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrNotPending means a callback arrived for a payment that already left
	// the Pending state. Callbacks are replayed by the gateway; acting twice
	// would double-apply the transition.
	ErrNotPending = errors.New("payment is not pending")

	ErrGatewayDeclined = errors.New("gateway declined payment initiation")

	ErrNotRefundable = errors.New("payment has no bank transaction to refund")

	ErrNoRefundReference = errors.New("payment has no refund reference")
)

// ValidationError carries the reconciliation reason out of a rejected
// callback without losing the taxonomy.
type ValidationError struct {
	Reason sslcommerz.Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payment validation failed: %s", e.Reason)
}
