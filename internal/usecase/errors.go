package usecase

import (
	"errors"
	"fmt"
)

// Local guard failures: no network call was made, no state was touched.
var (
	ErrEmptyRFID          = errors.New("rfid uid required")
	ErrScanInFlight       = errors.New("a scan is already in progress")
	ErrPlateInactive      = errors.New("this plate is inactive")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
)

// DuplicateCheckoutError means the idempotency key was already used for
// a checkout that produced a transaction.
type DuplicateCheckoutError struct {
	TransactionID string
}

func (e *DuplicateCheckoutError) Error() string {
	if e.TransactionID == "" {
		return "duplicate checkout request"
	}
	return fmt.Sprintf("duplicate checkout: transaction %s already created", e.TransactionID)
}

// TransactionCreateError wraps a failed create call; the cart is left
// untouched so the attempt can be retried.
type TransactionCreateError struct {
	Err error
}

func (e *TransactionCreateError) Error() string { return "create transaction: " + e.Err.Error() }
func (e *TransactionCreateError) Unwrap() error { return e.Err }

// PaymentTokenError wraps a failed snap-token request. The transaction
// already exists server-side in PENDING status; reconciliation of that
// partial state is the backend's concern.
type PaymentTokenError struct {
	TransactionID string
	Err           error
}

func (e *PaymentTokenError) Error() string {
	return fmt.Sprintf("snap token for transaction %s: %v", e.TransactionID, e.Err)
}
func (e *PaymentTokenError) Unwrap() error { return e.Err }

// PaymentFailedError is the gateway reporting a failed payment. Nothing
// was charged; the cart is kept.
type PaymentFailedError struct {
	Message string
}

func (e *PaymentFailedError) Error() string {
	if e.Message != "" {
		return "payment failed: " + e.Message
	}
	return "payment failed"
}
