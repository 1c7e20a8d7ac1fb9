package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrder        = errors.New("invalid order data")
	ErrUnsupportedMethod   = errors.New("unsupported payment method")
	ErrPersistenceFailed   = errors.New("persistence operation failed")
	ErrProviderRejected    = errors.New("payment provider rejected the request")
	ErrEscrowNotFound      = errors.New("transaction not found in escrow")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrEscrowAlreadyHeld   = errors.New("escrow record already exists for transaction")
	ErrEscrowNotReleasable = errors.New("transaction not confirmed, escrow cannot be released")
	ErrDuplicateInitiation = errors.New("order already has a payment in progress")
	ErrFraudRejected       = errors.New("order rejected by fraud screening")
)

// PaymentError wraps a taxonomy sentinel with the correlation ids every
// surfaced failure must carry.
type PaymentError struct {
	Err           error
	OrderID       string
	TransactionID string
	Detail        string
}

func (e *PaymentError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.TransactionID != "" {
		return fmt.Sprintf("%s (order=%s transaction=%s)", msg, e.OrderID, e.TransactionID)
	}
	return fmt.Sprintf("%s (order=%s)", msg, e.OrderID)
}

func (e *PaymentError) Unwrap() error { return e.Err }

func NewPaymentError(err error, orderID, transactionID, detail string) *PaymentError {
	return &PaymentError{Err: err, OrderID: orderID, TransactionID: transactionID, Detail: detail}
}
