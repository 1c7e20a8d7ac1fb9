package domain

import "time"

// PendingPayment bridges a dispatched provider call and its eventual
// webhook confirmation. Entries are created after a successful dispatch
// and removed on reconciliation or expiry.
type PendingPayment struct {
	TransactionID string
	OrderID       string
	Method        PaymentMethod
	Order         OrderRequest
	DispatchedAt  time.Time
}

type PendingPaymentRepository interface {
	CreatePendingPayment(entry *PendingPayment) error
	DeletePendingPayment(transactionID string) error
	ListPendingPayments() ([]*PendingPayment, error)
}
