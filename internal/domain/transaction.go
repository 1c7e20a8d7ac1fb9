package domain

import "time"

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// IsTerminal reports whether no further status transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionCompleted || s == TransactionFailed || s == TransactionRefunded
}

type PaymentMethod string

const (
	MethodMPesa      PaymentMethod = "mpesa"
	MethodEMola      PaymentMethod = "emola"
	MethodMKesh      PaymentMethod = "mkesh"
	MethodVisa       PaymentMethod = "visa"
	MethodMastercard PaymentMethod = "mastercard"
)

// IsCard reports whether the method collects card details from the buyer
// instead of waiting for an asynchronous provider confirmation.
func (m PaymentMethod) IsCard() bool {
	return m == MethodVisa || m == MethodMastercard
}

type Transaction struct {
	ID                string
	OrderID           string
	Amount            float64
	Commission        float64
	PaymentMethod     PaymentMethod
	Status            TransactionStatus
	ProviderReference string
	ProviderResponse  []byte
	EscrowReleased    bool
	ReleaseReason     string
	SellerAmount      float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ConfirmedAt       *time.Time
}

// TransactionUpdate carries the mutable fields applied on reconciliation
// and release. Nil pointers are left untouched.
type TransactionUpdate struct {
	Status           *TransactionStatus
	ProviderResponse []byte
	ConfirmedAt      *time.Time
	EscrowReleased   *bool
	ReleaseReason    *string
	SellerAmount     *float64
}

type TransactionRepository interface {
	CreateTransaction(tx *Transaction) error
	GetTransactionByID(transactionID string) (*Transaction, error)
	UpdateTransaction(transactionID string, update *TransactionUpdate) error
	SetProviderReference(transactionID, providerReference string, providerResponse []byte) error
	FindNonTerminalByOrderID(orderID string) ([]*Transaction, error)
	ListStalePending(methods []PaymentMethod, before time.Time) ([]*Transaction, error)
}
