package domain

import "time"

type EscrowStatus string

const (
	EscrowPending  EscrowStatus = "pending"
	EscrowReleased EscrowStatus = "released"
	EscrowReversed EscrowStatus = "reversed"
)

// EscrowRecord is one funds-in-trust entry, keyed by transaction id.
// It exists from provider acceptance until release or reversal.
type EscrowRecord struct {
	TransactionID string
	OrderID       string
	SellerID      string
	Amount        float64
	Commission    float64
	Status        EscrowStatus
	EscrowDate    time.Time
	ReleaseDate   time.Time
}

type EscrowRepository interface {
	CreateEscrow(record *EscrowRecord) error
	UpdateEscrowStatus(transactionID string, newStatus EscrowStatus) error
	ListActiveEscrows() ([]*EscrowRecord, error)
}
