package paymentdto

import "github.com/mozmarket/payment-service/internal/domain"

// PaymentResult is the discriminated outcome of an initiation attempt.
// Callers must handle both branches; rejected results still carry the
// transaction id when one was created.
type PaymentResult struct {
	Success           bool
	TransactionID     string
	OrderID           string
	ProviderReference string
	Message           string
	RequiresUserInput bool
	Instructions      *domain.PaymentInstructions
}

type EscrowReleaseOutput struct {
	SellerAmount float64
	Commission   float64
}
