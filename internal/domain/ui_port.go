package domain

// PaymentInstructions is presentation metadata handed to the UI
// collaborator after a mobile-money dispatch. Name, icon and color come
// from provider config, not logic.
type PaymentInstructions struct {
	Method     PaymentMethod
	MethodName string
	Icon       string
	Color      string
	Phone      string
	Amount     float64
}

// UIPort is the presentation collaborator. Implementations are
// fire-and-forget; the payment core never depends on their outcome.
type UIPort interface {
	PresentPaymentInstructions(instructions PaymentInstructions)
	PresentCardForm(order *OrderRequest, tx *Transaction, cardType PaymentMethod)
}
