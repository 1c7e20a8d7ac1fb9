package domain

import "context"

// ProviderOutcome is the normalized result of one provider dispatch.
type ProviderOutcome struct {
	Accepted          bool
	ProviderReference string
	Message           string
	RequiresUserInput bool
	RawResponse       []byte
}

// WebhookConfirmation is the common shape extracted from a provider's
// asynchronous callback payload.
type WebhookConfirmation struct {
	TransactionID string
	Completed     bool
	RawPayload    []byte
}

// ProviderAdapter translates a generic payment request into a
// provider-specific call. One implementation exists per payment method.
type ProviderAdapter interface {
	Method() PaymentMethod
	Process(ctx context.Context, order *OrderRequest, tx *Transaction) (*ProviderOutcome, error)
	ParseWebhook(payload []byte) (*WebhookConfirmation, error)
}
