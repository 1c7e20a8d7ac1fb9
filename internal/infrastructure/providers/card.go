package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mozmarket/payment-service/internal/domain"
)

// CardAdapter covers Visa and Mastercard. Acceptance means "awaiting
// card details from the buyer": the gateway form is driven by the
// presentation layer, so no provider call happens at dispatch and no
// pending entry is registered until the gateway confirms.
type CardAdapter struct {
	method domain.PaymentMethod
}

func NewCardAdapter(method domain.PaymentMethod) *CardAdapter {
	return &CardAdapter{method: method}
}

type cardWebhook struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

func (a *CardAdapter) Method() domain.PaymentMethod {
	return a.method
}

func (a *CardAdapter) Process(ctx context.Context, order *domain.OrderRequest, tx *domain.Transaction) (*domain.ProviderOutcome, error) {
	slog.Info("card payment dispatched, awaiting card details",
		"transaction_id", tx.ID, "order_id", order.OrderID, "card_type", string(a.method))

	return &domain.ProviderOutcome{
		Accepted:          true,
		Message:           "awaiting card details",
		RequiresUserInput: true,
	}, nil
}

func (a *CardAdapter) ParseWebhook(payload []byte) (*domain.WebhookConfirmation, error) {
	var hook cardWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, err
	}
	if hook.TransactionID == "" {
		return nil, fmt.Errorf("card webhook missing transaction_id")
	}
	return &domain.WebhookConfirmation{
		TransactionID: hook.TransactionID,
		Completed:     hook.Status == "succeeded",
		RawPayload:    payload,
	}, nil
}
