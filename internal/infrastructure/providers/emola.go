package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mozmarket/payment-service/internal/config"
	"github.com/mozmarket/payment-service/internal/domain"
)

type EMolaAdapter struct {
	cfg             config.ProviderBundle
	callbackBaseURL string
	txRepo          domain.TransactionRepository
	client          *http.Client
}

func NewEMolaAdapter(cfg config.ProviderBundle, callbackBaseURL string, txRepo domain.TransactionRepository) *EMolaAdapter {
	return &EMolaAdapter{
		cfg:             cfg,
		callbackBaseURL: callbackBaseURL,
		txRepo:          txRepo,
		client:          &http.Client{Timeout: 10 * time.Second},
	}
}

type emolaRequest struct {
	MerchantID     string  `json:"merchantId"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Description    string  `json:"description"`
	TransactionRef string  `json:"transactionRef"`
	CustomerPhone  string  `json:"customerPhone"`
	CallbackURL    string  `json:"callbackUrl"`
}

type emolaResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

type emolaWebhook struct {
	TransactionRef string `json:"transactionRef"`
	Status         string `json:"status"`
}

func (a *EMolaAdapter) Method() domain.PaymentMethod {
	return domain.MethodEMola
}

func (a *EMolaAdapter) Process(ctx context.Context, order *domain.OrderRequest, tx *domain.Transaction) (*domain.ProviderOutcome, error) {
	reqBody := emolaRequest{
		MerchantID:     a.cfg.MerchantID,
		Amount:         order.Amount,
		Currency:       "MZN",
		Description:    fmt.Sprintf("Order %s", order.OrderID),
		TransactionRef: tx.ID,
		CustomerPhone:  domain.NormalizePhone(order.Phone),
		CallbackURL:    a.callbackBaseURL + "/api/webhooks/emola",
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.APIURL+"/v1/payments", bytes.NewBuffer(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result emolaResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !result.Success {
		slog.Warn("emola request rejected",
			"transaction_id", tx.ID, "status", resp.StatusCode, "message", result.Message)
		return &domain.ProviderOutcome{
			Accepted:    false,
			Message:     result.Message,
			RawResponse: raw,
		}, nil
	}

	if err := a.txRepo.SetProviderReference(tx.ID, result.TransactionID, raw); err != nil {
		return nil, err
	}

	return &domain.ProviderOutcome{
		Accepted:          true,
		ProviderReference: result.TransactionID,
		Message:           "E-Mola request sent, awaiting customer confirmation",
		RawResponse:       raw,
	}, nil
}

func (a *EMolaAdapter) ParseWebhook(payload []byte) (*domain.WebhookConfirmation, error) {
	var hook emolaWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, err
	}
	if hook.TransactionRef == "" {
		return nil, fmt.Errorf("emola webhook missing transactionRef")
	}
	return &domain.WebhookConfirmation{
		TransactionID: hook.TransactionRef,
		Completed:     hook.Status == "COMPLETED",
		RawPayload:    payload,
	}, nil
}
