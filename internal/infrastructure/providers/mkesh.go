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

type MKeshAdapter struct {
	cfg             config.ProviderBundle
	callbackBaseURL string
	txRepo          domain.TransactionRepository
	client          *http.Client
}

func NewMKeshAdapter(cfg config.ProviderBundle, callbackBaseURL string, txRepo domain.TransactionRepository) *MKeshAdapter {
	return &MKeshAdapter{
		cfg:             cfg,
		callbackBaseURL: callbackBaseURL,
		txRepo:          txRepo,
		client:          &http.Client{Timeout: 10 * time.Second},
	}
}

type mkeshRequest struct {
	MerchantID  string  `json:"merchant_id"`
	Amount      float64 `json:"amount"`
	Reference   string  `json:"reference"`
	PhoneNumber string  `json:"phone_number"`
	Description string  `json:"description"`
	CallbackURL string  `json:"callback_url"`
}

type mkeshResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	StatusCode    string `json:"status_code"`
	Message       string `json:"message"`
}

type mkeshWebhook struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

func (a *MKeshAdapter) Method() domain.PaymentMethod {
	return domain.MethodMKesh
}

func (a *MKeshAdapter) Process(ctx context.Context, order *domain.OrderRequest, tx *domain.Transaction) (*domain.ProviderOutcome, error) {
	reqBody := mkeshRequest{
		MerchantID:  a.cfg.MerchantID,
		Amount:      order.Amount,
		Reference:   tx.ID,
		PhoneNumber: domain.NormalizePhone(order.Phone),
		Description: fmt.Sprintf("Order %s", order.OrderID),
		CallbackURL: a.callbackBaseURL + "/api/webhooks/mkesh",
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.APIURL+"/v1/charges", bytes.NewBuffer(bodyBytes))
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

	var result mkeshResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || result.Status != "success" {
		slog.Warn("mkesh request rejected",
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
		Message:           "M-Kesh request sent, awaiting customer confirmation",
		RawResponse:       raw,
	}, nil
}

func (a *MKeshAdapter) ParseWebhook(payload []byte) (*domain.WebhookConfirmation, error) {
	var hook mkeshWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, err
	}
	if hook.Reference == "" {
		return nil, fmt.Errorf("mkesh webhook missing reference")
	}
	return &domain.WebhookConfirmation{
		TransactionID: hook.Reference,
		Completed:     hook.Status == "success",
		RawPayload:    payload,
	}, nil
}
