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

const mpesaAcceptedCode = "INS-0"

type MPesaAdapter struct {
	cfg    config.ProviderBundle
	txRepo domain.TransactionRepository
	client *http.Client
}

func NewMPesaAdapter(cfg config.ProviderBundle, txRepo domain.TransactionRepository) *MPesaAdapter {
	return &MPesaAdapter{
		cfg:    cfg,
		txRepo: txRepo,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type mpesaRequest struct {
	TransactionReference string `json:"input_TransactionReference"`
	CustomerMSISDN       string `json:"input_CustomerMSISDN"`
	Amount               string `json:"input_Amount"`
	ThirdPartyReference  string `json:"input_ThirdPartyReference"`
	ServiceProviderCode  string `json:"input_ServiceProviderCode"`
}

type mpesaResponse struct {
	ResponseCode        string `json:"output_ResponseCode"`
	ResponseDesc        string `json:"output_ResponseDesc"`
	TransactionID       string `json:"output_TransactionID"`
	ConversationID      string `json:"output_ConversationID"`
	ThirdPartyReference string `json:"output_ThirdPartyReference"`
}

type mpesaWebhook struct {
	ThirdPartyReference string `json:"input_ThirdPartyReference"`
	ResponseCode        string `json:"output_ResponseCode"`
}

func (a *MPesaAdapter) Method() domain.PaymentMethod {
	return domain.MethodMPesa
}

func (a *MPesaAdapter) Process(ctx context.Context, order *domain.OrderRequest, tx *domain.Transaction) (*domain.ProviderOutcome, error) {
	reqBody := mpesaRequest{
		TransactionReference: tx.ID,
		CustomerMSISDN:       domain.NormalizePhone(order.Phone),
		Amount:               fmt.Sprintf("%.2f", order.Amount),
		ThirdPartyReference:  tx.ID,
		ServiceProviderCode:  a.cfg.ServiceProviderCode,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.APIURL+"/c2b/v1/transactions", bytes.NewBuffer(bodyBytes))
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

	var result mpesaResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || result.ResponseCode != mpesaAcceptedCode {
		slog.Warn("mpesa request rejected",
			"transaction_id", tx.ID, "status", resp.StatusCode, "response_code", result.ResponseCode)
		return &domain.ProviderOutcome{
			Accepted:    false,
			Message:     result.ResponseDesc,
			RawResponse: raw,
		}, nil
	}

	if err := a.txRepo.SetProviderReference(tx.ID, result.TransactionID, raw); err != nil {
		return nil, err
	}

	return &domain.ProviderOutcome{
		Accepted:          true,
		ProviderReference: result.TransactionID,
		Message:           "M-Pesa request sent, awaiting customer confirmation",
		RawResponse:       raw,
	}, nil
}

func (a *MPesaAdapter) ParseWebhook(payload []byte) (*domain.WebhookConfirmation, error) {
	var hook mpesaWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, err
	}
	if hook.ThirdPartyReference == "" {
		return nil, fmt.Errorf("mpesa webhook missing input_ThirdPartyReference")
	}
	return &domain.WebhookConfirmation{
		TransactionID: hook.ThirdPartyReference,
		Completed:     hook.ResponseCode == mpesaAcceptedCode,
		RawPayload:    payload,
	}, nil
}
