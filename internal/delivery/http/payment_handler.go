package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/usecase"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	uc usecase.PaymentUsecase
}

func NewPaymentHandler(uc usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.uc.InitiatePayment(r.Context(), req.toDomain(), domain.PaymentMethod(req.PaymentMethod))
	if err != nil {
		writeJSON(w, statusForError(err), toInitiateResponse(result))
		return
	}
	writeJSON(w, http.StatusOK, toInitiateResponse(result))
}

// HandleWebhook receives asynchronous provider confirmations. The
// provider name comes from the path so each provider keeps a stable
// callback URL.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	method := domain.PaymentMethod(mux.Vars(r)["method"])

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "failed to read payload"})
		return
	}

	if err := h.uc.HandleWebhook(r.Context(), method, payload); err != nil {
		slog.Warn("webhook rejected", "method", method, "error", err)
		writeError(w, statusForError(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

func (h *PaymentHandler) ReleaseEscrow(w http.ResponseWriter, r *http.Request) {
	transactionID := mux.Vars(r)["transactionId"]

	var req releaseEscrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Reason == "" {
		req.Reason = "manual_release"
	}

	output, err := h.uc.ReleaseEscrow(r.Context(), transactionID, req.Reason)
	if err != nil {
		writeError(w, statusForError(err), errorResponse{Error: err.Error(), TransactionID: transactionID})
		return
	}
	writeJSON(w, http.StatusOK, releaseEscrowResponse{
		TransactionID: transactionID,
		SellerAmount:  output.SellerAmount,
		Commission:    output.Commission,
	})
}

func (h *PaymentHandler) RefundTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := mux.Vars(r)["transactionId"]

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "reason is required"})
		return
	}

	if err := h.uc.RefundTransaction(r.Context(), transactionID, req.Reason); err != nil {
		writeError(w, statusForError(err), errorResponse{Error: err.Error(), TransactionID: transactionID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refunded", "transaction_id": transactionID})
}

func (h *PaymentHandler) AssessFraud(w http.ResponseWriter, r *http.Request) {
	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	assessment, err := h.uc.AssessFraud(req.toDomain())
	if err != nil {
		writeError(w, statusForError(err), errorResponse{Error: err.Error(), OrderID: req.OrderID})
		return
	}
	writeJSON(w, http.StatusOK, fraudAssessmentResponse{
		RiskScore: assessment.RiskScore,
		Checks:    assessment.Checks,
		Decision:  string(assessment.Decision),
		Message:   assessment.Message,
	})
}

func (h *PaymentHandler) ListDueEscrows(w http.ResponseWriter, r *http.Request) {
	due := h.uc.ListDueEscrows(timeNow())

	response := make([]dueEscrowResponse, 0, len(due))
	for _, record := range due {
		response = append(response, dueEscrowResponse{
			TransactionID: record.TransactionID,
			OrderID:       record.OrderID,
			SellerID:      record.SellerID,
			Amount:        record.Amount,
			Commission:    record.Commission,
			EscrowDate:    record.EscrowDate,
			ReleaseDate:   record.ReleaseDate,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, domain.ErrUnsupportedMethod):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFraudRejected):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrEscrowNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateInitiation),
		errors.Is(err, domain.ErrEscrowAlreadyHeld),
		errors.Is(err, domain.ErrEscrowNotReleasable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrProviderRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	writeJSON(w, status, body)
}
