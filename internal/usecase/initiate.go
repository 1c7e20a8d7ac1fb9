package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/infrastructure/logger"
	paymentdto "github.com/mozmarket/payment-service/internal/usecase/dto/payment"
)

// InitiatePayment validates the order, screens it for fraud, dispatches
// it to the provider adapter and, on acceptance, holds the funds in
// escrow. The provider call runs outside any lock; only the state
// mutation after acceptance is serialized per transaction.
func (uc *DefaultPaymentUsecase) InitiatePayment(ctx context.Context, order *domain.OrderRequest, method domain.PaymentMethod) (*paymentdto.PaymentResult, error) {
	if err := validateOrderRequest(order, method); err != nil {
		uc.recordError("invalid_order")
		return rejected(order.OrderID, "", err.Error()), err
	}

	assessment, err := uc.Screener.Assess(order)
	if err != nil {
		uc.recordError("fraud_screen_unavailable")
		return rejected(order.OrderID, "", "fraud screening unavailable"), err
	}
	uc.recordFraudDecision(string(assessment.Decision))
	if !assessment.Approved() {
		uc.recordError("fraud_rejected")
		err := domain.NewPaymentError(domain.ErrFraudRejected, order.OrderID, "",
			fmt.Sprintf("decision=%s score=%d", assessment.Decision, assessment.RiskScore))
		slog.Warn("payment rejected by fraud screening",
			"order_id", order.OrderID,
			"decision", assessment.Decision,
			"risk_score", assessment.RiskScore,
			"checks", assessment.Checks)
		return rejected(order.OrderID, "", assessment.Message), err
	}

	adapter, ok := uc.Adapters[method]
	if !ok {
		uc.recordError("unsupported_method")
		err := domain.NewPaymentError(domain.ErrUnsupportedMethod, order.OrderID, "", string(method))
		return rejected(order.OrderID, "", "unsupported payment method"), err
	}

	commission := CalculateCommission(uc.commissionCfg, order.Amount, order.IsPremium, order.IsService)

	tx, err := uc.openTransaction(order, method, commission)
	if err != nil {
		var dup *domain.PaymentError
		if errors.As(err, &dup) && errors.Is(err, domain.ErrDuplicateInitiation) {
			return rejected(order.OrderID, dup.TransactionID, "payment already in progress for this order"), err
		}
		return rejected(order.OrderID, "", "storage unavailable"), err
	}

	slog.Info("payment initiated",
		"transaction_id", tx.ID,
		"order_id", order.OrderID,
		"method", method,
		"amount", order.Amount,
		"commission", commission)

	outcome, err := adapter.Process(ctx, order, tx)
	if err != nil {
		uc.failDispatch(tx, "transport")
		return rejected(order.OrderID, tx.ID, "provider unreachable"), err
	}
	if !outcome.Accepted {
		uc.failDispatch(tx, "provider_rejected")
		rejErr := domain.NewPaymentError(domain.ErrProviderRejected, order.OrderID, tx.ID, outcome.Message)
		return rejected(order.OrderID, tx.ID, outcome.Message), rejErr
	}

	lock := uc.locks.get(tx.ID)
	lock.Lock()
	if _, err := uc.Escrow.Hold(tx.ID, order.OrderID, order.SellerID, order.Amount, commission); err != nil {
		lock.Unlock()
		uc.recordError("escrow_hold")
		return rejected(order.OrderID, tx.ID, "escrow hold failed"), err
	}
	if !method.IsCard() {
		entry := &domain.PendingPayment{
			TransactionID: tx.ID,
			OrderID:       order.OrderID,
			Method:        method,
			Order:         *order,
			DispatchedAt:  time.Now(),
		}
		if err := uc.Pending.Register(entry); err != nil {
			// The hold stays; expiry or reconciliation resolves it.
			slog.Error("failed to register pending payment", "transaction_id", tx.ID, "error", err)
		}
	}
	lock.Unlock()

	uc.recordInitiated(string(method), order.Amount)
	uc.recordEscrowHeld(order.Amount)

	if uc.EventLogger != nil {
		if err := uc.EventLogger.LogPaymentInitiated(ctx, logger.PaymentInitiatedEvent{
			TransactionID: tx.ID,
			OrderID:       order.OrderID,
			SellerID:      order.SellerID,
			BuyerID:       order.BuyerID,
			Amount:        order.Amount,
			Commission:    commission,
			PaymentMethod: string(method),
			RiskScore:     assessment.RiskScore,
		}); err != nil {
			slog.Error("failed to log payment initiated event", "transaction_id", tx.ID, "error", err)
		}
	}

	uc.present(order, tx, method)

	return &paymentdto.PaymentResult{
		Success:           true,
		TransactionID:     tx.ID,
		OrderID:           order.OrderID,
		ProviderReference: outcome.ProviderReference,
		Message:           outcome.Message,
		RequiresUserInput: outcome.RequiresUserInput,
		Instructions:      uc.instructionsFor(order, method),
	}, nil
}

// openTransaction checks for an existing open attempt and creates the
// new transaction under one per-order lock, so concurrent checkouts for
// the same order cannot both pass the duplicate check. The partial
// unique index on open transactions backstops instances that do not
// share this process.
func (uc *DefaultPaymentUsecase) openTransaction(order *domain.OrderRequest, method domain.PaymentMethod, commission float64) (*domain.Transaction, error) {
	orderLock := uc.orderLocks.get(order.OrderID)
	orderLock.Lock()
	defer orderLock.Unlock()

	open, err := uc.TxRepo.FindNonTerminalByOrderID(order.OrderID)
	if err != nil {
		uc.recordError("persistence")
		return nil, err
	}
	if len(open) > 0 {
		uc.recordError("duplicate_initiation")
		return nil, domain.NewPaymentError(domain.ErrDuplicateInitiation, order.OrderID, open[0].ID, "")
	}

	tx := &domain.Transaction{
		ID:            uc.newTransactionID(),
		OrderID:       order.OrderID,
		Amount:        order.Amount,
		Commission:    commission,
		PaymentMethod: method,
		Status:        domain.TransactionPending,
	}
	if err := uc.TxRepo.CreateTransaction(tx); err != nil {
		if errors.Is(err, domain.ErrDuplicateInitiation) {
			uc.recordError("duplicate_initiation")
			return nil, domain.NewPaymentError(domain.ErrDuplicateInitiation, order.OrderID, "", "")
		}
		uc.recordError("persistence")
		return nil, err
	}
	return tx, nil
}

func validateOrderRequest(order *domain.OrderRequest, method domain.PaymentMethod) error {
	if order.OrderID == "" || order.SellerID == "" {
		return domain.NewPaymentError(domain.ErrInvalidOrder, order.OrderID, "", "missing order or seller id")
	}
	if order.Amount <= 0 {
		return domain.NewPaymentError(domain.ErrInvalidOrder, order.OrderID, "", "amount must be positive")
	}
	if !method.IsCard() && !domain.IsValidPhone(order.Phone) {
		return domain.NewPaymentError(domain.ErrInvalidOrder, order.OrderID, "", "invalid mobile number")
	}
	return nil
}

// failDispatch marks the transaction failed after a provider rejection
// or transport error so no non-terminal transaction blocks a retry.
func (uc *DefaultPaymentUsecase) failDispatch(tx *domain.Transaction, stage string) {
	status := domain.TransactionFailed
	if err := uc.TxRepo.UpdateTransaction(tx.ID, &domain.TransactionUpdate{Status: &status}); err != nil {
		slog.Error("failed to mark transaction failed", "transaction_id", tx.ID, "error", err)
	}
	uc.recordFailed(string(tx.PaymentMethod), stage)
	slog.Warn("payment dispatch failed",
		"transaction_id", tx.ID,
		"order_id", tx.OrderID,
		"method", tx.PaymentMethod,
		"stage", stage)
}

func (uc *DefaultPaymentUsecase) instructionsFor(order *domain.OrderRequest, method domain.PaymentMethod) *domain.PaymentInstructions {
	if method.IsCard() {
		return nil
	}
	meta := uc.providerMeta[method]
	return &domain.PaymentInstructions{
		Method:     method,
		MethodName: meta.Name,
		Icon:       meta.Icon,
		Color:      meta.Color,
		Phone:      domain.NormalizePhone(order.Phone),
		Amount:     order.Amount,
	}
}

func (uc *DefaultPaymentUsecase) present(order *domain.OrderRequest, tx *domain.Transaction, method domain.PaymentMethod) {
	if uc.UI == nil {
		return
	}
	if method.IsCard() {
		uc.UI.PresentCardForm(order, tx, method)
		return
	}
	if instructions := uc.instructionsFor(order, method); instructions != nil {
		uc.UI.PresentPaymentInstructions(*instructions)
	}
}

func rejected(orderID, transactionID, message string) *paymentdto.PaymentResult {
	return &paymentdto.PaymentResult{
		Success:       false,
		TransactionID: transactionID,
		OrderID:       orderID,
		Message:       message,
	}
}
