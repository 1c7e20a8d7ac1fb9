package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
	publisher "github.com/mozmarket/payment-service/internal/infrastructure/kafka"
	"github.com/mozmarket/payment-service/internal/infrastructure/logger"
	"github.com/mozmarket/payment-service/internal/infrastructure/notifier"
)

// HandleWebhook reconciles an asynchronous provider confirmation with
// the pending payment it belongs to. Replays of a confirmation for a
// transaction already in a terminal status are discarded without side
// effects.
func (uc *DefaultPaymentUsecase) HandleWebhook(ctx context.Context, method domain.PaymentMethod, payload []byte) error {
	started := time.Now()
	defer func() {
		uc.recordWebhookDuration(string(method), time.Since(started).Seconds())
	}()

	adapter, ok := uc.Adapters[method]
	if !ok {
		uc.recordError("unsupported_method")
		return domain.NewPaymentError(domain.ErrUnsupportedMethod, "", "", string(method))
	}

	confirmation, err := adapter.ParseWebhook(payload)
	if err != nil {
		uc.recordError("webhook_parse")
		return err
	}

	lock := uc.locks.get(confirmation.TransactionID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := uc.TxRepo.GetTransactionByID(confirmation.TransactionID)
	if err != nil {
		uc.recordError("unknown_transaction")
		slog.Warn("webhook for unknown transaction discarded",
			"transaction_id", confirmation.TransactionID,
			"method", method)
		return err
	}

	if tx.Status.IsTerminal() {
		slog.Info("webhook replay for settled transaction discarded",
			"transaction_id", tx.ID,
			"status", tx.Status)
		uc.Pending.Remove(tx.ID)
		return nil
	}

	entry, registered := uc.Pending.Get(tx.ID)
	if !registered && !method.IsCard() {
		slog.Warn("webhook without pending entry discarded",
			"transaction_id", tx.ID,
			"method", method)
		return nil
	}

	if confirmation.Completed {
		return uc.settleCompleted(ctx, tx, entry, confirmation.RawPayload)
	}
	return uc.settleFailed(ctx, tx, confirmation.RawPayload)
}

func (uc *DefaultPaymentUsecase) settleCompleted(ctx context.Context, tx *domain.Transaction, entry *domain.PendingPayment, rawPayload []byte) error {
	now := time.Now()
	status := domain.TransactionCompleted
	if err := uc.TxRepo.UpdateTransaction(tx.ID, &domain.TransactionUpdate{
		Status:           &status,
		ProviderResponse: rawPayload,
		ConfirmedAt:      &now,
	}); err != nil {
		uc.recordError("persistence")
		return err
	}

	if err := uc.OrderRepo.SetOrderPaid(tx.OrderID, tx.PaymentMethod, now); err != nil {
		slog.Error("failed to mark order paid", "order_id", tx.OrderID, "error", err)
	}

	uc.recordCompleted(string(tx.PaymentMethod))
	slog.Info("payment confirmed",
		"transaction_id", tx.ID,
		"order_id", tx.OrderID,
		"method", tx.PaymentMethod,
		"amount", tx.Amount)

	sellerID := ""
	if entry != nil {
		sellerID = entry.Order.SellerID
	}

	go func() {
		if err := publisher.PublishPayment(uc.Publisher, uc.topic, publisher.PaymentEvent{
			TransactionID: tx.ID,
			OrderID:       tx.OrderID,
			SellerID:      sellerID,
			EventType:     "payment_confirmed",
			Amount:        tx.Amount,
			Commission:    tx.Commission,
			PaymentMethod: string(tx.PaymentMethod),
		}); err != nil {
			slog.Error("failed to publish payment confirmation", "transaction_id", tx.ID, "error", err)
		}
	}()

	if entry != nil && entry.Order.CallbackURL != "" {
		notifier.SendCallback(entry.Order.CallbackURL, notifier.CallbackPayload{
			OrderID:       tx.OrderID,
			TransactionID: tx.ID,
			Status:        string(domain.TransactionCompleted),
			Amount:        tx.Amount,
			Currency:      "MZN",
			PaymentMethod: string(tx.PaymentMethod),
			ConfirmedAt:   now,
		})
	}

	if uc.EventLogger != nil {
		if err := uc.EventLogger.LogPaymentResolved(ctx, logger.PaymentResolvedEvent{
			TransactionID: tx.ID,
			OrderID:       tx.OrderID,
			Status:        string(domain.TransactionCompleted),
		}); err != nil {
			slog.Error("failed to log payment resolved event", "transaction_id", tx.ID, "error", err)
		}
	}

	uc.Pending.Remove(tx.ID)
	uc.locks.forget(tx.ID)
	uc.orderLocks.forget(tx.OrderID)
	return nil
}

func (uc *DefaultPaymentUsecase) settleFailed(ctx context.Context, tx *domain.Transaction, rawPayload []byte) error {
	status := domain.TransactionFailed
	if err := uc.TxRepo.UpdateTransaction(tx.ID, &domain.TransactionUpdate{
		Status:           &status,
		ProviderResponse: rawPayload,
	}); err != nil {
		uc.recordError("persistence")
		return err
	}

	if err := uc.OrderRepo.UpdateOrderStatus(tx.OrderID, domain.OrderPaymentFailed); err != nil {
		slog.Error("failed to mark order payment_failed", "order_id", tx.OrderID, "error", err)
	}

	if _, err := uc.Escrow.Reverse(tx.ID); err == nil {
		uc.recordEscrowReversed("payment_failed", tx.Amount)
	}

	uc.recordFailed(string(tx.PaymentMethod), "webhook")
	slog.Warn("payment failed by provider confirmation",
		"transaction_id", tx.ID,
		"order_id", tx.OrderID,
		"method", tx.PaymentMethod)

	if uc.EventLogger != nil {
		if err := uc.EventLogger.LogPaymentResolved(ctx, logger.PaymentResolvedEvent{
			TransactionID: tx.ID,
			OrderID:       tx.OrderID,
			Status:        string(domain.TransactionFailed),
		}); err != nil {
			slog.Error("failed to log payment resolved event", "transaction_id", tx.ID, "error", err)
		}
	}

	uc.Pending.Remove(tx.ID)
	uc.locks.forget(tx.ID)
	uc.orderLocks.forget(tx.OrderID)
	return nil
}
