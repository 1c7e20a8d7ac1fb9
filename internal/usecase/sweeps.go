package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
)

const releaseReasonPeriodElapsed = "escrow_period_elapsed"

// ListDueEscrows exposes the active records past their release date,
// for the admin surface and the periodic sweep.
func (uc *DefaultPaymentUsecase) ListDueEscrows(now time.Time) []*domain.EscrowRecord {
	return uc.Escrow.DueForRelease(now)
}

// ReleaseDueEscrows releases every escrow whose hold period has
// elapsed, skipping orders with an open dispute. Individual failures
// are logged and do not stop the sweep.
func (uc *DefaultPaymentUsecase) ReleaseDueEscrows(ctx context.Context) error {
	due := uc.Escrow.DueForRelease(time.Now())
	if len(due) == 0 {
		return nil
	}

	slog.Info("escrow release sweep started", "due", len(due))

	for _, record := range due {
		order, err := uc.OrderRepo.GetOrderByID(record.OrderID)
		if err != nil {
			slog.Error("sweep failed to load order", "order_id", record.OrderID, "error", err)
			continue
		}
		if order.DisputeOpen {
			slog.Info("escrow release deferred, dispute open",
				"transaction_id", record.TransactionID,
				"order_id", record.OrderID)
			continue
		}

		if _, err := uc.ReleaseEscrow(ctx, record.TransactionID, releaseReasonPeriodElapsed); err != nil {
			if errors.Is(err, domain.ErrEscrowNotReleasable) {
				slog.Info("escrow release deferred, transaction not settled",
					"transaction_id", record.TransactionID)
				continue
			}
			slog.Error("sweep failed to release escrow",
				"transaction_id", record.TransactionID,
				"error", err)
		}
	}
	return nil
}

// ExpireStalePayments fails payments whose confirmation never arrived
// within the configured timeout: mobile-money entries from the pending
// table, and card transactions whose buyer abandoned the form. Card
// dispatches carry no pending entry, so they are swept straight from
// the transaction store.
func (uc *DefaultPaymentUsecase) ExpireStalePayments(ctx context.Context) error {
	timeout := time.Duration(uc.escrowCfg.PendingTimeoutMinutes) * time.Minute
	now := time.Now()

	expired := uc.Pending.Expired(timeout, now)
	if len(expired) > 0 {
		slog.Info("pending payment expiry sweep started", "expired", len(expired))
		for _, entry := range expired {
			uc.expireTransaction(entry.TransactionID)
		}
	}

	staleCards, err := uc.TxRepo.ListStalePending(
		[]domain.PaymentMethod{domain.MethodVisa, domain.MethodMastercard},
		now.Add(-timeout),
	)
	if err != nil {
		slog.Error("stale card sweep failed to list transactions", "error", err)
		return err
	}
	for _, tx := range staleCards {
		uc.expireTransaction(tx.ID)
	}
	return nil
}

func (uc *DefaultPaymentUsecase) expireTransaction(transactionID string) {
	lock := uc.locks.get(transactionID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := uc.TxRepo.GetTransactionByID(transactionID)
	if err != nil {
		slog.Error("expiry failed to load transaction", "transaction_id", transactionID, "error", err)
		return
	}
	if tx.Status.IsTerminal() {
		// Reconciled between listing and locking.
		uc.Pending.Remove(transactionID)
		return
	}

	status := domain.TransactionFailed
	if err := uc.TxRepo.UpdateTransaction(transactionID, &domain.TransactionUpdate{Status: &status}); err != nil {
		slog.Error("expiry failed to mark transaction failed", "transaction_id", transactionID, "error", err)
		return
	}

	if err := uc.OrderRepo.UpdateOrderStatus(tx.OrderID, domain.OrderPaymentFailed); err != nil {
		slog.Error("expiry failed to mark order payment_failed", "order_id", tx.OrderID, "error", err)
	}

	if _, err := uc.Escrow.Reverse(transactionID); err == nil {
		uc.recordEscrowReversed("payment_expired", tx.Amount)
	}

	uc.Pending.Remove(transactionID)
	uc.locks.forget(transactionID)
	uc.orderLocks.forget(tx.OrderID)
	uc.recordFailed(string(tx.PaymentMethod), "expired")

	slog.Warn("unconfirmed payment expired",
		"transaction_id", transactionID,
		"order_id", tx.OrderID,
		"method", tx.PaymentMethod,
		"created_at", tx.CreatedAt)
}
