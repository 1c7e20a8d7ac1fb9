package usecase

import (
	"context"
	"log/slog"

	"github.com/mozmarket/payment-service/internal/domain"
	publisher "github.com/mozmarket/payment-service/internal/infrastructure/kafka"
	"github.com/mozmarket/payment-service/internal/infrastructure/logger"
	paymentdto "github.com/mozmarket/payment-service/internal/usecase/dto/payment"
)

// ReleaseEscrow pays the seller their share of a confirmed transaction
// and retains the platform commission. Only completed transactions are
// releasable.
func (uc *DefaultPaymentUsecase) ReleaseEscrow(ctx context.Context, transactionID, reason string) (*paymentdto.EscrowReleaseOutput, error) {
	lock := uc.locks.get(transactionID)
	lock.Lock()
	defer lock.Unlock()

	record, ok := uc.Escrow.Get(transactionID)
	if !ok {
		return nil, domain.NewPaymentError(domain.ErrEscrowNotFound, "", transactionID, "")
	}

	tx, err := uc.TxRepo.GetTransactionByID(transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status != domain.TransactionCompleted {
		return nil, domain.NewPaymentError(domain.ErrEscrowNotReleasable, tx.OrderID, transactionID,
			"transaction status "+string(tx.Status))
	}

	sellerAmount := record.Amount - record.Commission

	// The ledger settles first: once the durable row is released the
	// record cannot be released twice, even across a restart.
	if _, err := uc.Escrow.Release(transactionID); err != nil {
		uc.recordError("persistence")
		return nil, err
	}

	released := true
	if err := uc.TxRepo.UpdateTransaction(transactionID, &domain.TransactionUpdate{
		EscrowReleased: &released,
		ReleaseReason:  &reason,
		SellerAmount:   &sellerAmount,
	}); err != nil {
		uc.recordError("persistence")
		slog.Error("failed to record release on transaction", "transaction_id", transactionID, "error", err)
	}

	if err := uc.OrderRepo.UpdateOrderStatus(record.OrderID, domain.OrderCompleted); err != nil {
		slog.Error("failed to mark order completed", "order_id", record.OrderID, "error", err)
	}

	uc.recordEscrowReleased(string(tx.PaymentMethod), reason, record.Amount, record.Commission)
	slog.Info("escrow released",
		"transaction_id", transactionID,
		"order_id", record.OrderID,
		"seller_id", record.SellerID,
		"seller_amount", sellerAmount,
		"commission", record.Commission,
		"reason", reason)

	go func() {
		if err := publisher.PublishPayment(uc.Publisher, uc.topic, publisher.PaymentEvent{
			TransactionID: transactionID,
			OrderID:       record.OrderID,
			SellerID:      record.SellerID,
			EventType:     "escrow_released",
			Amount:        record.Amount,
			SellerAmount:  sellerAmount,
			Commission:    record.Commission,
			PaymentMethod: string(tx.PaymentMethod),
			Message:       reason,
		}); err != nil {
			slog.Error("failed to publish escrow release", "transaction_id", transactionID, "error", err)
		}
	}()

	if uc.EventLogger != nil {
		if err := uc.EventLogger.LogPaymentResolved(ctx, logger.PaymentResolvedEvent{
			TransactionID: transactionID,
			OrderID:       record.OrderID,
			Status:        "escrow_released",
			Reason:        reason,
			SellerAmount:  sellerAmount,
		}); err != nil {
			slog.Error("failed to log escrow release event", "transaction_id", transactionID, "error", err)
		}
	}

	return &paymentdto.EscrowReleaseOutput{
		SellerAmount: sellerAmount,
		Commission:   record.Commission,
	}, nil
}

// RefundTransaction reverses a completed payment back to the buyer and
// cancels any escrow still held for it.
func (uc *DefaultPaymentUsecase) RefundTransaction(ctx context.Context, transactionID, reason string) error {
	lock := uc.locks.get(transactionID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := uc.TxRepo.GetTransactionByID(transactionID)
	if err != nil {
		return err
	}
	if tx.Status != domain.TransactionCompleted {
		return domain.NewPaymentError(domain.ErrEscrowNotReleasable, tx.OrderID, transactionID,
			"only completed transactions can be refunded")
	}

	status := domain.TransactionRefunded
	if err := uc.TxRepo.UpdateTransaction(transactionID, &domain.TransactionUpdate{
		Status:        &status,
		ReleaseReason: &reason,
	}); err != nil {
		uc.recordError("persistence")
		return err
	}

	if _, err := uc.Escrow.Reverse(transactionID); err == nil {
		uc.recordEscrowReversed("refund", tx.Amount)
	}

	if err := uc.OrderRepo.UpdateOrderStatus(tx.OrderID, domain.OrderRefunded); err != nil {
		slog.Error("failed to mark order refunded", "order_id", tx.OrderID, "error", err)
	}

	slog.Info("transaction refunded",
		"transaction_id", transactionID,
		"order_id", tx.OrderID,
		"amount", tx.Amount,
		"reason", reason)

	go func() {
		if err := publisher.PublishPayment(uc.Publisher, uc.topic, publisher.PaymentEvent{
			TransactionID: transactionID,
			OrderID:       tx.OrderID,
			EventType:     "payment_refunded",
			Amount:        tx.Amount,
			PaymentMethod: string(tx.PaymentMethod),
			Message:       reason,
		}); err != nil {
			slog.Error("failed to publish refund", "transaction_id", transactionID, "error", err)
		}
	}()

	if uc.EventLogger != nil {
		if err := uc.EventLogger.LogPaymentResolved(ctx, logger.PaymentResolvedEvent{
			TransactionID: transactionID,
			OrderID:       tx.OrderID,
			Status:        string(domain.TransactionRefunded),
			Reason:        reason,
		}); err != nil {
			slog.Error("failed to log refund event", "transaction_id", transactionID, "error", err)
		}
	}

	uc.locks.forget(transactionID)
	uc.orderLocks.forget(tx.OrderID)
	return nil
}
