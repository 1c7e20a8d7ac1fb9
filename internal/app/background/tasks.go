package background

import (
	"context"
	"log"
	"time"

	"github.com/mozmarket/payment-service/internal/config"
	"github.com/mozmarket/payment-service/internal/usecase"
)

type BackgroundTasks struct {
	PaymentUsecase usecase.PaymentUsecase
	EscrowConfig   config.Escrow
}

func NewBackgroundTasks(paymentUC usecase.PaymentUsecase, escrowCfg config.Escrow) *BackgroundTasks {
	return &BackgroundTasks{
		PaymentUsecase: paymentUC,
		EscrowConfig:   escrowCfg,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startEscrowReleaseSweep(ctx)
	go bt.startPendingExpirySweep(ctx)
}

func (bt *BackgroundTasks) startEscrowReleaseSweep(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(bt.EscrowConfig.SweepIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.PaymentUsecase.ReleaseDueEscrows(ctx); err != nil {
				log.Printf("Escrow release sweep error: %v\n", err)
			}
		}
	}
}

func (bt *BackgroundTasks) startPendingExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(bt.EscrowConfig.SweepIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.PaymentUsecase.ExpireStalePayments(ctx); err != nil {
				log.Printf("Pending expiry sweep error: %v\n", err)
			}
		}
	}
}
