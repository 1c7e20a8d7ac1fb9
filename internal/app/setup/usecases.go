package setup

import (
	"fmt"

	"github.com/mozmarket/payment-service/internal/antifraud"
	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/infrastructure/notifier"
	"github.com/mozmarket/payment-service/internal/infrastructure/providers"
	"github.com/mozmarket/payment-service/internal/usecase"
)

type UseCases struct {
	PaymentUsecase usecase.PaymentUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	cfg := deps.Config

	adapters := buildAdapters(deps)
	screener := antifraud.NewScreener(cfg.Antifraud, deps.Repositories.BuyerActivity)

	escrowLedger := usecase.NewEscrowLedger(deps.Repositories.EscrowRepo, cfg.Escrow.PeriodDays)
	if err := escrowLedger.WarmUp(); err != nil {
		return nil, fmt.Errorf("escrow ledger warm up: %w", err)
	}
	pendingTable := usecase.NewPendingTable(deps.Repositories.PendingRepo)
	if err := pendingTable.WarmUp(); err != nil {
		return nil, fmt.Errorf("pending table warm up: %w", err)
	}

	paymentUsecase, err := usecase.NewDefaultPaymentUsecase(
		deps.Repositories.TransactionRepo,
		deps.Repositories.OrderRepo,
		escrowLedger,
		pendingTable,
		adapters,
		screener,
		notifier.NewLogUIPresenter(),
		deps.EventPublisher,
		deps.EventLogger,
		deps.Metrics,
		cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("payment usecase: %w", err)
	}

	return &UseCases{PaymentUsecase: paymentUsecase}, nil
}

func buildAdapters(deps *Dependencies) []domain.ProviderAdapter {
	cfg := deps.Config
	txRepo := deps.Repositories.TransactionRepo

	adapters := make([]domain.ProviderAdapter, 0, 5)
	if cfg.Providers.MPesa.Enabled {
		adapters = append(adapters, providers.NewMPesaAdapter(cfg.Providers.MPesa, txRepo))
	}
	if cfg.Providers.EMola.Enabled {
		adapters = append(adapters, providers.NewEMolaAdapter(cfg.Providers.EMola, cfg.CallbackBaseURL, txRepo))
	}
	if cfg.Providers.MKesh.Enabled {
		adapters = append(adapters, providers.NewMKeshAdapter(cfg.Providers.MKesh, cfg.CallbackBaseURL, txRepo))
	}
	if cfg.Providers.Visa.Enabled {
		adapters = append(adapters, providers.NewCardAdapter(domain.MethodVisa))
	}
	if cfg.Providers.Mastercard.Enabled {
		adapters = append(adapters, providers.NewCardAdapter(domain.MethodMastercard))
	}
	return adapters
}
