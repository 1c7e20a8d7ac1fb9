package usecase

import (
	"context"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/mozmarket/payment-service/internal/config"
	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/infrastructure/logger"
	"github.com/mozmarket/payment-service/internal/infrastructure/metrics"
	paymentdto "github.com/mozmarket/payment-service/internal/usecase/dto/payment"
)

const transactionIDPrefix = "TXN-"

type PaymentUsecase interface {
	InitiatePayment(ctx context.Context, order *domain.OrderRequest, method domain.PaymentMethod) (*paymentdto.PaymentResult, error)
	HandleWebhook(ctx context.Context, method domain.PaymentMethod, payload []byte) error
	ReleaseEscrow(ctx context.Context, transactionID, reason string) (*paymentdto.EscrowReleaseOutput, error)
	RefundTransaction(ctx context.Context, transactionID, reason string) error
	AssessFraud(order *domain.OrderRequest) (*domain.FraudAssessment, error)

	ListDueEscrows(now time.Time) []*domain.EscrowRecord
	ReleaseDueEscrows(ctx context.Context) error
	ExpireStalePayments(ctx context.Context) error
}

// FraudScreener is what the orchestrator needs from the antifraud
// package; tests substitute a stub.
type FraudScreener interface {
	Assess(order *domain.OrderRequest) (*domain.FraudAssessment, error)
}

type DefaultPaymentUsecase struct {
	TxRepo      domain.TransactionRepository
	OrderRepo   domain.OrderRepository
	Escrow      *EscrowLedger
	Pending     *PendingTable
	Adapters    map[domain.PaymentMethod]domain.ProviderAdapter
	Screener    FraudScreener
	UI          domain.UIPort
	Publisher   domain.PublisherPort
	EventLogger logger.PaymentEventLogger
	Metrics     *metrics.PaymentMetrics

	commissionCfg config.Commission
	escrowCfg     config.Escrow
	topic         string
	providerMeta  map[domain.PaymentMethod]config.ProviderBundle

	// locks serializes per-transaction state; orderLocks serializes the
	// duplicate check against transaction creation per order.
	locks            *txLocks
	orderLocks       *txLocks
	newTransactionID func() string
}

func NewDefaultPaymentUsecase(
	txRepo domain.TransactionRepository,
	orderRepo domain.OrderRepository,
	escrowLedger *EscrowLedger,
	pendingTable *PendingTable,
	adapters []domain.ProviderAdapter,
	screener FraudScreener,
	ui domain.UIPort,
	paymentPublisher domain.PublisherPort,
	eventLogger logger.PaymentEventLogger,
	paymentMetrics *metrics.PaymentMetrics,
	cfg *config.PaymentConfig) (*DefaultPaymentUsecase, error) {

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	adapterMap := make(map[domain.PaymentMethod]domain.ProviderAdapter, len(adapters))
	for _, adapter := range adapters {
		adapterMap[adapter.Method()] = adapter
	}

	providerMeta := map[domain.PaymentMethod]config.ProviderBundle{
		domain.MethodMPesa:      cfg.Providers.MPesa,
		domain.MethodEMola:      cfg.Providers.EMola,
		domain.MethodMKesh:      cfg.Providers.MKesh,
		domain.MethodVisa:       cfg.Providers.Visa,
		domain.MethodMastercard: cfg.Providers.Mastercard,
	}

	return &DefaultPaymentUsecase{
		TxRepo:        txRepo,
		OrderRepo:     orderRepo,
		Escrow:        escrowLedger,
		Pending:       pendingTable,
		Adapters:      adapterMap,
		Screener:      screener,
		UI:            ui,
		Publisher:     paymentPublisher,
		EventLogger:   eventLogger,
		Metrics:       paymentMetrics,
		commissionCfg: cfg.Commission,
		escrowCfg:     cfg.Escrow,
		topic:         cfg.KafkaService.Topic,
		providerMeta:  providerMeta,
		locks:         newTxLocks(),
		orderLocks:    newTxLocks(),
		newTransactionID: func() string {
			return transactionIDPrefix + idGenerator()
		},
	}, nil
}
