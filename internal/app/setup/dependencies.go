package setup

import (
	"fmt"

	"github.com/mozmarket/payment-service/internal/config"
	"github.com/mozmarket/payment-service/internal/domain"
	publisher "github.com/mozmarket/payment-service/internal/infrastructure/kafka"
	"github.com/mozmarket/payment-service/internal/infrastructure/logger"
	"github.com/mozmarket/payment-service/internal/infrastructure/metrics"
	"github.com/mozmarket/payment-service/internal/infrastructure/migrate"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/repository"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config         *config.PaymentConfig
	DB             *gorm.DB
	EventPublisher *publisher.DefaultKafkaPublisher
	EventLogger    logger.PaymentEventLogger
	Metrics        *metrics.PaymentMetrics
	Repositories   *Repositories
}

type Repositories struct {
	TransactionRepo domain.TransactionRepository
	OrderRepo       domain.OrderRepository
	EscrowRepo      domain.EscrowRepository
	PendingRepo     domain.PendingPaymentRepository
	BuyerActivity   domain.BuyerActivityProvider
}

func InitializeDependencies() (*Dependencies, error) {
	cfg := config.MustLoad()

	db := postgres.MustInitDB(cfg)

	if cfg.PaymentDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.PaymentDB.MigrationsPath); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	eventPublisher := publisher.NewDefaultKafkaPublisher(brokers)

	orderRepo := repository.NewDefaultOrderRepository(db)
	repos := &Repositories{
		TransactionRepo: repository.NewDefaultTransactionRepository(db),
		OrderRepo:       orderRepo,
		EscrowRepo:      repository.NewDefaultEscrowRepository(db),
		PendingRepo:     repository.NewDefaultPendingPaymentRepository(db),
		BuyerActivity:   repository.NewBuyerActivity(orderRepo),
	}

	return &Dependencies{
		Config:         cfg,
		DB:             db,
		EventPublisher: eventPublisher,
		EventLogger:    logger.NewPGPaymentEventLogger(db),
		Metrics:        metrics.NewPaymentMetrics(),
		Repositories:   repos,
	}, nil
}
