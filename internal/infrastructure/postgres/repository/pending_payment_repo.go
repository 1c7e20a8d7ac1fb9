package repository

import (
	"fmt"
	"log/slog"

	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPendingPaymentRepository struct {
	DB *gorm.DB
}

func NewDefaultPendingPaymentRepository(db *gorm.DB) *DefaultPendingPaymentRepository {
	return &DefaultPendingPaymentRepository{DB: db}
}

func (r *DefaultPendingPaymentRepository) CreatePendingPayment(entry *domain.PendingPayment) error {
	pendingModel, err := mappers.ToGORMPendingPayment(entry)
	if err != nil {
		return err
	}
	if err := r.DB.Create(pendingModel).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
	return nil
}

func (r *DefaultPendingPaymentRepository) DeletePendingPayment(transactionID string) error {
	result := r.DB.Delete(&models.PendingPaymentModel{}, "transaction_id = ?", transactionID)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, result.Error)
	}
	return nil
}

func (r *DefaultPendingPaymentRepository) ListPendingPayments() ([]*domain.PendingPayment, error) {
	var pendingModels []models.PendingPaymentModel
	if err := r.DB.Find(&pendingModels).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	entries := make([]*domain.PendingPayment, 0, len(pendingModels))
	for i := range pendingModels {
		entry, err := mappers.ToDomainPendingPayment(&pendingModels[i])
		if err != nil {
			slog.Error("skipping corrupt pending payment row",
				"transaction_id", pendingModels[i].TransactionID, "error", err.Error())
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
