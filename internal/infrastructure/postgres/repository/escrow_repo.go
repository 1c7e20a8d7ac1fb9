package repository

import (
	"fmt"

	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultEscrowRepository struct {
	DB *gorm.DB
}

func NewDefaultEscrowRepository(db *gorm.DB) *DefaultEscrowRepository {
	return &DefaultEscrowRepository{DB: db}
}

func (r *DefaultEscrowRepository) CreateEscrow(record *domain.EscrowRecord) error {
	escrowModel := mappers.ToGORMEscrow(record)
	if err := r.DB.Create(escrowModel).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
	return nil
}

func (r *DefaultEscrowRepository) UpdateEscrowStatus(transactionID string, newStatus domain.EscrowStatus) error {
	result := r.DB.Model(&models.EscrowModel{}).
		Where("transaction_id = ?", transactionID).
		Update("status", newStatus)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, result.Error)
	}
	return nil
}

func (r *DefaultEscrowRepository) ListActiveEscrows() ([]*domain.EscrowRecord, error) {
	var escrowModels []models.EscrowModel
	if err := r.DB.
		Where("status = ?", domain.EscrowPending).
		Find(&escrowModels).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	records := make([]*domain.EscrowRecord, len(escrowModels))
	for i, escrowModel := range escrowModels {
		records[i] = mappers.ToDomainEscrow(&escrowModel)
	}

	return records, nil
}
