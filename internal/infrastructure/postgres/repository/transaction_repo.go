package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/mappers"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTransactionRepository struct {
	DB *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{DB: db}
}

func (r *DefaultTransactionRepository) CreateTransaction(tx *domain.Transaction) error {
	txModel := mappers.ToGORMTransaction(tx)
	if err := r.DB.Create(txModel).Error; err != nil {
		// The partial unique index on (order_id) WHERE status = 'pending'
		// backstops the orchestrator's duplicate guard.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %v", domain.ErrDuplicateInitiation, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
	return nil
}

func (r *DefaultTransactionRepository) GetTransactionByID(transactionID string) (*domain.Transaction, error) {
	var txModel models.TransactionModel
	if err := r.DB.First(&txModel, "id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
	return mappers.ToDomainTransaction(&txModel), nil
}

func (r *DefaultTransactionRepository) UpdateTransaction(transactionID string, update *domain.TransactionUpdate) error {
	updates := make(map[string]interface{})

	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.ProviderResponse != nil {
		updates["provider_response"] = string(update.ProviderResponse)
	}
	if update.ConfirmedAt != nil {
		updates["confirmed_at"] = *update.ConfirmedAt
	}
	if update.EscrowReleased != nil {
		updates["escrow_released"] = *update.EscrowReleased
	}
	if update.ReleaseReason != nil {
		updates["release_reason"] = *update.ReleaseReason
	}
	if update.SellerAmount != nil {
		updates["seller_amount"] = *update.SellerAmount
	}

	if len(updates) == 0 {
		return nil
	}

	result := r.DB.Model(&models.TransactionModel{}).Where("id = ?", transactionID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, result.Error)
	}
	return nil
}

func (r *DefaultTransactionRepository) SetProviderReference(transactionID, providerReference string, providerResponse []byte) error {
	result := r.DB.Model(&models.TransactionModel{}).
		Where("id = ?", transactionID).
		Updates(map[string]interface{}{
			"provider_reference": providerReference,
			"provider_response":  string(providerResponse),
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, result.Error)
	}
	return nil
}

func (r *DefaultTransactionRepository) FindNonTerminalByOrderID(orderID string) ([]*domain.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.DB.
		Where("order_id = ?", orderID).
		Where("status = ?", domain.TransactionPending).
		Find(&txModels).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	txs := make([]*domain.Transaction, len(txModels))
	for i, txModel := range txModels {
		txs[i] = mappers.ToDomainTransaction(&txModel)
	}

	return txs, nil
}

func (r *DefaultTransactionRepository) ListStalePending(methods []domain.PaymentMethod, before time.Time) ([]*domain.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.DB.
		Where("status = ?", domain.TransactionPending).
		Where("payment_method IN ?", methods).
		Where("created_at < ?", before).
		Find(&txModels).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	txs := make([]*domain.Transaction, len(txModels))
	for i, txModel := range txModels {
		txs[i] = mappers.ToDomainTransaction(&txModel)
	}

	return txs, nil
}
