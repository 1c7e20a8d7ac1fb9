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

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) GetOrderByID(orderID string) (*domain.Order, error) {
	var orderModel models.OrderModel
	if err := r.DB.First(&orderModel, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
	return mappers.ToDomainOrder(&orderModel), nil
}

func (r *DefaultOrderRepository) UpdateOrderStatus(orderID string, newStatus domain.OrderStatus) error {
	result := r.DB.Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Update("status", newStatus)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, result.Error)
	}
	return nil
}

func (r *DefaultOrderRepository) SetOrderPaid(orderID string, method domain.PaymentMethod, paidAt time.Time) error {
	result := r.DB.Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":         domain.OrderPaid,
			"payment_method": string(method),
			"paid_at":        paidAt,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, result.Error)
	}
	return nil
}

// CountOrdersSince backs the fraud screener's orders-per-day check.
func (r *DefaultOrderRepository) CountOrdersSince(buyerID string, since time.Time) (int, error) {
	var total int64
	if err := r.DB.Model(&models.OrderModel{}).
		Where("buyer_id = ?", buyerID).
		Where("created_at >= ?", since).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
	return int(total), nil
}
