package mappers

import (
	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	return &domain.Order{
		ID:            model.ID,
		BuyerID:       model.BuyerID,
		SellerID:      model.SellerID,
		Amount:        model.Amount,
		Status:        model.Status,
		PaymentMethod: model.PaymentMethod,
		DisputeOpen:   model.DisputeOpen,
		CallbackURL:   model.CallbackURL,
		PaidAt:        model.PaidAt,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
