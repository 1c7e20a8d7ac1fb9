package mappers

import (
	"encoding/json"

	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/models"
)

func ToDomainPendingPayment(model *models.PendingPaymentModel) (*domain.PendingPayment, error) {
	var order domain.OrderRequest
	if err := json.Unmarshal([]byte(model.OrderRequest), &order); err != nil {
		return nil, err
	}
	return &domain.PendingPayment{
		TransactionID: model.TransactionID,
		OrderID:       model.OrderID,
		Method:        domain.PaymentMethod(model.PaymentMethod),
		Order:         order,
		DispatchedAt:  model.DispatchedAt,
	}, nil
}

func ToGORMPendingPayment(entry *domain.PendingPayment) (*models.PendingPaymentModel, error) {
	orderJSON, err := json.Marshal(entry.Order)
	if err != nil {
		return nil, err
	}
	return &models.PendingPaymentModel{
		TransactionID: entry.TransactionID,
		OrderID:       entry.OrderID,
		PaymentMethod: string(entry.Method),
		OrderRequest:  string(orderJSON),
		DispatchedAt:  entry.DispatchedAt,
	}, nil
}
