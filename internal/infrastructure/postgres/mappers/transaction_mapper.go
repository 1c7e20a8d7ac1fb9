package mappers

import (
	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:                model.ID,
		OrderID:           model.OrderID,
		Amount:            model.Amount,
		Commission:        model.Commission,
		PaymentMethod:     domain.PaymentMethod(model.PaymentMethod),
		Status:            model.Status,
		ProviderReference: model.ProviderReference,
		ProviderResponse:  []byte(model.ProviderResponse),
		EscrowReleased:    model.EscrowReleased,
		ReleaseReason:     model.ReleaseReason,
		SellerAmount:      model.SellerAmount,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
		ConfirmedAt:       model.ConfirmedAt,
	}
}

func ToGORMTransaction(tx *domain.Transaction) *models.TransactionModel {
	return &models.TransactionModel{
		ID:                tx.ID,
		OrderID:           tx.OrderID,
		Amount:            tx.Amount,
		Commission:        tx.Commission,
		PaymentMethod:     string(tx.PaymentMethod),
		Status:            tx.Status,
		ProviderReference: tx.ProviderReference,
		ProviderResponse:  string(tx.ProviderResponse),
		EscrowReleased:    tx.EscrowReleased,
		ReleaseReason:     tx.ReleaseReason,
		SellerAmount:      tx.SellerAmount,
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
		ConfirmedAt:       tx.ConfirmedAt,
	}
}
