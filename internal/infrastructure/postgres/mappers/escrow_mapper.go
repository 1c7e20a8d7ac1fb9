package mappers

import (
	"github.com/mozmarket/payment-service/internal/domain"
	"github.com/mozmarket/payment-service/internal/infrastructure/postgres/models"
)

func ToDomainEscrow(model *models.EscrowModel) *domain.EscrowRecord {
	return &domain.EscrowRecord{
		TransactionID: model.TransactionID,
		OrderID:       model.OrderID,
		SellerID:      model.SellerID,
		Amount:        model.Amount,
		Commission:    model.Commission,
		Status:        model.Status,
		EscrowDate:    model.EscrowDate,
		ReleaseDate:   model.ReleaseDate,
	}
}

func ToGORMEscrow(record *domain.EscrowRecord) *models.EscrowModel {
	return &models.EscrowModel{
		TransactionID: record.TransactionID,
		OrderID:       record.OrderID,
		SellerID:      record.SellerID,
		Amount:        record.Amount,
		Commission:    record.Commission,
		Status:        record.Status,
		EscrowDate:    record.EscrowDate,
		ReleaseDate:   record.ReleaseDate,
	}
}
