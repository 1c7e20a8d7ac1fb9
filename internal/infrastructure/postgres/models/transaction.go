package models

import (
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
)

type TransactionModel struct {
	ID                string `gorm:"primaryKey"`
	OrderID           string `gorm:"index:idx_tx_order"`
	Amount            float64
	Commission        float64
	PaymentMethod     string
	Status            domain.TransactionStatus `gorm:"index:idx_tx_status"`
	ProviderReference string
	ProviderResponse  string `gorm:"type:jsonb"`
	EscrowReleased    bool
	ReleaseReason     string
	SellerAmount      float64
	CreatedAt         time.Time `gorm:"index:idx_tx_created_at"`
	UpdatedAt         time.Time
	ConfirmedAt       *time.Time
}
