package models

import (
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
)

type EscrowModel struct {
	TransactionID string `gorm:"primaryKey"`
	OrderID       string `gorm:"index:idx_escrow_order"`
	SellerID      string
	Amount        float64
	Commission    float64
	Status        domain.EscrowStatus `gorm:"index:idx_escrow_status_release"`
	EscrowDate    time.Time
	ReleaseDate   time.Time `gorm:"index:idx_escrow_status_release"`
}
