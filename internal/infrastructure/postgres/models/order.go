package models

import (
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
)

type OrderModel struct {
	ID            string `gorm:"primaryKey"`
	BuyerID       string `gorm:"index:idx_order_buyer_created"`
	SellerID      string
	Amount        float64
	Status        domain.OrderStatus `gorm:"index:idx_order_status"`
	PaymentMethod string
	DisputeOpen   bool
	CallbackURL   string
	PaidAt        *time.Time
	CreatedAt     time.Time `gorm:"index:idx_order_buyer_created"`
	UpdatedAt     time.Time
}
