package repository

import (
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
)

// BuyerActivity adapts the order repository to the counter port the
// fraud screener consumes.
type BuyerActivity struct {
	Orders domain.OrderRepository
}

func NewBuyerActivity(orders domain.OrderRepository) *BuyerActivity {
	return &BuyerActivity{Orders: orders}
}

func (a *BuyerActivity) OrdersToday(buyerID string) (int, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return a.Orders.CountOrdersSince(buyerID, midnight)
}
