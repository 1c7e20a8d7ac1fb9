package domain

import (
	"regexp"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderPending       OrderStatus = "pending"
	OrderPaid          OrderStatus = "paid"
	OrderCompleted     OrderStatus = "completed"
	OrderPaymentFailed OrderStatus = "payment_failed"
	OrderRefunded      OrderStatus = "refunded"
)

// OrderRequest is the immutable input to payment initiation. It is owned
// by the caller; the payment core never mutates it.
type OrderRequest struct {
	OrderID       string
	Amount        float64
	Phone         string
	BuyerID       string
	BuyerName     string
	SellerID      string
	ProductName   string
	IsPremium     bool
	IsService     bool
	PhoneVerified bool
	CallbackURL   string
}

// Mozambican mobile numbers: two-digit network prefix plus seven digits.
var phonePattern = regexp.MustCompile(`^(82|83|84|85|86|87)[0-9]{7}$`)

// NormalizePhone strips every non-digit character and a leading 258
// country code.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 12 && strings.HasPrefix(digits, "258") {
		digits = digits[3:]
	}
	return digits
}

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

type Order struct {
	ID            string
	BuyerID       string
	SellerID      string
	Amount        float64
	Status        OrderStatus
	PaymentMethod string
	DisputeOpen   bool
	CallbackURL   string
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderRepository interface {
	GetOrderByID(orderID string) (*Order, error)
	UpdateOrderStatus(orderID string, newStatus OrderStatus) error
	SetOrderPaid(orderID string, method PaymentMethod, paidAt time.Time) error
	CountOrdersSince(buyerID string, since time.Time) (int, error)
}
