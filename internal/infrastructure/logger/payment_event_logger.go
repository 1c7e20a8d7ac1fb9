package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentInitiatedEvent struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	TransactionID string
	OrderID       string
	SellerID      string
	BuyerID       string
	Amount        float64
	Commission    float64
	PaymentMethod string
	RiskScore     int
	Timestamp     time.Time
}

type PaymentResolvedEvent struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	TransactionID string
	OrderID       string
	Status        string
	Reason        string
	SellerAmount  float64
	Timestamp     time.Time
}

type PaymentEventLogger interface {
	LogPaymentInitiated(ctx context.Context, event PaymentInitiatedEvent) error
	LogPaymentResolved(ctx context.Context, event PaymentResolvedEvent) error
}

type PGPaymentEventLogger struct {
	db *gorm.DB
}

func NewPGPaymentEventLogger(db *gorm.DB) *PGPaymentEventLogger {
	db.AutoMigrate(&PaymentInitiatedEvent{}, &PaymentResolvedEvent{})
	return &PGPaymentEventLogger{db: db}
}

func (l *PGPaymentEventLogger) LogPaymentInitiated(ctx context.Context, event PaymentInitiatedEvent) error {
	event.ID = uuid.New().String()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return l.db.WithContext(ctx).Create(&event).Error
}

func (l *PGPaymentEventLogger) LogPaymentResolved(ctx context.Context, event PaymentResolvedEvent) error {
	event.ID = uuid.New().String()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return l.db.WithContext(ctx).Create(&event).Error
}
