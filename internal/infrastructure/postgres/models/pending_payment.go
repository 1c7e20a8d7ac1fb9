package models

import "time"

type PendingPaymentModel struct {
	TransactionID string `gorm:"primaryKey"`
	OrderID       string `gorm:"index:idx_pending_order"`
	PaymentMethod string
	OrderRequest  string    `gorm:"type:jsonb"`
	DispatchedAt  time.Time `gorm:"index:idx_pending_dispatched"`
}
