package publisher

type PaymentEvent struct {
	TransactionID string  `json:"transaction_id"`
	OrderID       string  `json:"order_id"`
	SellerID      string  `json:"seller_id"`
	EventType     string  `json:"event_type"`
	Amount        float64 `json:"amount"`
	SellerAmount  float64 `json:"seller_amount"`
	Commission    float64 `json:"commission"`
	PaymentMethod string  `json:"payment_method"`
	Message       string  `json:"message"`
}
