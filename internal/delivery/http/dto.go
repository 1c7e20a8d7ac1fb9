package http

import (
	"time"

	"github.com/mozmarket/payment-service/internal/domain"
	paymentdto "github.com/mozmarket/payment-service/internal/usecase/dto/payment"
)

type initiatePaymentRequest struct {
	OrderID       string  `json:"order_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Phone         string  `json:"phone"`
	BuyerID       string  `json:"buyer_id"`
	BuyerName     string  `json:"buyer_name"`
	SellerID      string  `json:"seller_id"`
	ProductName   string  `json:"product_name"`
	IsPremium     bool    `json:"is_premium"`
	IsService     bool    `json:"is_service"`
	PhoneVerified bool    `json:"phone_verified"`
	CallbackURL   string  `json:"callback_url"`
}

func (r *initiatePaymentRequest) toDomain() *domain.OrderRequest {
	return &domain.OrderRequest{
		OrderID:       r.OrderID,
		Amount:        r.Amount,
		Phone:         r.Phone,
		BuyerID:       r.BuyerID,
		BuyerName:     r.BuyerName,
		SellerID:      r.SellerID,
		ProductName:   r.ProductName,
		IsPremium:     r.IsPremium,
		IsService:     r.IsService,
		PhoneVerified: r.PhoneVerified,
		CallbackURL:   r.CallbackURL,
	}
}

type paymentInstructionsResponse struct {
	Method     string  `json:"method"`
	MethodName string  `json:"method_name"`
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
	Phone      string  `json:"phone"`
	Amount     float64 `json:"amount"`
}

type initiatePaymentResponse struct {
	Success           bool                         `json:"success"`
	TransactionID     string                       `json:"transaction_id,omitempty"`
	OrderID           string                       `json:"order_id"`
	ProviderReference string                       `json:"provider_reference,omitempty"`
	Message           string                       `json:"message,omitempty"`
	RequiresUserInput bool                         `json:"requires_user_input,omitempty"`
	Instructions      *paymentInstructionsResponse `json:"instructions,omitempty"`
}

func toInitiateResponse(result *paymentdto.PaymentResult) initiatePaymentResponse {
	response := initiatePaymentResponse{
		Success:           result.Success,
		TransactionID:     result.TransactionID,
		OrderID:           result.OrderID,
		ProviderReference: result.ProviderReference,
		Message:           result.Message,
		RequiresUserInput: result.RequiresUserInput,
	}
	if result.Instructions != nil {
		response.Instructions = &paymentInstructionsResponse{
			Method:     string(result.Instructions.Method),
			MethodName: result.Instructions.MethodName,
			Icon:       result.Instructions.Icon,
			Color:      result.Instructions.Color,
			Phone:      result.Instructions.Phone,
			Amount:     result.Instructions.Amount,
		}
	}
	return response
}

type releaseEscrowRequest struct {
	Reason string `json:"reason"`
}

type releaseEscrowResponse struct {
	TransactionID string  `json:"transaction_id"`
	SellerAmount  float64 `json:"seller_amount"`
	Commission    float64 `json:"commission"`
}

type refundRequest struct {
	Reason string `json:"reason"`
}

type fraudAssessmentResponse struct {
	RiskScore int      `json:"risk_score"`
	Checks    []string `json:"checks"`
	Decision  string   `json:"decision"`
	Message   string   `json:"message,omitempty"`
}

type dueEscrowResponse struct {
	TransactionID string    `json:"transaction_id"`
	OrderID       string    `json:"order_id"`
	SellerID      string    `json:"seller_id"`
	Amount        float64   `json:"amount"`
	Commission    float64   `json:"commission"`
	EscrowDate    time.Time `json:"escrow_date"`
	ReleaseDate   time.Time `json:"release_date"`
}

type errorResponse struct {
	Error         string `json:"error"`
	OrderID       string `json:"order_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}
