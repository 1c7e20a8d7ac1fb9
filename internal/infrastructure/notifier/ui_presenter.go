package notifier

import (
	"log/slog"

	"github.com/mozmarket/payment-service/internal/domain"
)

// LogUIPresenter is the default UI collaborator: the real rendering
// lives in the storefront, this side only signals what to present.
type LogUIPresenter struct{}

func NewLogUIPresenter() *LogUIPresenter {
	return &LogUIPresenter{}
}

func (p *LogUIPresenter) PresentPaymentInstructions(instructions domain.PaymentInstructions) {
	slog.Info("presenting payment instructions",
		"method", string(instructions.Method),
		"method_name", instructions.MethodName,
		"phone", instructions.Phone,
		"amount", instructions.Amount)
}

func (p *LogUIPresenter) PresentCardForm(order *domain.OrderRequest, tx *domain.Transaction, cardType domain.PaymentMethod) {
	slog.Info("presenting card form",
		"order_id", order.OrderID,
		"transaction_id", tx.ID,
		"card_type", string(cardType))
}
