package usecase

import "github.com/mozmarket/payment-service/internal/domain"

// AssessFraud runs the screening pipeline without initiating a payment,
// for the standalone assessment endpoint.
func (uc *DefaultPaymentUsecase) AssessFraud(order *domain.OrderRequest) (*domain.FraudAssessment, error) {
	assessment, err := uc.Screener.Assess(order)
	if err != nil {
		uc.recordError("fraud_screen_unavailable")
		return nil, err
	}
	uc.recordFraudDecision(string(assessment.Decision))
	return assessment, nil
}
