package usecase

// Metrics helpers tolerate a nil collector set so tests can construct
// the usecase without registering prometheus collectors.

func (uc *DefaultPaymentUsecase) recordInitiated(method string, amount float64) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordPaymentInitiated(method, amount)
}

func (uc *DefaultPaymentUsecase) recordCompleted(method string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordPaymentCompleted(method)
}

func (uc *DefaultPaymentUsecase) recordFailed(method, stage string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordPaymentFailed(method, stage)
}

func (uc *DefaultPaymentUsecase) recordError(errorType string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordError(errorType)
}

func (uc *DefaultPaymentUsecase) recordEscrowHeld(amount float64) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordEscrowHeld(amount)
}

func (uc *DefaultPaymentUsecase) recordEscrowReleased(method, reason string, amount, commission float64) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordEscrowReleased(method, reason, amount, commission)
}

func (uc *DefaultPaymentUsecase) recordEscrowReversed(reason string, amount float64) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordEscrowReversed(reason, amount)
}

func (uc *DefaultPaymentUsecase) recordFraudDecision(decision string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordFraudDecision(decision)
}

func (uc *DefaultPaymentUsecase) recordWebhookDuration(method string, seconds float64) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordWebhookDuration(method, seconds)
}
