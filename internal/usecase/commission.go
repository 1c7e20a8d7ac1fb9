package usecase

import "github.com/mozmarket/payment-service/internal/config"

// CalculateCommission applies the platform rate for the seller tier,
// clamped to the configured minimum fee. Service listings use the
// service rate even for premium sellers.
func CalculateCommission(cfg config.Commission, amount float64, isPremium, isService bool) float64 {
	rate := cfg.Standard
	if isPremium {
		rate = cfg.Premium
	}
	if isService {
		rate = cfg.Service
	}

	commission := amount * rate
	if commission < cfg.MinimumAmount {
		commission = cfg.MinimumAmount
	}
	return commission
}
