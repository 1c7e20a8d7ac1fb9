package antifraud

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mozmarket/payment-service/internal/config"
	"github.com/mozmarket/payment-service/internal/domain"
)

const (
	scoreAmountAboveLimit  = 30
	scoreTooManyOrders     = 25
	scoreSuspiciousKeyword = 20
	scorePhoneUnverified   = 15
)

// Screener scores an order for risk before any funds move. Scoring is
// additive: every check runs regardless of the running total.
type Screener struct {
	cfg      config.Antifraud
	activity domain.BuyerActivityProvider
}

func NewScreener(cfg config.Antifraud, activity domain.BuyerActivityProvider) *Screener {
	return &Screener{
		cfg:      cfg,
		activity: activity,
	}
}

// Assess performs no I/O beyond the injected activity counter and never
// mutates the order. If the counter collaborator is unavailable the
// screener fails closed instead of skipping the check.
func (s *Screener) Assess(order *domain.OrderRequest) (*domain.FraudAssessment, error) {
	riskScore := 0
	checks := make([]string, 0, 4)

	if order.Amount > s.cfg.MaxOrderValue {
		riskScore += scoreAmountAboveLimit
		checks = append(checks, "amount above limit")
	}

	ordersToday, err := s.activity.OrdersToday(order.BuyerID)
	if err != nil {
		slog.Error("fraud screening aborted, activity counter unavailable",
			"order_id", order.OrderID, "buyer_id", order.BuyerID, "error", err.Error())
		return nil, domain.NewPaymentError(domain.ErrPersistenceFailed, order.OrderID, "", "buyer activity counter unavailable")
	}
	if ordersToday > s.cfg.MaxOrdersPerDay {
		riskScore += scoreTooManyOrders
		checks = append(checks, "too many orders today")
	}

	searchText := strings.ToLower(order.ProductName + " " + order.BuyerName)
	for _, keyword := range s.cfg.SuspiciousKeywords {
		if strings.Contains(searchText, strings.ToLower(keyword)) {
			riskScore += scoreSuspiciousKeyword
			checks = append(checks, fmt.Sprintf("suspicious keyword: %s", keyword))
		}
	}

	if !order.PhoneVerified {
		riskScore += scorePhoneUnverified
		checks = append(checks, "phone not verified")
	}

	assessment := &domain.FraudAssessment{
		RiskScore: riskScore,
		Checks:    checks,
	}

	switch {
	case riskScore >= s.cfg.RiskScoreThreshold:
		assessment.Decision = domain.FraudRequiresReview
		assessment.Message = "transaction requires manual review"
	case order.Amount > s.cfg.RequireVerificationAbove:
		assessment.Decision = domain.FraudRequiresVerification
		assessment.Message = "additional verification required for high amounts"
	default:
		assessment.Decision = domain.FraudApproved
	}

	slog.Info("fraud screening done",
		"order_id", order.OrderID,
		"risk_score", riskScore,
		"decision", string(assessment.Decision),
		"checks", checks)

	return assessment, nil
}
