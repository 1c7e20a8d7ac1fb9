package domain

type FraudDecision string

const (
	FraudApproved             FraudDecision = "approved"
	FraudRequiresReview       FraudDecision = "requires_review"
	FraudRequiresVerification FraudDecision = "requires_verification"
)

// FraudAssessment is ephemeral: it is computed per initiation and never
// persisted by the payment core.
type FraudAssessment struct {
	RiskScore int
	Checks    []string
	Decision  FraudDecision
	Message   string
}

func (a *FraudAssessment) Approved() bool {
	return a.Decision == FraudApproved
}

// BuyerActivityProvider supplies the environment counters the fraud
// screener cannot compute itself.
type BuyerActivityProvider interface {
	OrdersToday(buyerID string) (int, error)
}
