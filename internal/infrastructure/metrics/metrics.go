package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics holds every collector the payment core records into.
type PaymentMetrics struct {
	PaymentsInitiatedTotal   prometheus.CounterVec
	PaymentsInitiatedAmount  prometheus.CounterVec
	PaymentsCompletedTotal   prometheus.CounterVec
	PaymentsFailedTotal      prometheus.CounterVec
	PaymentErrorsTotal       prometheus.CounterVec
	CommissionTotal          prometheus.CounterVec
	EscrowHeldAmount         prometheus.Gauge
	EscrowReleasedTotal      prometheus.CounterVec
	EscrowReversedTotal      prometheus.CounterVec
	FraudDecisionsTotal      prometheus.CounterVec
	WebhookProcessingSeconds prometheus.HistogramVec
}

func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		PaymentsInitiatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_initiated_total",
				Help: "Payments dispatched to a provider",
			},
			[]string{"method"},
		),

		PaymentsInitiatedAmount: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_initiated_amount_total",
				Help: "Total amount of dispatched payments in MZN",
			},
			[]string{"method"},
		),

		PaymentsCompletedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_completed_total",
				Help: "Payments confirmed by a provider webhook",
			},
			[]string{"method"},
		),

		PaymentsFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_failed_total",
				Help: "Payments rejected or failed by a provider",
			},
			[]string{"method", "stage"},
		),

		PaymentErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_errors_total",
				Help: "Errors surfaced by the payment core",
			},
			[]string{"error_type"},
		),

		CommissionTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platform_commission_total",
				Help: "Platform commission collected on released escrows in MZN",
			},
			[]string{"method"},
		),

		EscrowHeldAmount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "escrow_held_amount",
				Help: "Amount currently held in escrow in MZN",
			},
		),

		EscrowReleasedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_released_total",
				Help: "Escrow records released to sellers",
			},
			[]string{"reason"},
		),

		EscrowReversedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "escrow_reversed_total",
				Help: "Escrow records reversed instead of released",
			},
			[]string{"reason"},
		),

		FraudDecisionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraud_decisions_total",
				Help: "Fraud screening decisions",
			},
			[]string{"decision"},
		),

		WebhookProcessingSeconds: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webhook_processing_seconds",
				Help:    "Webhook reconciliation latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

func (m *PaymentMetrics) RecordPaymentInitiated(method string, amount float64) {
	m.PaymentsInitiatedTotal.WithLabelValues(method).Inc()
	m.PaymentsInitiatedAmount.WithLabelValues(method).Add(amount)
}

func (m *PaymentMetrics) RecordPaymentCompleted(method string) {
	m.PaymentsCompletedTotal.WithLabelValues(method).Inc()
}

func (m *PaymentMetrics) RecordPaymentFailed(method, stage string) {
	m.PaymentsFailedTotal.WithLabelValues(method, stage).Inc()
}

func (m *PaymentMetrics) RecordError(errorType string) {
	m.PaymentErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *PaymentMetrics) RecordEscrowHeld(amount float64) {
	m.EscrowHeldAmount.Add(amount)
}

func (m *PaymentMetrics) RecordEscrowReleased(method, reason string, amount, commission float64) {
	m.EscrowReleasedTotal.WithLabelValues(reason).Inc()
	m.EscrowHeldAmount.Sub(amount)
	m.CommissionTotal.WithLabelValues(method).Add(commission)
}

func (m *PaymentMetrics) RecordEscrowReversed(reason string, amount float64) {
	m.EscrowReversedTotal.WithLabelValues(reason).Inc()
	m.EscrowHeldAmount.Sub(amount)
}

func (m *PaymentMetrics) RecordFraudDecision(decision string) {
	m.FraudDecisionsTotal.WithLabelValues(decision).Inc()
}

func (m *PaymentMetrics) RecordWebhookDuration(method string, seconds float64) {
	m.WebhookProcessingSeconds.WithLabelValues(method).Observe(seconds)
}
