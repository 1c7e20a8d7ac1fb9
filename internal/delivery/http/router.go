package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func timeNow() time.Time { return time.Now() }

// NewRouter mounts the payment API and the prometheus scrape endpoint.
func NewRouter(handler *PaymentHandler) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/payments", handler.InitiatePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{transactionId}/refund", handler.RefundTransaction).Methods(http.MethodPost)
	api.HandleFunc("/webhooks/{method}", handler.HandleWebhook).Methods(http.MethodPost)
	api.HandleFunc("/escrow/due", handler.ListDueEscrows).Methods(http.MethodGet)
	api.HandleFunc("/escrow/{transactionId}/release", handler.ReleaseEscrow).Methods(http.MethodPost)
	api.HandleFunc("/fraud/assess", handler.AssessFraud).Methods(http.MethodPost)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}
