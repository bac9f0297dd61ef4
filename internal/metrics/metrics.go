package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PaymentMetrics counts the outcomes of the two confirmation paths. The
// webhook outcome labels mirror the reconciler's decisions: applied,
// duplicate, mismatch, unknown_reference, ignored.
type PaymentMetrics struct {
	Verifications *prometheus.CounterVec
	Webhooks      *prometheus.CounterVec
}

func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "norahair",
		Subsystem: "payments",
		Name:      "verifications_total",
		Help:      "Paystack verify calls by outcome.",
	}, []string{"outcome"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "norahair",
		Subsystem: "payments",
		Name:      "webhook_events_total",
		Help:      "Paystack webhook deliveries by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(verifications, webhooks)
	return &PaymentMetrics{Verifications: verifications, Webhooks: webhooks}
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
