package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the payment domain counters. Request metrics come from the
// echoprometheus middleware on the same registry.
type Metrics struct {
	verifications  *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
}

// New registers the payment counters on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payment",
			Name:      "verifications_total",
			Help:      "Payment verification outcomes by provider.",
		}, []string{"provider", "result"}),
		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "payment",
			Name:      "provider_errors_total",
			Help:      "Failed payment provider calls by provider and operation.",
		}, []string{"provider", "op"}),
	}
	reg.MustRegister(m.verifications, m.providerErrors)
	return m
}

func (m *Metrics) ObserveVerification(provider, result string) {
	m.verifications.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) ObserveProviderError(provider, op string) {
	m.providerErrors.WithLabelValues(provider, op).Inc()
}
