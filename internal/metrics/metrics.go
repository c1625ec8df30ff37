// Package metrics collects and exposes Prometheus counters for the
// verification flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts verification outcomes by method and result
type Collector struct {
	scans *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusqr_verifications_total",
			Help: "Verification attempts by method and result.",
		}, []string{"method", "result"}),
	}

	reg.MustRegister(c.scans)

	return c
}

// RecordVerification counts one verification attempt.
// method is "qr" or "manual"; granted is the decision.
func (c *Collector) RecordVerification(method string, granted bool) {
	result := "denied"
	if granted {
		result = "granted"
	}
	c.scans.WithLabelValues(method, result).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
