package obs

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operational metrics. The audit sink counter is the mandated operational
// error channel: audit faults never change a request outcome, but they
// surface here and in logs.
var (
	accessDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Access control decisions by outcome and reason.",
		},
		[]string{"outcome", "reason"},
	)

	auditSinkFaults = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_sink_failures_total",
		Help: "Audit events that failed to persist.",
	})
)

var registerOnce sync.Once

// Init registers metrics in the default registry. Safe to call more than
// once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(accessDecisions, auditSinkFaults)
	})
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDecision counts one terminal guard decision.
func ObserveDecision(outcome, reason string) {
	if reason == "" {
		reason = "none"
	}
	accessDecisions.WithLabelValues(outcome, reason).Inc()
}

// AuditSinkFault counts one failed audit write.
func AuditSinkFault(error) {
	auditSinkFaults.Inc()
}
