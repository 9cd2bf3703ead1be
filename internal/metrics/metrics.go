package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the referral workflow. Registered on the default registry and
// exposed through /metrics.
var (
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "referral",
		Name:      "status_transitions_total",
		Help:      "Number of request status transitions, by target status.",
	}, []string{"status"})

	ContactAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "referral",
		Name:      "contact_attempts_total",
		Help:      "Number of scheduling contact attempts, by outcome.",
	}, []string{"outcome"})

	EscalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "referral",
		Name:      "escalations_total",
		Help:      "Number of requests handed back to reception after repeated failed contact attempts.",
	})
)
