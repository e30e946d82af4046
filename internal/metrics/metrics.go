package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_total",
			Help: "Push dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)

	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "Operator-driven status transitions by new status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(DispatchTotal)
	prometheus.MustRegister(StatusTransitionsTotal)
}

const (
	OutcomeSuccess   = "success"
	OutcomeAuthError = "auth_error"
	OutcomeFailure   = "failure"
)
