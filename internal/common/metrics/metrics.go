// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_actions_total",
			Help: "Total number of action executions by outcome",
		},
		[]string{"action", "outcome"},
	)

	ActionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_action_failures_total",
			Help: "Total number of failed action executions by error code",
		},
		[]string{"action", "error_code"},
	)

	ActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_action_duration_seconds",
			Help:    "Duration of action execution in seconds, inference included",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"action"},
	)

	ActionsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_actions_in_flight",
			Help: "Number of action executions currently awaiting inference",
		},
		[]string{"action"},
	)

	PendingRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_pending_rejections_total",
			Help: "Submissions rejected because the same form already had one in flight",
		},
		[]string{"action"},
	)
)
