// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_joins_total",
			Help: "Total number of contest join attempts",
		},
		[]string{"contest", "outcome"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_submissions_total",
			Help: "Total number of submissions created",
		},
		[]string{"contest", "status"},
	)

	PrizeValueHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contest_prize_value",
			Help:    "Distribution of award values attached to contests",
			Buckets: prometheus.ExponentialBuckets(10, 5, 7),
		},
		[]string{"award_type"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
