// Package metrics provides Prometheus metrics for the site orchestrator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Selection outcomes.
const (
	OutcomeLLM      = "llm"
	OutcomeFallback = "fallback"
	OutcomeCache    = "cache"
)

var (
	// SelectionsTotal counts holistic selections by outcome.
	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "welcomecraft",
			Name:      "site_selections_total",
			Help:      "Total number of holistic site selections",
		},
		[]string{"outcome"},
	)

	// SelectionDuration measures selection latency including the LLM call.
	SelectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "welcomecraft",
			Name:      "site_selection_duration_seconds",
			Help:      "Duration of holistic site selections in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	// FallbacksTotal counts fallback selections by cause.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "welcomecraft",
			Name:      "site_selection_fallbacks_total",
			Help:      "Total number of fallback selections by reason",
		},
		[]string{"reason"},
	)

	// CandidatesAggregated observes bundle sizes.
	CandidatesAggregated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "welcomecraft",
			Name:      "candidates_aggregated",
			Help:      "Distribution of candidate counts per aggregation",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	// JobsTotal counts processed site generation jobs.
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "welcomecraft",
			Name:      "site_jobs_total",
			Help:      "Total number of processed site generation jobs",
		},
		[]string{"status"},
	)
)

// RecordSelection records a finished selection.
func RecordSelection(outcome string, seconds float64) {
	SelectionsTotal.WithLabelValues(outcome).Inc()
	SelectionDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordFallback records the reason a selection fell back.
func RecordFallback(reason string) {
	FallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordCandidates records the size of an aggregated bundle.
func RecordCandidates(total int) {
	CandidatesAggregated.Observe(float64(total))
}

// RecordJob records a processed job.
func RecordJob(status string) {
	JobsTotal.WithLabelValues(status).Inc()
}
