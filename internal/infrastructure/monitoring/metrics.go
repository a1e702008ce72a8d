package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type MatchingMetrics struct {
	AnalysisRuns     *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	LenderOutcomes   *prometheus.CounterVec
}

type ExtractionMetrics struct {
	Attempts  *prometheus.CounterVec
	Fallbacks *prometheus.CounterVec
}

type LifecycleMetrics struct {
	Transitions *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_marketplace_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Matching = MatchingMetrics{
		AnalysisRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_marketplace_analysis_runs_total",
				Help: "Total number of eligibility analysis runs by result.",
			},
			[]string{"status"},
		),
		AnalysisDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loan_marketplace_analysis_duration_seconds",
				Help:    "Histogram of eligibility analysis run latencies.",
				Buckets: prometheus.DefBuckets,
			},
		),
		LenderOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_marketplace_lender_outcomes_total",
				Help: "Per-lender eligibility classifications.",
			},
			[]string{"status"},
		),
	}

	Extraction = ExtractionMetrics{
		Attempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_marketplace_extraction_attempts_total",
				Help: "Evidence provider calls by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		Fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_marketplace_extraction_fallbacks_total",
				Help: "Documents recorded as low-confidence fallbacks after all providers failed.",
			},
			[]string{"category"},
		),
	}

	Lifecycle = LifecycleMetrics{
		Transitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_marketplace_loan_request_transitions_total",
				Help: "Loan request status transitions by target status and outcome.",
			},
			[]string{"to", "outcome"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordAnalysisRun(status string, duration time.Duration) {
	Matching.AnalysisRuns.WithLabelValues(status).Inc()
	Matching.AnalysisDuration.Observe(duration.Seconds())
}

func RecordLenderOutcome(status string) {
	Matching.LenderOutcomes.WithLabelValues(status).Inc()
}

func RecordExtractionAttempt(provider, outcome string) {
	Extraction.Attempts.WithLabelValues(provider, outcome).Inc()
}

func RecordExtractionFallback(category string) {
	Extraction.Fallbacks.WithLabelValues(category).Inc()
}

func RecordTransition(to, outcome string) {
	Lifecycle.Transitions.WithLabelValues(to, outcome).Inc()
}
