package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "collections",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by outcome",
		},
		[]string{"outcome"}, // "results" / "empty" / "error"
	)

	SearchStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "collections",
			Name:      "search_stage_duration_seconds",
			Help:      "Search pipeline stage duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"}, // "retrieval" / "answer"
	)

	SearchResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "collections",
			Name:      "search_results_returned",
			Help:      "Number of results returned after relevance filtering",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	AnswerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "collections",
			Name:      "answer_requests_total",
			Help:      "Total number of text generation requests",
		},
		[]string{"provider", "model", "status"},
	)

	AnswerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "collections",
			Name:      "answer_request_duration_seconds",
			Help:      "Text generation request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "model"},
	)

	AnswerTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "collections",
			Name:      "answer_tokens_total",
			Help:      "Total text generation tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	AnswerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "collections",
			Name:      "answer_errors_total",
			Help:      "Total text generation errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "collections",
			Name:      "index_documents",
			Help:      "Number of documents in the published index",
		},
	)

	IndexRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "collections",
			Name:      "index_rebuild_duration_seconds",
			Help:      "Index rebuild duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	IndexRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "collections",
			Name:      "index_rebuilds_total",
			Help:      "Total index rebuilds by status",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// RegisterPipelineMetrics registers search, answer and index metrics on the default registry.
// Repeated calls are no-ops.
func RegisterPipelineMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SearchRequestsTotal,
			SearchStageDuration,
			SearchResultsReturned,
			AnswerRequestsTotal,
			AnswerRequestDuration,
			AnswerTokensTotal,
			AnswerErrorsTotal,
			IndexDocuments,
			IndexRebuildDuration,
			IndexRebuildsTotal,
		)
	})
}
