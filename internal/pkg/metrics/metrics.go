package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fscqa_queries_total",
			Help: "Total number of questions relayed, by outcome",
		},
		[]string{"status"},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fscqa_query_errors_total",
			Help: "Total number of rejected or failed questions, by error code",
		},
		[]string{"error_code"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fscqa_query_duration_seconds",
			Help:    "Round-trip time of answered questions in seconds",
			Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"status"},
	)

	CitationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fscqa_citations_per_answer",
			Help:    "Number of source citations per answer",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)

	CorpusSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fscqa_corpus_selections_total",
			Help: "Number of relayed questions that searched each corpus",
		},
		[]string{"corpus"},
	)

	QueriesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fscqa_queries_active",
			Help: "Number of questions waiting on the provider",
		},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fscqa_exports_total",
			Help: "Total number of answer downloads, by format",
		},
		[]string{"format"},
	)
)
