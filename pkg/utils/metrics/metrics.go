package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "riskgraph"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusPartial = "partial"
)

var (
	analysisDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// Analysis Metrics
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Count of analytics operations by operation and outcome.",
	}, []string{"operation", "status"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Time taken by an analytics operation.",
		Buckets:   analysisDurationBuckets,
	}, []string{"operation"})

	// Graph Metrics
	GraphNodesVisited = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "graph_nodes_visited",
		Help:      "Number of assets recorded by a dependency traversal.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"direction"})

	// Scoring Metrics
	RiskScoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "risk_scores_total",
		Help:      "Count of risk scores produced by methodology and priority.",
	}, []string{"methodology", "priority"})

	CriticalityScoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "criticality_scores_total",
		Help:      "Count of asset criticality scores produced by priority.",
	}, []string{"priority"})
)

// Observe records the outcome and duration of an operation started at start
func Observe(operation string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	AnalysesTotal.WithLabelValues(operation, status).Inc()
	AnalysisDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
