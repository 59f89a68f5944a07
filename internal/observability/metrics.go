package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	gradedSubmissionsTotal *prometheus.CounterVec
	gradingStageSeconds    *prometheus.HistogramVec
	anchorResolutionsTotal *prometheus.CounterVec
	gradingBatchesInFlight prometheus.Gauge
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the grading pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		gradedSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_submissions_total",
			Help: "Submissions processed by the grading pipeline, by terminal status.",
		}, []string{"status"})

		gradingStageSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grading_stage_duration_seconds",
			Help:    "Latency distribution per grading stage, model call included.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"})

		anchorResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_anchor_resolutions_total",
			Help: "Inline comment passages resolved against the source document.",
		}, []string{"outcome"})

		gradingBatchesInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grading_batches_in_flight",
			Help: "Grading batches currently executing.",
		})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "API requests served, by method, route and status.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "API request latency distribution.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "API requests that ended in a 4xx or 5xx status.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(
			gradedSubmissionsTotal, gradingStageSeconds, anchorResolutionsTotal, gradingBatchesInFlight,
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
		)
	})
}

// GradedSubmissions exposes the per-status submission counter.
func GradedSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return gradedSubmissionsTotal
}

// GradingStageDuration exposes the per-stage latency histogram.
func GradingStageDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradingStageSeconds
}

// AnchorResolutions exposes the passage resolution counter.
func AnchorResolutions() *prometheus.CounterVec {
	RegisterMetrics()
	return anchorResolutionsTotal
}

// BatchesInFlight exposes the running batch gauge.
func BatchesInFlight() prometheus.Gauge {
	RegisterMetrics()
	return gradingBatchesInFlight
}

// HTTPRequests exposes the per-route request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the per-route latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the per-route error counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}
