// Package metrics provides Prometheus metrics for the remedy API:
//   - http_request_total / http_request_duration_seconds / http_request_in_flight
//   - suggestion_requests_total: Counter by pipeline outcome
//   - suggestion_duration_seconds: Histogram of pipeline latency
//   - suggestion_candidates: Histogram of candidate pool sizes
//   - repertory_rubrics_loaded / repertory_remedies_loaded: snapshot gauges
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	SuggestionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestion_requests_total",
			Help: "Suggestion pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	SuggestionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "suggestion_duration_seconds",
			Help:    "Suggestion pipeline latency",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
	)

	SuggestionCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "suggestion_candidates",
			Help:    "Candidate pool size per suggestion run",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	RubricsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "repertory_rubrics_loaded",
			Help: "Rubrics in the active reference snapshot",
		},
	)

	RemediesLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "repertory_remedies_loaded",
			Help: "Remedies in the active reference snapshot",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(SuggestionRequests)
	prometheus.MustRegister(SuggestionDuration)
	prometheus.MustRegister(SuggestionCandidates)
	prometheus.MustRegister(RubricsLoaded)
	prometheus.MustRegister(RemediesLoaded)
}
