// Package metrics provides Prometheus metrics for the HTTP server and the
// medication parser:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - http_response_size_bytes: Histogram with method and path labels
//   - medication_texts_parsed_total: Counter with ingredient and dosage outcome labels
//   - prescription_batch_runs_total, prescription_batch_duration_seconds and
//     prescription_batch_rows: batch processing runs
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import (
	"time"

	"github.com/giygas/medications-normalizer/medparser/entities"
	"github.com/prometheus/client_golang/prometheus"
)

// Label values for medication_texts_parsed_total.
const (
	IngredientMatched  = "matched"
	IngredientFallback = "fallback"
	IngredientAbsent   = "absent"

	DosagePresent = "present"
	DosageAbsent  = "absent"
	DosageTopical = "topical"
)

// Label values for prescription_batch_runs_total.
const (
	BatchStatusSuccess = "success"
	BatchStatusError   = "error"
)

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

	HTTPResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"method", "path"},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Number of client rate limit buckets currently tracked",
		},
	)

	ParsedTextsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medication_texts_parsed_total",
			Help: "Medication texts parsed, by ingredient and dosage outcome",
		},
		[]string{"ingredient", "dosage"},
	)

	BatchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prescription_batch_runs_total",
			Help: "Prescription file processing runs",
		},
		[]string{"status"},
	)

	BatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prescription_batch_duration_seconds",
			Help:    "Duration of prescription file processing runs",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	BatchRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "prescription_batch_rows",
			Help: "Rows processed by the last successful batch run",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(HTTPResponseSize)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(ParsedTextsTotal)
	prometheus.MustRegister(BatchRunsTotal)
	prometheus.MustRegister(BatchDuration)
	prometheus.MustRegister(BatchRows)
}

// ParseLabels returns the ingredient and dosage label values for outcome.
func ParseLabels(outcome entities.ParseOutcome) (ingredient, dosage string) {
	switch {
	case outcome.Medication.ActiveIngredient == nil:
		ingredient = IngredientAbsent
	case outcome.IngredientMatched:
		ingredient = IngredientMatched
	default:
		ingredient = IngredientFallback
	}

	switch {
	case outcome.Topical:
		dosage = DosageTopical
	case outcome.Medication.HasDosage():
		dosage = DosagePresent
	default:
		dosage = DosageAbsent
	}

	return ingredient, dosage
}

// ObserveParse counts one parsed medication text.
func ObserveParse(outcome entities.ParseOutcome) {
	ParsedTextsTotal.WithLabelValues(ParseLabels(outcome)).Inc()
}

// RecordBatchRun records a finished batch run. rows is only kept for
// successful runs.
func RecordBatchRun(status string, duration time.Duration, rows int) {
	BatchRunsTotal.WithLabelValues(status).Inc()
	BatchDuration.Observe(duration.Seconds())
	if status == BatchStatusSuccess {
		BatchRows.Set(float64(rows))
	}
}
