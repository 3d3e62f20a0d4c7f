// Package middleware provides cross-cutting concerns for the judging
// pipeline.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arbiterhq/arbiter/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks stage cache effectiveness, analysis stage
// latency, and the distribution of submission scores.
type PrometheusMetrics struct {
	cacheRequests    *prometheus.CounterVec
	stageLatency     *prometheus.HistogramVec
	scoreHistogram   *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// all metrics in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		cacheRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stage_cache_requests_total",
				Help: "Stage cache requests by stage and outcome (hit, miss, stale, corrupt, store).",
			},
			[]string{"stage", "outcome"},
		),
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analysis_stage_duration_seconds",
				Help:    "Execution time of modality analysis stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "stage"},
		),
		scoreHistogram: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "submission_score_total",
				Help:    "Distribution of total submission scores.",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{"metric"},
		),
		operationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_operations_total",
				Help: "Total number of pipeline operations by name and status.",
			},
			[]string{"operation", "status"},
		),
		systemGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pipeline_system_state",
				Help: "Current pipeline state values.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency records stage execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	stage, ok := labels["stage"]
	if !ok {
		stage = "unknown"
	}
	pm.stageLatency.WithLabelValues(operation, stage).Observe(duration.Seconds())
}

// RecordCounter increments Prometheus counters. Cache outcome counts are
// routed to the cache counter; everything else lands in the general
// operation counter.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	if metric == "stage_cache_requests_total" {
		pm.cacheRequests.WithLabelValues(labels["stage"], labels["outcome"]).Add(value)
		return
	}
	status, ok := labels["status"]
	if !ok {
		status = "success"
	}
	pm.operationCounter.WithLabelValues(metric, status).Add(value)
}

// RecordGauge sets a Prometheus gauge value.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram records a value in the score histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	pm.scoreHistogram.WithLabelValues(metric).Observe(value)
}
