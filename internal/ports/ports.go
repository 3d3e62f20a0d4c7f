// Package ports defines the interfaces that connect the domain and
// application layers to infrastructure adapters such as the stage cache,
// modality analyzers, LLM providers, and metrics backends. These
// interfaces enable dependency inversion and make the pipeline testable.
package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// MetricSource resolves a metric path to a numeric value. Every modality
// result implements this contract, so the scorer never needs runtime type
// inspection: path segments after the modality root are handed to the
// result's own accessor table.
type MetricSource interface {
	// Metric returns the value at the given path segments and whether
	// the path exists. Implementations must not substitute defaults for
	// unknown paths.
	Metric(path []string) (float64, bool)
}

// StageCache persists per-(submission, stage) analysis payloads keyed by a
// content fingerprint of the submission directory. For a given key, at most
// one payload is valid at any instant: the one whose stored fingerprint
// equals the live fingerprint.
type StageCache interface {
	// Load returns the cached payload for the submission/stage pair if an
	// entry exists, is well-formed, and its stored fingerprint equals the
	// supplied one. Any mismatch or corruption is a miss, never an error.
	Load(submission, stage, fingerprint string) (json.RawMessage, bool)

	// Store persists the payload with the supplied fingerprint,
	// overwriting any prior entry for the same submission/stage pair.
	Store(submission, stage, fingerprint string, payload any) error

	// Invalidate removes the named stages for a submission, or the
	// submission's entire cache when no stages are given.
	Invalidate(submission string, stages ...string) error
}

// VideoAnalyzer produces the video modality result for a submission.
type VideoAnalyzer interface {
	Analyze(ctx context.Context, submissionDir string) (domain.VideoAnalysisResult, error)
}

// TextAnalyzer produces the text modality result for a submission.
type TextAnalyzer interface {
	Analyze(ctx context.Context, submissionDir string) (domain.TextAnalysisResult, error)
}

// CodeAnalyzer produces the code modality result for a submission.
type CodeAnalyzer interface {
	Analyze(ctx context.Context, submissionDir string) (domain.CodeAnalysisResult, error)
}

// LLMClient defines the interface for interacting with Large Language
// Model providers. Implementations handle provider-specific details like
// authentication, request formatting, and response parsing.
type LLMClient interface {
	// Complete sends a completion request to the LLM provider and
	// returns the generated text. The options map allows provider-specific
	// settings (temperature, max tokens, model) without changing the
	// interface.
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens calculates the approximate token count for a given
	// text, used for cost estimation before making requests.
	EstimateTokens(text string) (int, error)

	// GetModel returns the model identifier being used by this client.
	GetModel() string
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations should integrate with observability platforms
// like Prometheus or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric. Useful for tracking
	// events like cache hits/misses and scored submissions.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, for distributions
	// like stage latencies and total scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
