package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur during criteria handling and scoring.
var (
	// ErrNonPositiveWeight indicates that the criteria weights do not sum
	// to a positive value, making weight normalization impossible.
	ErrNonPositiveWeight = errors.New("criteria weights must sum to a positive value")

	// ErrMissingCriterionField indicates that a criterion definition is
	// missing a required field such as key or source.
	ErrMissingCriterionField = errors.New("criterion missing required field")

	// ErrDuplicateCriterionKey indicates that two criteria share the same key.
	ErrDuplicateCriterionKey = errors.New("duplicate criterion key")

	// ErrUnknownMetricRoot indicates that a criterion source names a root
	// that is not present in the scoring context.
	ErrUnknownMetricRoot = errors.New("unknown metric root")

	// ErrEmptyCriteria indicates that a criteria collection contains no entries.
	ErrEmptyCriteria = errors.New("criteria collection is empty")
)

// ConfigError represents an error in the judging criteria configuration.
// It identifies the criterion (when known) and the field responsible so
// operators can fix the configuration file directly.
type ConfigError struct {
	// Criterion is the key of the offending criterion, empty when the
	// error applies to the collection as a whole.
	Criterion string

	// Field names the configuration field that failed validation.
	Field string

	// Err is the underlying error that caused validation to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	if e.Criterion == "" {
		return fmt.Sprintf("criteria config error: field=%s, err=%v", e.Field, e.Err)
	}
	return fmt.Sprintf("criteria config error: criterion=%s, field=%s, err=%v", e.Criterion, e.Field, e.Err)
}

// Unwrap returns the underlying error, supporting errors.Is/As.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError for the given criterion and field.
func NewConfigError(criterion, field string, err error) *ConfigError {
	return &ConfigError{Criterion: criterion, Field: field, Err: err}
}

// MetricResolutionError reports a failure to resolve a criterion's metric
// source against the modality results of a submission. The scorer never
// substitutes defaults; resolution failures always surface as this error.
type MetricResolutionError struct {
	// Criterion is the key of the criterion whose source failed to resolve.
	Criterion string

	// Source is the dotted metric path that was being resolved.
	Source string

	// Reason describes why resolution failed (unknown segment, null
	// intermediate value, non-numeric final value).
	Reason string

	// Err is the underlying sentinel error, when one applies.
	Err error
}

// Error implements the error interface for MetricResolutionError.
func (e *MetricResolutionError) Error() string {
	return fmt.Sprintf("metric resolution failed: criterion=%s, source=%s, reason=%s",
		e.Criterion, e.Source, e.Reason)
}

// Unwrap returns the underlying error, supporting errors.Is/As.
func (e *MetricResolutionError) Unwrap() error { return e.Err }

// NewMetricResolutionError creates a MetricResolutionError with the given details.
func NewMetricResolutionError(criterion, source, reason string, err error) *MetricResolutionError {
	return &MetricResolutionError{Criterion: criterion, Source: source, Reason: reason, Err: err}
}
