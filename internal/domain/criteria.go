// Package domain contains pure, dependency-free domain models for the
// submission judging engine: judging criteria, modality analysis results,
// and score breakdowns.
package domain

// Criterion is a single judging rule that reads one raw metric from a
// modality result and maps it onto a weighted, normalized contribution.
// Criterion values are immutable once constructed.
type Criterion struct {
	// Key uniquely identifies this criterion within a JudgingCriteria set.
	Key string `json:"key"`

	// Label is the human-readable display name used in reports.
	Label string `json:"label"`

	// Weight is the non-negative relative weight of this criterion.
	// Weights are normalized against the collection total at scoring time.
	Weight float64 `json:"weight"`

	// Source is the dotted path identifying where the raw metric lives,
	// e.g. "video.clarity_score" or "code.quality_index". The first
	// segment selects a modality result, the remaining segments descend
	// into its metrics.
	Source string `json:"source"`

	// Description explains what the criterion measures; copied into
	// score breakdowns for reporting.
	Description string `json:"description"`

	// MinValue and MaxValue define the affine range mapped to [0, 1].
	MinValue float64 `json:"min_value"`
	MaxValue float64 `json:"max_value"`
}

// Clamp maps a raw metric value affinely from [MinValue, MaxValue] onto
// [0, 1], clamping values outside the range.
//
// When MaxValue <= MinValue the range is degenerate and Clamp returns the
// raw value unchanged. This identity fallback is a deliberate escape hatch
// for criteria whose sources are already normalized; loaders warn when they
// encounter such a range so the configuration gap stays visible.
func (c Criterion) Clamp(raw float64) float64 {
	if c.MaxValue <= c.MinValue {
		return raw
	}
	normalized := (raw - c.MinValue) / (c.MaxValue - c.MinValue)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// JudgingCriteria is an ordered collection of unique-keyed criteria.
// It is constructed once per pipeline run and immutable thereafter;
// the declared order defines the order of criterion scores in every
// ScoreBreakdown produced from it.
type JudgingCriteria struct {
	criteria []Criterion
}

// NewJudgingCriteria validates and assembles a criteria collection.
// It fails when the collection is empty, when a criterion is missing its
// key or source, or when two criteria share a key. A non-positive total
// weight is legal at construction time and only rejected when normalized
// weights are requested, matching the lifecycle of criteria that are
// loaded early and used later.
func NewJudgingCriteria(criteria []Criterion) (JudgingCriteria, error) {
	if len(criteria) == 0 {
		return JudgingCriteria{}, ErrEmptyCriteria
	}

	seen := make(map[string]struct{}, len(criteria))
	for _, c := range criteria {
		if c.Key == "" {
			return JudgingCriteria{}, NewConfigError(c.Key, "key", ErrMissingCriterionField)
		}
		if c.Source == "" {
			return JudgingCriteria{}, NewConfigError(c.Key, "source", ErrMissingCriterionField)
		}
		if _, dup := seen[c.Key]; dup {
			return JudgingCriteria{}, NewConfigError(c.Key, "key", ErrDuplicateCriterionKey)
		}
		seen[c.Key] = struct{}{}
	}

	owned := make([]Criterion, len(criteria))
	copy(owned, criteria)
	return JudgingCriteria{criteria: owned}, nil
}

// Criteria returns the criteria in their declared order.
// The returned slice is a copy; mutating it does not affect the collection.
func (jc JudgingCriteria) Criteria() []Criterion {
	out := make([]Criterion, len(jc.criteria))
	copy(out, jc.criteria)
	return out
}

// Len returns the number of criteria in the collection.
func (jc JudgingCriteria) Len() int { return len(jc.criteria) }

// TotalWeight returns the sum of all criterion weights.
func (jc JudgingCriteria) TotalWeight() float64 {
	var total float64
	for _, c := range jc.criteria {
		total += c.Weight
	}
	return total
}

// NormalizedWeights returns each criterion's share of the total weight,
// in declared order. The shares sum to 1 within floating-point tolerance.
// It fails with ErrNonPositiveWeight when the total weight is not positive;
// scoring against such a collection is a configuration error, never
// silently defaulted.
func (jc JudgingCriteria) NormalizedWeights() ([]float64, error) {
	total := jc.TotalWeight()
	if total <= 0 {
		return nil, NewConfigError("", "weight", ErrNonPositiveWeight)
	}
	weights := make([]float64, len(jc.criteria))
	for i, c := range jc.criteria {
		weights[i] = c.Weight / total
	}
	return weights, nil
}

// DefaultCriteria returns the built-in judging rubric used when no criteria
// configuration file is present.
func DefaultCriteria() JudgingCriteria {
	criteria, _ := NewJudgingCriteria([]Criterion{
		{
			Key:         "originality",
			Label:       "Originality",
			Weight:      0.30,
			Source:      "text.originality_score",
			Description: "Measured from lexical uniqueness in the project description.",
			MinValue:    0.0,
			MaxValue:    1.0,
		},
		{
			Key:         "technical_feasibility",
			Label:       "Technical Feasibility",
			Weight:      0.25,
			Source:      "text.feasibility_score",
			Description: "Log-scaled feasibility estimate derived from description word count.",
			MinValue:    0.0,
			MaxValue:    1.0,
		},
		{
			Key:         "presentation_quality",
			Label:       "Presentation Quality",
			Weight:      0.20,
			Source:      "video.clarity_score",
			Description: "Clarity heuristics computed from the presentation transcript.",
			MinValue:    0.0,
			MaxValue:    1.0,
		},
		{
			Key:         "code_quality",
			Label:       "Code Quality & Correctness",
			Weight:      0.25,
			Source:      "code.quality_index",
			Description: "Average of readability, documentation, and coverage heuristics.",
			MinValue:    0.0,
			MaxValue:    1.0,
		},
	})
	return criteria
}
