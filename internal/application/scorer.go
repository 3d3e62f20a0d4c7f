// Package application orchestrates the judging pipeline: criteria
// configuration, weighted scoring, cached stage execution, and report
// generation.
package application

import (
	"math"
	"strings"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

// Scorer combines modality-specific analysis results into a final
// weighted score using a JudgingCriteria collection. Scoring is a pure
// function of its inputs and the configured criteria; the scorer never
// substitutes a default value for a missing metric.
type Scorer struct {
	criteria domain.JudgingCriteria
}

// NewScorer creates a Scorer for the given criteria collection.
func NewScorer(criteria domain.JudgingCriteria) *Scorer {
	return &Scorer{criteria: criteria}
}

// Criteria returns the criteria collection this scorer evaluates.
func (s *Scorer) Criteria() domain.JudgingCriteria { return s.criteria }

// Score resolves each criterion's metric source against the three
// modality results plus any caller-supplied extra roots, normalizes the
// raw values, applies normalized weights, and sums the contributions.
//
// Criteria are evaluated in their declared order, which also defines the
// order of the breakdown's criterion scores. Per-criterion fields and the
// final total are rounded to three decimal places for display; the total
// is accumulated at full precision and rounded only once at the end.
func (s *Scorer) Score(
	video domain.VideoAnalysisResult,
	text domain.TextAnalysisResult,
	code domain.CodeAnalysisResult,
	extra map[string]ports.MetricSource,
) (domain.ScoreBreakdown, error) {
	context := map[string]ports.MetricSource{
		"video": video,
		"text":  text,
		"code":  code,
	}
	for root, source := range extra {
		context[root] = source
	}

	weights, err := s.criteria.NormalizedWeights()
	if err != nil {
		return domain.ScoreBreakdown{}, err
	}

	criteria := s.criteria.Criteria()
	scores := make([]domain.CriterionScore, 0, len(criteria))
	var total float64

	for i, criterion := range criteria {
		raw, err := resolveMetric(criterion, context)
		if err != nil {
			return domain.ScoreBreakdown{}, err
		}

		normalized := criterion.Clamp(raw)
		weighted := normalized * weights[i]
		total += weighted

		scores = append(scores, domain.CriterionScore{
			Key:              criterion.Key,
			Label:            criterion.Label,
			RawValue:         round3(raw),
			NormalizedValue:  round3(normalized),
			Weight:           round3(criterion.Weight),
			NormalizedWeight: round3(weights[i]),
			WeightedScore:    round3(weighted),
			Description:      criterion.Description,
		})
	}

	return domain.ScoreBreakdown{Criteria: scores, Total: round3(total)}, nil
}

// resolveMetric splits the criterion source on "." and resolves it against
// the scoring context. The first segment must name a known root; the
// remaining segments are handed to that root's own metric accessor.
func resolveMetric(criterion domain.Criterion, context map[string]ports.MetricSource) (float64, error) {
	parts := strings.Split(criterion.Source, ".")
	if len(parts) < 2 || parts[0] == "" {
		return 0, domain.NewMetricResolutionError(
			criterion.Key, criterion.Source, "source must be of the form root.metric", nil)
	}

	source, ok := context[parts[0]]
	if !ok {
		return 0, domain.NewMetricResolutionError(
			criterion.Key, criterion.Source, "unknown metric root "+parts[0], domain.ErrUnknownMetricRoot)
	}

	value, ok := source.Metric(parts[1:])
	if !ok {
		return 0, domain.NewMetricResolutionError(
			criterion.Key, criterion.Source, "path did not resolve to a numeric metric", nil)
	}
	return value, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
