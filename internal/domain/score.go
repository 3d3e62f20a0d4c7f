package domain

// CriterionScore captures the full scoring detail for one criterion and
// one submission. All numeric fields are rounded to three decimal places
// as a display contract for downstream reporting.
type CriterionScore struct {
	// Key identifies the criterion that produced this score.
	Key string `json:"key"`

	// Label is the criterion's display name.
	Label string `json:"label"`

	// RawValue is the metric value resolved from the modality results.
	RawValue float64 `json:"raw_value"`

	// NormalizedValue is the raw value after affine mapping and clamping.
	NormalizedValue float64 `json:"normalized_value"`

	// Weight is the criterion's configured weight.
	Weight float64 `json:"weight"`

	// NormalizedWeight is the criterion's share of the total weight.
	NormalizedWeight float64 `json:"normalized_weight"`

	// WeightedScore is NormalizedValue multiplied by NormalizedWeight.
	WeightedScore float64 `json:"weighted_score"`

	// Description is copied from the criterion for reporting.
	Description string `json:"description"`
}

// ScoreBreakdown is the complete weighted scoring result for one
// submission: per-criterion detail in criteria order plus the total.
// The total is accumulated at full precision and rounded only for the
// final value; it lies in [0, 1] when every criterion is well-formed.
// A ScoreBreakdown is produced fresh per submission and never mutated.
type ScoreBreakdown struct {
	// Criteria holds one entry per criterion, in declared criteria order.
	Criteria []CriterionScore `json:"criteria"`

	// Total is the sum of all weighted contributions, rounded to three
	// decimal places.
	Total float64 `json:"total"`
}

// CriteriaByKey indexes the breakdown's criterion scores by key.
func (b ScoreBreakdown) CriteriaByKey() map[string]CriterionScore {
	out := make(map[string]CriterionScore, len(b.Criteria))
	for _, cs := range b.Criteria {
		out[cs.Key] = cs
	}
	return out
}

// LeaderboardEntry is one ranked row of the aggregated leaderboard.
type LeaderboardEntry struct {
	// Rank is the 1-based position after sorting by descending total.
	Rank int `json:"rank"`

	// Submission is the submission's directory name.
	Submission string `json:"submission"`

	// Total is the submission's rounded total score.
	Total float64 `json:"total"`
}
