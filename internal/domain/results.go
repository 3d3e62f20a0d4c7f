package domain

// Metric path segments are resolved against small per-type accessor tables
// rather than reflection. Each modality result implements the same
// lookup contract: given the path segments after the modality root, return
// the numeric metric and whether it exists. Derived metrics (such as the
// code quality index) resolve through the same tables as stored ones.

// VideoAnalysisResult summarizes the video presentation analysis stage.
// It is a value type with a canonical JSON projection; unmarshaling the
// marshaled form reconstructs an identical value.
type VideoAnalysisResult struct {
	// Transcript is the spoken transcript of the presentation, either
	// transcribed or recovered from a fallback source.
	Transcript string `json:"transcript"`

	// ClarityScore rates how clearly the presentation reads, in [0, 1].
	ClarityScore float64 `json:"clarity_score"`

	// EstimatedDurationSeconds approximates the presentation length
	// from transcript word count.
	EstimatedDurationSeconds float64 `json:"estimated_duration_seconds"`
}

// Metric resolves a metric path (segments after the "video" root) to a
// numeric value. It reports false for unknown paths.
func (r VideoAnalysisResult) Metric(path []string) (float64, bool) {
	if len(path) != 1 {
		return 0, false
	}
	switch path[0] {
	case "clarity_score":
		return r.ClarityScore, true
	case "estimated_duration_seconds":
		return r.EstimatedDurationSeconds, true
	default:
		return 0, false
	}
}

// SimilarityMatch is a top-k similarity hit from the reference corpus,
// used to gauge how derivative a project description is.
type SimilarityMatch struct {
	// Source identifies the corpus document that matched.
	Source string `json:"source"`

	// Score is the similarity in [0, 1], higher meaning more similar.
	Score float64 `json:"score"`

	// Snippet is a short excerpt from the matching document.
	Snippet string `json:"snippet"`
}

// ClaimFlag marks a potentially exaggerated or unverifiable claim found
// in the project description. Auxiliary detail only; never scored.
type ClaimFlag struct {
	// Statement is the sentence that triggered the flag.
	Statement string `json:"statement"`

	// Reason explains which heuristic flagged the statement.
	Reason string `json:"reason"`

	// LLMVerdict holds the optional model judgement on the claim,
	// empty when no language model reviewed it.
	LLMVerdict string `json:"llm_verdict,omitempty"`
}

// TextAnalysisResult summarizes the written project description analysis.
type TextAnalysisResult struct {
	// OriginalityScore rates lexical uniqueness of the description, in [0, 1].
	OriginalityScore float64 `json:"originality_score"`

	// FeasibilityScore is a log-scaled feasibility estimate, in [0, 1].
	FeasibilityScore float64 `json:"feasibility_score"`

	// Summary is a short extract of the description used in reports.
	Summary string `json:"summary"`

	// SimilarityMatches lists the closest reference-corpus documents.
	SimilarityMatches []SimilarityMatch `json:"similarity_matches"`

	// SuspectClaims lists flagged statements from the description.
	SuspectClaims []ClaimFlag `json:"suspect_claims"`

	// AIGeneratedLikelihood estimates how likely the description is
	// machine-generated, in [0, 1].
	AIGeneratedLikelihood float64 `json:"ai_generated_likelihood"`
}

// Metric resolves a metric path (segments after the "text" root) to a
// numeric value. It reports false for unknown paths.
func (r TextAnalysisResult) Metric(path []string) (float64, bool) {
	if len(path) != 1 {
		return 0, false
	}
	switch path[0] {
	case "originality_score":
		return r.OriginalityScore, true
	case "feasibility_score":
		return r.FeasibilityScore, true
	case "ai_generated_likelihood":
		return r.AIGeneratedLikelihood, true
	default:
		return 0, false
	}
}

// CodeAnalysisResult summarizes static heuristics over the submission's
// code directory.
type CodeAnalysisResult struct {
	// ReadabilityScore estimates how approachable the codebase is, in [0, 1].
	ReadabilityScore float64 `json:"readability_score"`

	// DocumentationScore estimates documentation density, in [0, 1].
	DocumentationScore float64 `json:"documentation_score"`

	// TestCoverageScoreEstimate approximates test coverage, in [0, 1].
	TestCoverageScoreEstimate float64 `json:"test_coverage_score_estimate"`
}

// QualityIndex is the aggregate quality signal combining readability,
// documentation, and coverage.
func (r CodeAnalysisResult) QualityIndex() float64 {
	return (r.ReadabilityScore + r.DocumentationScore + r.TestCoverageScoreEstimate) / 3
}

// Metric resolves a metric path (segments after the "code" root) to a
// numeric value. The derived quality_index resolves alongside the stored
// metrics. It reports false for unknown paths.
func (r CodeAnalysisResult) Metric(path []string) (float64, bool) {
	if len(path) != 1 {
		return 0, false
	}
	switch path[0] {
	case "readability_score":
		return r.ReadabilityScore, true
	case "documentation_score":
		return r.DocumentationScore, true
	case "test_coverage_score_estimate":
		return r.TestCoverageScoreEstimate, true
	case "quality_index":
		return r.QualityIndex(), true
	default:
		return 0, false
	}
}

// MetricMap adapts a flat map of named metrics to the metric lookup
// contract, letting callers inject extra scoring roots alongside the
// modality results.
type MetricMap map[string]float64

// Metric resolves a single-segment path against the map.
func (m MetricMap) Metric(path []string) (float64, bool) {
	if len(path) != 1 {
		return 0, false
	}
	v, ok := m[path[0]]
	return v, ok
}
