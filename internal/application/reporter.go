package application

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// SubmissionResult bundles everything the pipeline produced for one
// submission: the three modality results, the score breakdown, and where
// the report landed.
type SubmissionResult struct {
	// Submission is the submission's directory name.
	Submission string `json:"submission"`

	// SubmissionDir is the absolute or configured path that was judged.
	SubmissionDir string `json:"submission_dir"`

	// Fingerprint is the content digest the stage cache was keyed by.
	Fingerprint string `json:"fingerprint"`

	// Video, Text, and Code hold the modality analysis results.
	Video domain.VideoAnalysisResult `json:"video_analysis"`
	Text  domain.TextAnalysisResult  `json:"text_analysis"`
	Code  domain.CodeAnalysisResult  `json:"code_analysis"`

	// Score is the weighted scoring breakdown.
	Score domain.ScoreBreakdown `json:"score"`

	// ReportPath is where the per-submission report was written.
	ReportPath string `json:"report_path,omitempty"`
}

// Reporter writes per-submission text reports and the aggregated
// leaderboard CSV.
type Reporter struct {
	outputDir string
}

// NewReporter creates a Reporter that writes into outputDir, creating it
// if absent.
func NewReporter(outputDir string) (*Reporter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating reports directory: %w", err)
	}
	return &Reporter{outputDir: outputDir}, nil
}

// WriteSubmissionReport renders a plain-text report for one submission
// and returns its path.
func (r *Reporter) WriteSubmissionReport(result SubmissionResult) (string, error) {
	path := filepath.Join(r.outputDir, result.Submission+"_report.txt")

	var b strings.Builder
	fmt.Fprintf(&b, "Judging Report: %s\n", result.Submission)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Submission directory: %s\n", result.SubmissionDir)
	fmt.Fprintf(&b, "Total score: %.3f\n\n", result.Score.Total)

	b.WriteString("Criteria Breakdown:\n")
	for _, cs := range result.Score.Criteria {
		fmt.Fprintf(&b, "- %s [%.1f%% weight]\n", cs.Label, cs.NormalizedWeight*100)
		fmt.Fprintf(&b, "  Raw: %.3f, Normalized: %.3f, Weighted contribution: %.3f\n",
			cs.RawValue, cs.NormalizedValue, cs.WeightedScore)
		if cs.Description != "" {
			fmt.Fprintf(&b, "  Notes: %s\n", cs.Description)
		}
	}

	b.WriteString("\nAnalysis Highlights:\n")
	fmt.Fprintf(&b, "  Video: clarity %.3f, estimated duration %.0fs\n",
		result.Video.ClarityScore, result.Video.EstimatedDurationSeconds)
	fmt.Fprintf(&b, "  Text: originality %.3f, feasibility %.3f, AI likelihood %.3f\n",
		result.Text.OriginalityScore, result.Text.FeasibilityScore, result.Text.AIGeneratedLikelihood)
	fmt.Fprintf(&b, "  Code: quality index %.3f\n", result.Code.QualityIndex())

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing report for %s: %w", result.Submission, err)
	}
	return path, nil
}

// WriteLeaderboard ranks the submissions by descending total score and
// writes leaderboard.csv. It returns the file path and the ranked entries.
func (r *Reporter) WriteLeaderboard(results []SubmissionResult) (string, []domain.LeaderboardEntry, error) {
	sorted := make([]SubmissionResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score.Total > sorted[j].Score.Total
	})

	entries := make([]domain.LeaderboardEntry, len(sorted))
	for i, res := range sorted {
		entries[i] = domain.LeaderboardEntry{
			Rank:       i + 1,
			Submission: res.Submission,
			Total:      res.Score.Total,
		}
	}

	path := filepath.Join(r.outputDir, "leaderboard.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("creating leaderboard: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"rank", "submission", "total_score"}); err != nil {
		return "", nil, fmt.Errorf("writing leaderboard header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.Rank),
			e.Submission,
			strconv.FormatFloat(e.Total, 'f', 3, 64),
		}
		if err := w.Write(record); err != nil {
			return "", nil, fmt.Errorf("writing leaderboard row for %s: %w", e.Submission, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, fmt.Errorf("flushing leaderboard: %w", err)
	}

	return path, entries, nil
}
