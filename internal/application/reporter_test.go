package application

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterhq/arbiter/internal/domain"
)

func sampleResult(name string, total float64) SubmissionResult {
	return SubmissionResult{
		Submission:    name,
		SubmissionDir: filepath.Join("data", "submissions", name),
		Video:         domain.VideoAnalysisResult{ClarityScore: 0.8, EstimatedDurationSeconds: 60},
		Text:          domain.TextAnalysisResult{OriginalityScore: 0.7, FeasibilityScore: 0.9},
		Code:          domain.CodeAnalysisResult{ReadabilityScore: 0.5},
		Score: domain.ScoreBreakdown{
			Criteria: []domain.CriterionScore{
				{
					Key: "originality", Label: "Originality",
					RawValue: 0.7, NormalizedValue: 0.7,
					NormalizedWeight: 1, WeightedScore: total,
					Description: "Lexical uniqueness of the description.",
				},
			},
			Total: total,
		},
	}
}

func TestWriteSubmissionReport(t *testing.T) {
	reporter, err := NewReporter(t.TempDir())
	require.NoError(t, err)

	path, err := reporter.WriteSubmissionReport(sampleResult("team-alpha", 0.7))
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(raw)

	assert.Contains(t, report, "Judging Report: team-alpha")
	assert.Contains(t, report, "Total score: 0.700")
	assert.Contains(t, report, "Originality [100.0% weight]")
	assert.Contains(t, report, "Lexical uniqueness")
	assert.Contains(t, report, "clarity 0.800")
}

func TestWriteLeaderboard(t *testing.T) {
	dir := t.TempDir()
	reporter, err := NewReporter(dir)
	require.NoError(t, err)

	results := []SubmissionResult{
		sampleResult("middling", 0.5),
		sampleResult("winner", 0.9),
		sampleResult("trailing", 0.2),
	}

	path, entries, err := reporter.WriteLeaderboard(results)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "leaderboard.csv"), path)

	require.Len(t, entries, 3)
	assert.Equal(t, domain.LeaderboardEntry{Rank: 1, Submission: "winner", Total: 0.9}, entries[0])
	assert.Equal(t, domain.LeaderboardEntry{Rank: 2, Submission: "middling", Total: 0.5}, entries[1])
	assert.Equal(t, domain.LeaderboardEntry{Rank: 3, Submission: "trailing", Total: 0.2}, entries[2])

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"rank", "submission", "total_score"}, records[0])
	assert.Equal(t, []string{"1", "winner", "0.900"}, records[1])
}

func TestWriteLeaderboardStableForTies(t *testing.T) {
	reporter, err := NewReporter(t.TempDir())
	require.NoError(t, err)

	results := []SubmissionResult{
		sampleResult("first-listed", 0.5),
		sampleResult("second-listed", 0.5),
	}

	_, entries, err := reporter.WriteLeaderboard(results)
	require.NoError(t, err)
	assert.Equal(t, "first-listed", entries[0].Submission, "ties keep input order")
	assert.Equal(t, "second-listed", entries[1].Submission)
}
