// Package analyzers provides the heuristic modality analyzers that
// produce the per-submission video, text, and code analysis results
// consumed by the scorer. Each analyzer implements its ports interface,
// is stateless, and is safe for concurrent use across submissions.
package analyzers

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

var _ ports.VideoAnalyzer = (*VideoAnalyzer)(nil)

// VideoAnalyzer estimates presentation quality from the submission's
// transcript. When no transcript file exists, the project description
// serves as a fallback so every submission gets a clarity estimate.
type VideoAnalyzer struct {
	// fallbackLines is used when neither transcript nor description exist.
	fallbackLines []string
	tracer        trace.Tracer
}

// NewVideoAnalyzer creates a VideoAnalyzer. The optional fallback lines
// stand in for submissions that ship neither transcript nor description.
func NewVideoAnalyzer(fallbackLines ...string) *VideoAnalyzer {
	return &VideoAnalyzer{
		fallbackLines: fallbackLines,
		tracer:        otel.Tracer("video-analyzer"),
	}
}

// Analyze produces the video modality result for a submission directory.
func (a *VideoAnalyzer) Analyze(ctx context.Context, submissionDir string) (domain.VideoAnalysisResult, error) {
	_, span := a.tracer.Start(ctx, "VideoAnalyzer.Analyze",
		trace.WithAttributes(attribute.String("submission_dir", submissionDir)),
	)
	defer span.End()

	transcript := readFileOrEmpty(filepath.Join(submissionDir, "presentation_transcript.txt"))
	if strings.TrimSpace(transcript) == "" {
		transcript = readFileOrEmpty(filepath.Join(submissionDir, "description.txt"))
	}
	if strings.TrimSpace(transcript) == "" {
		transcript = strings.Join(a.fallbackLines, "\n")
		if transcript == "" {
			transcript = "No transcript available."
		}
	}
	transcript = strings.TrimSpace(transcript)

	words := len(strings.Fields(transcript))
	duration := float64(words) / 2.5
	if duration < 30 {
		duration = 30
	}

	return domain.VideoAnalysisResult{
		Transcript:               transcript,
		ClarityScore:             estimateClarity(transcript),
		EstimatedDurationSeconds: duration,
	}, nil
}

// estimateClarity rates sentence density: transcripts with reasonably
// short sentences read as clearer. Bounded to [0.3, 1.0] for non-empty
// transcripts.
func estimateClarity(transcript string) float64 {
	if strings.TrimSpace(transcript) == "" {
		return 0
	}
	sentences := strings.Count(transcript, ".") +
		strings.Count(transcript, "!") +
		strings.Count(transcript, "?")
	words := len(strings.Fields(transcript))
	denominator := float64(words) / 15
	if denominator < 1 {
		denominator = 1
	}
	clarity := float64(sentences) / denominator
	if clarity < 0.3 {
		clarity = 0.3
	}
	if clarity > 1 {
		clarity = 1
	}
	return round3(clarity)
}

// readFileOrEmpty reads a text file, returning "" when it does not exist.
func readFileOrEmpty(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(raw)
}
