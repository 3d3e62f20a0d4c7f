package analyzers

import (
	"bufio"
	"context"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

var _ ports.CodeAnalyzer = (*CodeAnalyzer)(nil)

// sourceSuffixes identifies files counted as source code.
var sourceSuffixes = map[string]struct{}{
	".py": {}, ".go": {}, ".js": {}, ".ts": {}, ".java": {},
	".rb": {}, ".rs": {}, ".c": {}, ".cpp": {}, ".h": {},
}

// CodeAnalyzer derives coarse quality signals from the submission's
// code directory: file count stands in for project size, documentation
// lines for maintainability. Submissions without a code directory score
// zero across the board.
type CodeAnalyzer struct {
	tracer trace.Tracer
}

// NewCodeAnalyzer creates a CodeAnalyzer.
func NewCodeAnalyzer() *CodeAnalyzer {
	return &CodeAnalyzer{tracer: otel.Tracer("code-analyzer")}
}

// Analyze produces the code modality result for a submission directory.
func (a *CodeAnalyzer) Analyze(ctx context.Context, submissionDir string) (domain.CodeAnalysisResult, error) {
	_, span := a.tracer.Start(ctx, "CodeAnalyzer.Analyze",
		trace.WithAttributes(attribute.String("submission_dir", submissionDir)),
	)
	defer span.End()

	codeDir := filepath.Join(submissionDir, "code")
	if info, err := os.Stat(codeDir); err != nil || !info.IsDir() {
		return domain.CodeAnalysisResult{}, nil
	}

	fileCount := 0
	docLines := 0
	err := filepath.WalkDir(codeDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped rather than failing the stage.
			return nil
		}
		if d.IsDir() {
			if _, ignored := ignoredCodeDirs[d.Name()]; ignored {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := sourceSuffixes[filepath.Ext(path)]; !ok {
			return nil
		}
		fileCount++
		docLines += countDocLines(path)
		return nil
	})
	if err != nil {
		return domain.CodeAnalysisResult{}, err
	}

	span.SetAttributes(
		attribute.Int("source_files", fileCount),
		attribute.Int("doc_lines", docLines),
	)

	return domain.CodeAnalysisResult{
		ReadabilityScore:          round3(0.3 + math.Min(0.7, float64(fileCount)/20)),
		DocumentationScore:        round3(math.Min(1, float64(docLines)/math.Max(1, float64(fileCount)*2))),
		TestCoverageScoreEstimate: round3(math.Min(1, float64(fileCount+docLines)/50)),
	}, nil
}

var ignoredCodeDirs = map[string]struct{}{
	"__pycache__":  {},
	".git":         {},
	"node_modules": {},
	"vendor":       {},
}

// countDocLines counts comment and docstring lines in a source file.
func countDocLines(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	count := 0
	inDocstring := false
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if inDocstring {
			count++
			if strings.Contains(line, `"""`) || strings.Contains(line, "'''") {
				inDocstring = false
			}
			continue
		}
		switch {
		case strings.HasPrefix(line, `"""`), strings.HasPrefix(line, "'''"):
			count++
			// A docstring closed on its opening line stays closed.
			rest := line[3:]
			if !strings.Contains(rest, line[:3]) {
				inDocstring = true
			}
		case strings.HasPrefix(line, "#"), strings.HasPrefix(line, "//"):
			count++
		}
	}
	return count
}
