package analyzers

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

var _ ports.TextAnalyzer = (*TextAnalyzer)(nil)

const (
	// defaultTopK limits similarity matches and claim flags per submission.
	defaultTopK = 3

	// snippetLength caps the corpus excerpt attached to a similarity match.
	snippetLength = 120

	// levenshteinWindow caps the folded text compared character by
	// character. Edit distance is quadratic, so long documents are
	// compared on their leading window only.
	levenshteinWindow = 1000
)

// claimKeywords mark sentences worth a human second look.
var (
	absoluteKeywords  = []string{"guarantee", "perfect", "zero ", "100%", "always", "never fails"}
	marketingKeywords = []string{"state-of-the-art", "breakthrough", "revolutionary", "best-in-class"}

	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	numberPattern  = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	sentenceSplit  = regexp.MustCompile(`[.!?]\s+`)
	floatPattern   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// corpusDocument is a reference text loaded from the similarity corpus.
type corpusDocument struct {
	Name   string
	Text   string
	Folded string
	Tokens map[string]struct{}
}

// TextAnalyzerConfig controls corpus location, match limits, and the
// optional language model probe.
type TextAnalyzerConfig struct {
	// CorpusDir holds reference documents used for similarity detection.
	// An empty or missing directory disables similarity matching.
	CorpusDir string

	// TopK limits similarity matches and suspect claims per submission.
	// Zero selects the default.
	TopK int

	// LLM, when non-nil, is asked to rate how likely the description is
	// machine generated. A nil client or probe failure falls back to a
	// lexical heuristic.
	LLM ports.LLMClient

	Logger *slog.Logger
}

// TextAnalyzer scores a submission's written description for
// originality, feasibility, similarity to known material, and dubious
// claims.
type TextAnalyzer struct {
	corpus []corpusDocument
	topK   int
	llm    ports.LLMClient
	logger *slog.Logger
	tracer trace.Tracer
}

// NewTextAnalyzer loads the similarity corpus and returns a ready
// analyzer. Corpus load failures are logged and degrade to an empty
// corpus rather than failing the run.
func NewTextAnalyzer(cfg TextAnalyzerConfig) *TextAnalyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	a := &TextAnalyzer{
		topK:   topK,
		llm:    cfg.LLM,
		logger: logger,
		tracer: otel.Tracer("text-analyzer"),
	}
	if cfg.CorpusDir != "" {
		a.corpus = loadCorpus(cfg.CorpusDir, logger)
	}
	return a
}

// loadCorpus reads every .txt and .md file directly under dir.
func loadCorpus(dir string, logger *slog.Logger) []corpusDocument {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("similarity corpus unavailable", "dir", dir, "error", err)
		return nil
	}

	var docs []corpusDocument
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".txt" && ext != ".md" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Warn("skipping unreadable corpus file", "file", entry.Name(), "error", err)
			continue
		}
		text := strings.TrimSpace(string(raw))
		if text == "" {
			continue
		}
		docs = append(docs, corpusDocument{
			Name:   strings.TrimSuffix(entry.Name(), ext),
			Text:   text,
			Folded: foldCaser().String(text),
			Tokens: tokenSet(text),
		})
	}
	return docs
}

// Analyze produces the text modality result for a submission directory.
func (a *TextAnalyzer) Analyze(ctx context.Context, submissionDir string) (domain.TextAnalysisResult, error) {
	ctx, span := a.tracer.Start(ctx, "TextAnalyzer.Analyze",
		trace.WithAttributes(
			attribute.String("submission_dir", submissionDir),
			attribute.Int("corpus_size", len(a.corpus)),
		),
	)
	defer span.End()

	description := readFileOrEmpty(filepath.Join(submissionDir, "description.txt"))
	if strings.TrimSpace(description) == "" {
		description = readFileOrEmpty(filepath.Join(submissionDir, "README.md"))
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.TextAnalysisResult{Summary: "No description available."}, nil
	}

	matches := a.similarityMatches(description)
	maxSimilarity := 0.0
	if len(matches) > 0 {
		maxSimilarity = matches[0].Score
	}

	tokens := tokenize(description)
	uniqueRatio := uniqueTokenRatio(tokens)

	result := domain.TextAnalysisResult{
		OriginalityScore:      round3(clamp01(uniqueRatio - 0.4*maxSimilarity)),
		FeasibilityScore:      round3(math.Min(1, math.Log10(float64(len(tokens))+1))),
		Summary:               summarize(description),
		SimilarityMatches:     matches,
		SuspectClaims:         a.flagClaims(description),
		AIGeneratedLikelihood: a.aiLikelihood(ctx, description, tokens, uniqueRatio),
	}
	span.SetAttributes(attribute.Float64("originality_score", result.OriginalityScore))
	return result, nil
}

// similarityMatches compares the description against each corpus
// document and returns the top matches in descending score order. The
// score blends token overlap with character-level edit similarity, so
// both paraphrased and lightly edited copies register.
func (a *TextAnalyzer) similarityMatches(description string) []domain.SimilarityMatch {
	if len(a.corpus) == 0 {
		return nil
	}

	descTokens := tokenSet(description)
	descFolded := truncateRunes(foldCaser().String(description), levenshteinWindow)

	matches := make([]domain.SimilarityMatch, 0, len(a.corpus))
	for _, doc := range a.corpus {
		jaccard := jaccardSimilarity(descTokens, doc.Tokens)
		edit := editSimilarity(descFolded, truncateRunes(doc.Folded, levenshteinWindow))
		score := math.Max(jaccard, edit)
		if score <= 0 {
			continue
		}
		matches = append(matches, domain.SimilarityMatch{
			Source:  doc.Name,
			Score:   round3(score),
			Snippet: truncateRunes(doc.Text, snippetLength),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > a.topK {
		matches = matches[:a.topK]
	}
	return matches
}

// jaccardSimilarity computes token-set overlap between two documents.
func jaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// editSimilarity converts Levenshtein distance into a similarity in
// [0, 1], where 1 means identical text.
func editSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

// flagClaims scans sentences for absolute promises, marketing language,
// and unverified quantitative claims.
func (a *TextAnalyzer) flagClaims(description string) []domain.ClaimFlag {
	var flags []domain.ClaimFlag
	for _, sentence := range sentenceSplit.Split(description, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		lower := foldCaser().String(sentence)
		var reasons []string

		if highs := highPercentFigures(sentence); len(highs) > 0 {
			reasons = append(reasons, "High success figures: "+strings.Join(highs, ", "))
		}
		if containsAny(lower, absoluteKeywords) {
			reasons = append(reasons, "Potentially absolute claim")
		}
		if containsAny(lower, marketingKeywords) {
			reasons = append(reasons, "Marketing language detected")
		}
		if len(reasons) == 0 && numberPattern.MatchString(sentence) && strings.Contains(lower, "accuracy") {
			reasons = append(reasons, "Contains quantifiable claim requiring verification")
		}
		if len(reasons) == 0 {
			continue
		}

		flags = append(flags, domain.ClaimFlag{
			Statement: sentence,
			Reason:    strings.Join(reasons, "; "),
		})
		if len(flags) == a.topK {
			break
		}
	}
	return flags
}

// highPercentFigures returns percentage figures of 90% or more.
func highPercentFigures(sentence string) []string {
	var figures []string
	for _, m := range percentPattern.FindAllStringSubmatch(sentence, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if value >= 90 {
			figures = append(figures, strings.TrimSpace(m[0]))
		}
	}
	return figures
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// aiLikelihood asks the configured language model to rate how likely
// the description is machine generated. Without a client, or when the
// probe fails, a lexical heuristic stands in.
func (a *TextAnalyzer) aiLikelihood(ctx context.Context, description string, tokens []string, uniqueRatio float64) float64 {
	if a.llm != nil {
		if score, err := a.probeLLM(ctx, description); err == nil {
			return round3(clamp01(score))
		} else {
			a.logger.Warn("AI-likelihood probe failed, using lexical heuristic", "error", err)
		}
	}
	return round3(heuristicAILikelihood(tokens, uniqueRatio))
}

func (a *TextAnalyzer) probeLLM(ctx context.Context, description string) (float64, error) {
	prompt := fmt.Sprintf(
		"Rate from 0.0 to 1.0 how likely the following project description was written by a language model rather than a person. Respond with a single number only.\n\n%s",
		truncateRunes(description, 4000),
	)
	response, err := a.llm.Complete(ctx, prompt, map[string]any{
		"max_tokens":  16,
		"temperature": 0.0,
	})
	if err != nil {
		return 0, err
	}
	match := floatPattern.FindString(response)
	if match == "" {
		return 0, fmt.Errorf("no numeric rating in response %q", truncateRunes(response, 64))
	}
	return strconv.ParseFloat(match, 64)
}

// heuristicAILikelihood estimates machine authorship from vocabulary
// repetition and the absence of first-person voice.
func heuristicAILikelihood(tokens []string, uniqueRatio float64) float64 {
	pronouns := map[string]struct{}{"i": {}, "we": {}, "our": {}, "us": {}, "team": {}}
	pronounCount := 0
	for _, tok := range tokens {
		if _, ok := pronouns[strings.Trim(tok, ".,!?;:")]; ok {
			pronounCount++
		}
	}
	pronounRatio := 0.0
	if len(tokens) > 0 {
		pronounRatio = float64(pronounCount) / float64(len(tokens))
	}
	return clamp01(0.4*(1-uniqueRatio) + 0.3*(0.2-pronounRatio) + 0.3)
}

// uniqueTokenRatio measures vocabulary diversity.
func uniqueTokenRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		seen[tok] = struct{}{}
	}
	return float64(len(seen)) / float64(len(tokens))
}

// summarize returns the leading words of the description.
func summarize(description string) string {
	const summaryWords = 40
	words := strings.Fields(description)
	if len(words) <= summaryWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:summaryWords], " ") + "..."
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
