package analyzers

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
)

// foldCaser performs Unicode case folding for caseless comparison.
// cases.Fold is not safe for concurrent use, so each call site takes a
// fresh caser from this factory.
func foldCaser() cases.Caser { return cases.Fold() }

// tokenize splits text into case-folded word tokens.
func tokenize(text string) []string {
	return strings.Fields(foldCaser().String(text))
}

// tokenSet builds the set of distinct tokens in text.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// round3 rounds to three decimal places. Scores are rounded once, at
// the point they are reported.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// clamp01 bounds v to the unit interval.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
