// Package evaluation computes calibration metrics that measure how well
// the judging pipeline's scores track human ground-truth judgments:
// ROC and precision/recall curves, AUROC, threshold metrics, and the
// false-positive rate at a target true-positive rate.
package evaluation

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Default evaluation parameters.
const (
	// DefaultThreshold is the score threshold used for precision/recall/F1
	// when none is supplied.
	DefaultThreshold = 0.5

	// DefaultTargetTPR is the true-positive rate targeted by the
	// FPR@TPR metric when none is supplied.
	DefaultTargetTPR = 0.95
)

// Input validation errors raised before any computation begins.
var (
	// ErrEmptyInput indicates that the label/score dataset is empty.
	ErrEmptyInput = errors.New("inputs must not be empty")

	// ErrLengthMismatch indicates that labels and scores differ in length.
	ErrLengthMismatch = errors.New("labels and scores must have the same length")

	// ErrNonBinaryLabel indicates that a label is neither 0 nor 1.
	ErrNonBinaryLabel = errors.New("labels must be binary (0 or 1)")
)

// CurvePoint is one point on a ROC or precision/recall curve.
// For ROC curves X is the false-positive rate and Y the true-positive
// rate; for PR curves X is recall and Y precision.
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BinaryEvalResult stores classification reliability metrics for judge
// score calibration. Metrics that are mathematically undefined for the
// input (for example AUROC when only one class is present) are nil.
// The result is purely functional output; it carries no persisted state.
type BinaryEvalResult struct {
	// AUROC is the area under the ROC curve, nil when the labels are
	// degenerate (single class).
	AUROC *float64 `json:"auroc"`

	// Precision, Recall, and F1 are computed at Threshold. Precision is
	// nil when nothing is predicted positive; Recall is nil when no
	// positive labels exist; F1 is nil when either is nil or their sum
	// is zero.
	Precision *float64 `json:"precision"`
	Recall    *float64 `json:"recall"`
	F1        *float64 `json:"f1"`

	// Threshold is the score cutoff the threshold metrics were computed at.
	Threshold float64 `json:"threshold"`

	// ROCCurve holds (FPR, TPR) points from (0,0) to (1,1); breakpoints
	// are emitted only where the score value changes, so tied scores
	// never produce intermediate points.
	ROCCurve []CurvePoint `json:"roc_curve"`

	// PRCurve holds (recall, precision) points prefixed with the
	// sentinel (0, 1) for the no-prediction state.
	PRCurve []CurvePoint `json:"pr_curve"`

	// FPRAtTargetTPR is the minimum false-positive rate among thresholds
	// whose true-positive rate reaches TargetTPR, nil in the degenerate
	// case.
	FPRAtTargetTPR *float64 `json:"fpr_at_target_tpr"`

	// TargetTPR is the true-positive rate the FPR metric targeted.
	TargetTPR float64 `json:"target_tpr"`
}

// EvaluateBinary evaluates prediction scores against binary labels.
// Higher scores are treated as more positive. It fails with a validation
// error before any computation when the inputs are empty, mismatched in
// length, or contain a non-binary label.
func EvaluateBinary(labels []int, scores []float64, threshold, targetTPR float64) (BinaryEvalResult, error) {
	if len(labels) == 0 {
		return BinaryEvalResult{}, ErrEmptyInput
	}
	if len(labels) != len(scores) {
		return BinaryEvalResult{}, fmt.Errorf("%w: %d labels, %d scores", ErrLengthMismatch, len(labels), len(scores))
	}
	for i, label := range labels {
		if label != 0 && label != 1 {
			return BinaryEvalResult{}, fmt.Errorf("%w: got %d at index %d", ErrNonBinaryLabel, label, i)
		}
	}

	positives := 0
	for _, label := range labels {
		positives += label
	}
	negatives := len(labels) - positives
	degenerate := positives == 0 || negatives == 0

	result := BinaryEvalResult{
		Threshold: threshold,
		TargetTPR: targetTPR,
		ROCCurve:  rocCurve(labels, scores),
		PRCurve:   precisionRecallCurve(labels, scores),
	}
	result.Precision, result.Recall, result.F1 = summaryAtThreshold(labels, scores, threshold)

	if !degenerate {
		auroc := areaUnderCurve(result.ROCCurve)
		result.AUROC = &auroc
		result.FPRAtTargetTPR = fprAtTargetTPR(labels, scores, targetTPR)
	}

	return result, nil
}

// pair couples one score with its label for descending-score sweeps.
type pair struct {
	score float64
	label int
}

func sortedPairs(labels []int, scores []float64) []pair {
	pairs := make([]pair, len(labels))
	for i := range labels {
		pairs[i] = pair{score: scores[i], label: labels[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })
	return pairs
}

// rocCurve sweeps thresholds at every distinct score value, accumulating
// true and false positives seen so far. The curve starts at (0,0) and is
// forced to end at (1,1).
func rocCurve(labels []int, scores []float64) []CurvePoint {
	positives := 0
	for _, label := range labels {
		positives += label
	}
	negatives := len(labels) - positives
	if positives == 0 || negatives == 0 {
		return []CurvePoint{{X: 0, Y: 0}, {X: 1, Y: 1}}
	}

	pairs := sortedPairs(labels, scores)
	tp, fp := 0, 0
	points := []CurvePoint{{X: 0, Y: 0}}
	first := true
	var lastScore float64
	for _, p := range pairs {
		if !first && p.score != lastScore {
			points = append(points, CurvePoint{
				X: float64(fp) / float64(negatives),
				Y: float64(tp) / float64(positives),
			})
		}
		if p.label == 1 {
			tp++
		} else {
			fp++
		}
		lastScore = p.score
		first = false
	}
	points = append(points, CurvePoint{
		X: float64(fp) / float64(negatives),
		Y: float64(tp) / float64(positives),
	})
	last := points[len(points)-1]
	if last.X != 1 || last.Y != 1 {
		points = append(points, CurvePoint{X: 1, Y: 1})
	}
	return points
}

// precisionRecallCurve emits (recall, precision) at every point of the
// descending-score sweep, prefixed with the sentinel (0, 1) for the
// no-prediction state.
func precisionRecallCurve(labels []int, scores []float64) []CurvePoint {
	positives := 0
	for _, label := range labels {
		positives += label
	}
	if positives == 0 {
		return []CurvePoint{{X: 1, Y: 0}}
	}

	pairs := sortedPairs(labels, scores)
	tp, fp := 0, 0
	points := make([]CurvePoint, 0, len(pairs)+1)
	points = append(points, CurvePoint{X: 0, Y: 1})
	for _, p := range pairs {
		if p.label == 1 {
			tp++
		} else {
			fp++
		}
		points = append(points, CurvePoint{
			X: float64(tp) / float64(positives),
			Y: float64(tp) / float64(tp+fp),
		})
	}
	return points
}

// areaUnderCurve integrates the ordered curve points with the trapezoid
// rule. FPR is monotonically non-decreasing by construction; negative
// widths are clamped to zero as a guard. The area is rounded to six
// decimal places.
func areaUnderCurve(points []CurvePoint) float64 {
	if len(points) < 2 {
		return 0
	}
	var area float64
	for i := 1; i < len(points); i++ {
		width := points[i].X - points[i-1].X
		if width < 0 {
			width = 0
		}
		area += width * (points[i-1].Y + points[i].Y) / 2
	}
	return round6(area)
}

// summaryAtThreshold classifies each instance as positive iff its score
// is at least the threshold and derives precision, recall, and F1 from
// the confusion counts. Each metric is nil where undefined. All three
// metrics are computed at full precision and rounded only on output, so
// F1 never inherits rounding error from precision or recall.
func summaryAtThreshold(labels []int, scores []float64, threshold float64) (precision, recall, f1 *float64) {
	tp, fp, fn := 0, 0, 0
	for i, label := range labels {
		predicted := scores[i] >= threshold
		switch {
		case predicted && label == 1:
			tp++
		case predicted && label == 0:
			fp++
		case !predicted && label == 1:
			fn++
		}
	}

	var rawPrecision, rawRecall float64
	if tp+fp > 0 {
		rawPrecision = float64(tp) / float64(tp+fp)
		v := round6(rawPrecision)
		precision = &v
	}
	if tp+fn > 0 {
		rawRecall = float64(tp) / float64(tp+fn)
		v := round6(rawRecall)
		recall = &v
	}
	if precision != nil && recall != nil && rawPrecision+rawRecall > 0 {
		v := round6(2 * rawPrecision * rawRecall / (rawPrecision + rawRecall))
		f1 = &v
	}
	return precision, recall, f1
}

// fprAtTargetTPR sweeps the descending-score order and tracks the minimum
// false-positive rate among all threshold choices whose true-positive
// rate reaches the target. Returns nil when the labels are degenerate.
func fprAtTargetTPR(labels []int, scores []float64, targetTPR float64) *float64 {
	positives := 0
	for _, label := range labels {
		positives += label
	}
	negatives := len(labels) - positives
	if positives == 0 || negatives == 0 {
		return nil
	}

	pairs := sortedPairs(labels, scores)
	tp, fp := 0, 0
	var best *float64
	for _, p := range pairs {
		if p.label == 1 {
			tp++
		} else {
			fp++
		}
		tpr := float64(tp) / float64(positives)
		fpr := float64(fp) / float64(negatives)
		if tpr >= targetTPR && (best == nil || fpr < *best) {
			v := fpr
			best = &v
		}
	}
	if best == nil {
		return nil
	}
	v := round6(*best)
	return &v
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
