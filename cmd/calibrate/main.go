// Command calibrate measures how well scores separate accepted from
// rejected submissions. It reads a CSV of scores and binary human
// labels and reports AUROC, threshold metrics, and the false-positive
// rate at a target recall.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/arbiterhq/arbiter/internal/evaluation"
)

func main() {
	var (
		datasetPath = flag.String("dataset", "", "Path to the labeled CSV dataset (required)")
		scoreColumn = flag.String("score-column", evaluation.DefaultScoreColumn, "CSV column holding prediction scores")
		labelColumn = flag.String("label-column", evaluation.DefaultLabelColumn, "CSV column holding binary labels")
		threshold   = flag.Float64("threshold", evaluation.DefaultThreshold, "Decision threshold for precision/recall/F1")
		targetTPR   = flag.Float64("target-tpr", evaluation.DefaultTargetTPR, "Target true-positive rate for the FPR sweep")
		outputPath  = flag.String("output", "", "Optional path for the full JSON result including curves")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *datasetPath == "" {
		fmt.Fprintln(os.Stderr, "calibrate: -dataset is required")
		flag.Usage()
		os.Exit(2)
	}

	dataset, err := evaluation.LoadDataset(*datasetPath, *scoreColumn, *labelColumn)
	if err != nil {
		logger.Error("loading dataset failed", "path", *datasetPath, "error", err)
		os.Exit(1)
	}

	result, err := evaluation.EvaluateBinary(dataset.Labels, dataset.Scores, *threshold, *targetTPR)
	if err != nil {
		logger.Error("evaluation failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Samples:       %d\n", len(dataset.Labels))
	fmt.Printf("AUROC:         %s\n", formatMetric(result.AUROC))
	fmt.Printf("Threshold:     %.3f\n", result.Threshold)
	fmt.Printf("Precision:     %s\n", formatMetric(result.Precision))
	fmt.Printf("Recall:        %s\n", formatMetric(result.Recall))
	fmt.Printf("F1:            %s\n", formatMetric(result.F1))
	fmt.Printf("FPR@TPR>=%.2f: %s\n", result.TargetTPR, formatMetric(result.FPRAtTargetTPR))

	if *outputPath != "" {
		raw, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Error("encoding result failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*outputPath, raw, 0o644); err != nil {
			logger.Error("writing result failed", "path", *outputPath, "error", err)
			os.Exit(1)
		}
		fmt.Printf("Full result written to %s\n", *outputPath)
	}
}

// formatMetric renders an optional metric, using n/a where the value is
// undefined for the dataset (single-class labels, empty denominators).
func formatMetric(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.6f", *v)
}
