package evaluation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default column names for evaluation datasets.
const (
	// DefaultScoreColumn is the column holding pipeline score totals.
	DefaultScoreColumn = "score_total"

	// DefaultLabelColumn is the column holding binary human labels.
	DefaultLabelColumn = "human_label"
)

// ErrMissingColumn indicates that a required column is not present in the
// dataset header.
var ErrMissingColumn = errors.New("column not present in dataset")

// Dataset is a labelled score sample loaded from a CSV file, ready to be
// fed to EvaluateBinary.
type Dataset struct {
	// Scores holds the numeric prediction scores, row order preserved.
	Scores []float64

	// Labels holds the binary human labels, aligned with Scores.
	Labels []int
}

// LoadDataset reads a CSV file with a header row and extracts the named
// score and label columns. Errors name the offending column or row so
// malformed input is directly actionable.
func LoadDataset(path, scoreColumn, labelColumn string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return Dataset{}, fmt.Errorf("dataset %s: %w", path, ErrEmptyInput)
	}

	header := records[0]
	scoreIdx, labelIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case scoreColumn:
			scoreIdx = i
		case labelColumn:
			labelIdx = i
		}
	}
	if scoreIdx < 0 {
		return Dataset{}, fmt.Errorf("%w: %q (available: %v)", ErrMissingColumn, scoreColumn, header)
	}
	if labelIdx < 0 {
		return Dataset{}, fmt.Errorf("%w: %q (available: %v)", ErrMissingColumn, labelColumn, header)
	}

	rows := records[1:]
	if len(rows) == 0 {
		return Dataset{}, fmt.Errorf("dataset %s: %w", path, ErrEmptyInput)
	}

	ds := Dataset{
		Scores: make([]float64, 0, len(rows)),
		Labels: make([]int, 0, len(rows)),
	}
	for i, row := range rows {
		score, err := strconv.ParseFloat(strings.TrimSpace(row[scoreIdx]), 64)
		if err != nil {
			return Dataset{}, fmt.Errorf("row %d: column %q is not numeric: %w", i+2, scoreColumn, err)
		}
		label, err := strconv.Atoi(strings.TrimSpace(row[labelIdx]))
		if err != nil {
			return Dataset{}, fmt.Errorf("row %d: column %q is not an integer: %w", i+2, labelColumn, err)
		}
		if label != 0 && label != 1 {
			return Dataset{}, fmt.Errorf("row %d: %w: got %d", i+2, ErrNonBinaryLabel, label)
		}
		ds.Scores = append(ds.Scores, score)
		ds.Labels = append(ds.Labels, label)
	}

	return ds, nil
}
