package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "predictions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDataset(t *testing.T) {
	path := writeDataset(t, "submission,score_total,human_label\nalpha,0.91,1\nbeta,0.42,0\ngamma,0.77,1\n")

	ds, err := LoadDataset(path, DefaultScoreColumn, DefaultLabelColumn)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.91, 0.42, 0.77}, ds.Scores)
	assert.Equal(t, []int{1, 0, 1}, ds.Labels)
}

func TestLoadDatasetCustomColumns(t *testing.T) {
	path := writeDataset(t, "prediction,verdict\n0.5,1\n0.3,0\n")

	ds, err := LoadDataset(path, "prediction", "verdict")
	require.NoError(t, err)
	assert.Len(t, ds.Scores, 2)
}

func TestLoadDatasetErrors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		scoreColumn string
		labelColumn string
		wantErr     error
		wantInError string
	}{
		{
			name:        "missing score column",
			content:     "submission,human_label\nalpha,1\n",
			scoreColumn: DefaultScoreColumn,
			labelColumn: DefaultLabelColumn,
			wantErr:     ErrMissingColumn,
			wantInError: "score_total",
		},
		{
			name:        "missing label column",
			content:     "score_total\n0.5\n",
			scoreColumn: DefaultScoreColumn,
			labelColumn: DefaultLabelColumn,
			wantErr:     ErrMissingColumn,
			wantInError: "human_label",
		},
		{
			name:        "header only",
			content:     "score_total,human_label\n",
			scoreColumn: DefaultScoreColumn,
			labelColumn: DefaultLabelColumn,
			wantErr:     ErrEmptyInput,
		},
		{
			name:        "non-numeric score names the row",
			content:     "score_total,human_label\n0.5,1\nhigh,0\n",
			scoreColumn: DefaultScoreColumn,
			labelColumn: DefaultLabelColumn,
			wantInError: "row 3",
		},
		{
			name:        "non-integer label names the row",
			content:     "score_total,human_label\n0.5,yes\n",
			scoreColumn: DefaultScoreColumn,
			labelColumn: DefaultLabelColumn,
			wantInError: "row 2",
		},
		{
			name:        "non-binary label rejected",
			content:     "score_total,human_label\n0.5,2\n",
			scoreColumn: DefaultScoreColumn,
			labelColumn: DefaultLabelColumn,
			wantErr:     ErrNonBinaryLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDataset(t, tt.content)
			_, err := LoadDataset(path, tt.scoreColumn, tt.labelColumn)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantInError != "" {
				assert.Contains(t, err.Error(), tt.wantInError)
			}
		})
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "absent.csv"), DefaultScoreColumn, DefaultLabelColumn)
	assert.Error(t, err)
}
