package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriterionClamp(t *testing.T) {
	tests := []struct {
		name      string
		criterion Criterion
		raw       float64
		want      float64
	}{
		{
			name:      "value inside range maps affinely",
			criterion: Criterion{MinValue: 0, MaxValue: 10},
			raw:       2.5,
			want:      0.25,
		},
		{
			name:      "value below range clamps to zero",
			criterion: Criterion{MinValue: 0, MaxValue: 1},
			raw:       -0.5,
			want:      0,
		},
		{
			name:      "value above range clamps to one",
			criterion: Criterion{MinValue: 0, MaxValue: 1},
			raw:       1.7,
			want:      1,
		},
		{
			name:      "shifted range",
			criterion: Criterion{MinValue: 1, MaxValue: 5},
			raw:       3,
			want:      0.5,
		},
		{
			name:      "degenerate range passes raw value through",
			criterion: Criterion{MinValue: 1, MaxValue: 1},
			raw:       42.5,
			want:      42.5,
		},
		{
			name:      "inverted range passes raw value through",
			criterion: Criterion{MinValue: 1, MaxValue: 0},
			raw:       -3,
			want:      -3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.criterion.Clamp(tt.raw), 1e-9)
		})
	}
}

func TestNewJudgingCriteria(t *testing.T) {
	tests := []struct {
		name     string
		criteria []Criterion
		wantErr  error
	}{
		{
			name: "valid collection",
			criteria: []Criterion{
				{Key: "a", Source: "text.originality_score", Weight: 1},
				{Key: "b", Source: "code.quality_index", Weight: 1},
			},
		},
		{
			name:     "empty collection rejected",
			criteria: nil,
			wantErr:  ErrEmptyCriteria,
		},
		{
			name: "missing key rejected",
			criteria: []Criterion{
				{Source: "text.originality_score", Weight: 1},
			},
			wantErr: ErrMissingCriterionField,
		},
		{
			name: "missing source rejected",
			criteria: []Criterion{
				{Key: "a", Weight: 1},
			},
			wantErr: ErrMissingCriterionField,
		},
		{
			name: "duplicate key rejected",
			criteria: []Criterion{
				{Key: "a", Source: "text.originality_score"},
				{Key: "a", Source: "code.quality_index"},
			},
			wantErr: ErrDuplicateCriterionKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jc, err := NewJudgingCriteria(tt.criteria)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.criteria), jc.Len())
		})
	}
}

func TestJudgingCriteriaReturnsCopy(t *testing.T) {
	jc, err := NewJudgingCriteria([]Criterion{
		{Key: "a", Source: "video.clarity_score", Weight: 1},
	})
	require.NoError(t, err)

	got := jc.Criteria()
	got[0].Weight = 99

	assert.InDelta(t, 1.0, jc.TotalWeight(), 1e-9,
		"mutating the returned slice must not affect the collection")
}

func TestNormalizedWeights(t *testing.T) {
	t.Run("weights normalize against the total", func(t *testing.T) {
		jc, err := NewJudgingCriteria([]Criterion{
			{Key: "a", Source: "video.clarity_score", Weight: 1},
			{Key: "b", Source: "text.originality_score", Weight: 3},
		})
		require.NoError(t, err)

		weights, err := jc.NormalizedWeights()
		require.NoError(t, err)
		require.Len(t, weights, 2)
		assert.InDelta(t, 0.25, weights[0], 1e-9)
		assert.InDelta(t, 0.75, weights[1], 1e-9)
	})

	t.Run("weights sum to one", func(t *testing.T) {
		jc, err := NewJudgingCriteria([]Criterion{
			{Key: "a", Source: "video.clarity_score", Weight: 0.3},
			{Key: "b", Source: "text.originality_score", Weight: 0.2},
			{Key: "c", Source: "code.quality_index", Weight: 0.7},
		})
		require.NoError(t, err)

		weights, err := jc.NormalizedWeights()
		require.NoError(t, err)

		var sum float64
		for _, w := range weights {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	})

	t.Run("zero total weight is a configuration error", func(t *testing.T) {
		jc, err := NewJudgingCriteria([]Criterion{
			{Key: "a", Source: "video.clarity_score", Weight: 0},
		})
		require.NoError(t, err, "construction must succeed; only normalization fails")

		_, err = jc.NormalizedWeights()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNonPositiveWeight)

		var cfgErr *ConfigError
		assert.True(t, errors.As(err, &cfgErr))
	})

	t.Run("negative total weight is a configuration error", func(t *testing.T) {
		jc, err := NewJudgingCriteria([]Criterion{
			{Key: "a", Source: "video.clarity_score", Weight: -2},
			{Key: "b", Source: "text.originality_score", Weight: 1},
		})
		require.NoError(t, err)

		_, err = jc.NormalizedWeights()
		assert.ErrorIs(t, err, ErrNonPositiveWeight)
	})
}

func TestDefaultCriteria(t *testing.T) {
	jc := DefaultCriteria()

	assert.Equal(t, 4, jc.Len())
	assert.InDelta(t, 1.0, jc.TotalWeight(), 1e-9)

	keys := make([]string, 0, jc.Len())
	for _, c := range jc.Criteria() {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{
		"originality", "technical_feasibility", "presentation_quality", "code_quality",
	}, keys)
}
