package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	t.Run("with criterion", func(t *testing.T) {
		err := NewConfigError("originality", "weight", ErrNonPositiveWeight)

		assert.Contains(t, err.Error(), "criterion=originality")
		assert.Contains(t, err.Error(), "field=weight")
		assert.ErrorIs(t, err, ErrNonPositiveWeight)
	})

	t.Run("collection-level error omits the criterion", func(t *testing.T) {
		err := NewConfigError("", "weight", ErrNonPositiveWeight)
		assert.NotContains(t, err.Error(), "criterion=")
	})
}

func TestMetricResolutionError(t *testing.T) {
	err := NewMetricResolutionError("code_quality", "audio.volume", "unknown metric root audio", ErrUnknownMetricRoot)

	assert.Contains(t, err.Error(), "criterion=code_quality")
	assert.Contains(t, err.Error(), "source=audio.volume")
	assert.ErrorIs(t, err, ErrUnknownMetricRoot)

	var resErr *MetricResolutionError
	assert.True(t, errors.As(err, &resErr))
	assert.Equal(t, "audio.volume", resErr.Source)
}
