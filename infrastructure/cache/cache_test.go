package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stagePayload struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes"`
}

func TestAnalysisCacheStoreLoad(t *testing.T) {
	cache, err := NewAnalysisCache(filepath.Join(t.TempDir(), "stage_cache"))
	require.NoError(t, err)

	payload := stagePayload{Score: 0.7, Notes: "clear presentation"}
	require.NoError(t, cache.Store("team-alpha", "video", "fp-1", payload))

	raw, ok := cache.Load("team-alpha", "video", "fp-1")
	require.True(t, ok)

	var decoded stagePayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestAnalysisCacheMisses(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stage_cache")
	cache, err := NewAnalysisCache(dir)
	require.NoError(t, err)

	t.Run("absent entry", func(t *testing.T) {
		_, ok := cache.Load("team-alpha", "video", "fp-1")
		assert.False(t, ok)
	})

	t.Run("fingerprint mismatch is a silent miss", func(t *testing.T) {
		require.NoError(t, cache.Store("team-alpha", "video", "fp-1", stagePayload{Score: 0.5}))

		_, ok := cache.Load("team-alpha", "video", "fp-2")
		assert.False(t, ok)

		// The stale entry stays in place until overwritten.
		_, ok = cache.Load("team-alpha", "video", "fp-1")
		assert.True(t, ok)
	})

	t.Run("corrupt entry is a miss, not an error", func(t *testing.T) {
		path := filepath.Join(dir, "team-beta", "text.json")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, ok := cache.Load("team-beta", "text", "fp-1")
		assert.False(t, ok)
	})
}

func TestAnalysisCacheOverwrite(t *testing.T) {
	cache, err := NewAnalysisCache(filepath.Join(t.TempDir(), "stage_cache"))
	require.NoError(t, err)

	require.NoError(t, cache.Store("team-alpha", "code", "fp-1", stagePayload{Score: 0.3}))
	require.NoError(t, cache.Store("team-alpha", "code", "fp-2", stagePayload{Score: 0.9}))

	_, ok := cache.Load("team-alpha", "code", "fp-1")
	assert.False(t, ok, "old fingerprint no longer matches")

	raw, ok := cache.Load("team-alpha", "code", "fp-2")
	require.True(t, ok)
	var decoded stagePayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.InDelta(t, 0.9, decoded.Score, 1e-9)
}

func TestAnalysisCacheInvalidate(t *testing.T) {
	cache, err := NewAnalysisCache(filepath.Join(t.TempDir(), "stage_cache"))
	require.NoError(t, err)

	for _, stage := range []string{"video", "text", "code"} {
		require.NoError(t, cache.Store("team-alpha", stage, "fp-1", stagePayload{Score: 0.5}))
	}
	require.NoError(t, cache.Store("team-beta", "video", "fp-1", stagePayload{Score: 0.4}))

	t.Run("single stage", func(t *testing.T) {
		require.NoError(t, cache.Invalidate("team-alpha", "text"))

		_, ok := cache.Load("team-alpha", "text", "fp-1")
		assert.False(t, ok)
		_, ok = cache.Load("team-alpha", "video", "fp-1")
		assert.True(t, ok, "other stages survive")
	})

	t.Run("whole submission", func(t *testing.T) {
		require.NoError(t, cache.Invalidate("team-alpha"))

		_, ok := cache.Load("team-alpha", "video", "fp-1")
		assert.False(t, ok)
		_, ok = cache.Load("team-beta", "video", "fp-1")
		assert.True(t, ok, "other submissions survive")
	})

	t.Run("invalidating absent entries is not an error", func(t *testing.T) {
		assert.NoError(t, cache.Invalidate("never-stored"))
		assert.NoError(t, cache.Invalidate("never-stored", "video"))
	})
}

func TestAnalysisCacheLayout(t *testing.T) {
	base := filepath.Join(t.TempDir(), "stage_cache")
	cache, err := NewAnalysisCache(base)
	require.NoError(t, err)
	assert.Equal(t, base, cache.BaseDir())

	require.NoError(t, cache.Store("team-alpha", "video", "fp-1", stagePayload{Score: 0.5}))

	raw, err := os.ReadFile(filepath.Join(base, "team-alpha", "video.json"))
	require.NoError(t, err)

	var stored struct {
		Fingerprint string          `json:"fingerprint"`
		Payload     json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "fp-1", stored.Fingerprint)
	assert.NotEmpty(t, stored.Payload)
}

// recordingCollector captures counter calls for assertions.
type recordingCollector struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, labels["outcome"])
}

func (r *recordingCollector) RecordLatency(string, time.Duration, map[string]string) {}
func (r *recordingCollector) RecordGauge(string, float64, map[string]string)         {}
func (r *recordingCollector) RecordHistogram(string, float64, map[string]string)     {}

func TestAnalysisCacheMetrics(t *testing.T) {
	collector := &recordingCollector{}
	cache, err := NewAnalysisCache(filepath.Join(t.TempDir(), "stage_cache"), WithMetrics(collector))
	require.NoError(t, err)

	cache.Load("team-alpha", "video", "fp-1")
	require.NoError(t, cache.Store("team-alpha", "video", "fp-1", stagePayload{}))
	cache.Load("team-alpha", "video", "fp-1")
	cache.Load("team-alpha", "video", "fp-2")

	assert.Equal(t, []string{"miss", "store", "hit", "stale"}, collector.outcomes)
}
