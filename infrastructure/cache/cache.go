package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arbiterhq/arbiter/internal/ports"
)

// Compile-time check that AnalysisCache satisfies the StageCache port.
var _ ports.StageCache = (*AnalysisCache)(nil)

// entry is the persisted unit for one (submission, stage) pair: the
// payload and the fingerprint it was computed against.
type entry struct {
	Fingerprint string          `json:"fingerprint"`
	Payload     json.RawMessage `json:"payload"`
}

// AnalysisCache is a filesystem-backed JSON cache for analyzer outputs,
// keyed by submission and stage and validated against a directory
// fingerprint. It stores one file per (submission, stage) at
// <base>/<submission>/<stage>.json.
//
// The cache is an explicitly constructed handle: the base directory is
// created at construction time, not lazily on first use. Cross-submission
// keys never collide, so concurrent pipelines for different submissions
// do not race; within one submission the discipline is last store wins.
type AnalysisCache struct {
	baseDir string

	// metrics is optional; a nil collector disables instrumentation.
	metrics ports.MetricsCollector
}

// Option configures an AnalysisCache.
type Option func(*AnalysisCache)

// WithMetrics attaches a metrics collector that records cache hits,
// misses, and stores.
func WithMetrics(collector ports.MetricsCollector) Option {
	return func(c *AnalysisCache) { c.metrics = collector }
}

// NewAnalysisCache creates the cache's base directory if absent and
// returns a ready-to-use handle.
func NewAnalysisCache(baseDir string, opts ...Option) (*AnalysisCache, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache base directory: %w", err)
	}
	c := &AnalysisCache{baseDir: baseDir}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseDir returns the cache's base directory.
func (c *AnalysisCache) BaseDir() string { return c.baseDir }

func (c *AnalysisCache) stagePath(submission, stage string) string {
	return filepath.Join(c.baseDir, submission, stage+".json")
}

func (c *AnalysisCache) recordOutcome(stage, outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordCounter("stage_cache_requests_total", 1, map[string]string{
		"stage":   stage,
		"outcome": outcome,
	})
}

// Load returns the cached payload for the submission/stage pair.
// A missing file, malformed JSON, or a stored fingerprint that differs
// from the supplied one are all treated uniformly as a miss; cache
// problems degrade to recomputation, never to an error.
func (c *AnalysisCache) Load(submission, stage, fingerprint string) (json.RawMessage, bool) {
	raw, err := os.ReadFile(c.stagePath(submission, stage))
	if err != nil {
		c.recordOutcome(stage, "miss")
		return nil, false
	}

	var stored entry
	if err := json.Unmarshal(raw, &stored); err != nil {
		c.recordOutcome(stage, "corrupt")
		return nil, false
	}
	if stored.Fingerprint != fingerprint {
		c.recordOutcome(stage, "stale")
		return nil, false
	}

	c.recordOutcome(stage, "hit")
	return stored.Payload, true
}

// Store persists the payload with the supplied fingerprint, overwriting
// any prior entry for the same key. The payload must be JSON-serializable.
func (c *AnalysisCache) Store(submission, stage, fingerprint string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload for %s/%s: %w", submission, stage, err)
	}
	raw, err := json.MarshalIndent(entry{Fingerprint: fingerprint, Payload: encoded}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entry for %s/%s: %w", submission, stage, err)
	}

	dir := filepath.Join(c.baseDir, submission)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory for %s: %w", submission, err)
	}
	if err := os.WriteFile(c.stagePath(submission, stage), raw, 0o644); err != nil {
		return fmt.Errorf("writing cache entry for %s/%s: %w", submission, stage, err)
	}

	c.recordOutcome(stage, "store")
	return nil
}

// Invalidate removes the named stages for a submission, or the
// submission's whole cache directory when no stages are given. Removal of
// the directory handle itself is best effort: a concurrent removal racing
// this one is tolerated.
func (c *AnalysisCache) Invalidate(submission string, stages ...string) error {
	if len(stages) == 0 {
		if err := os.RemoveAll(filepath.Join(c.baseDir, submission)); err != nil {
			return fmt.Errorf("removing cache for %s: %w", submission, err)
		}
		return nil
	}
	for _, stage := range stages {
		if err := os.Remove(c.stagePath(submission, stage)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing cache entry %s/%s: %w", submission, stage, err)
		}
	}
	return nil
}
