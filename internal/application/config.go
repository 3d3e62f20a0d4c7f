package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/arbiterhq/arbiter/internal/domain"
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// Config is the runtime configuration for the judging pipeline, loaded
// from a YAML file or constructed with defaults.
type Config struct {
	// DataDir is the root of submission data; submissions live under
	// <data_dir>/submissions/<name>.
	DataDir string `yaml:"data_dir" validate:"required"`

	// ReportsDir receives per-submission reports and the leaderboard.
	ReportsDir string `yaml:"reports_dir" validate:"required"`

	// CacheDir is the stage cache's base directory.
	CacheDir string `yaml:"cache_dir" validate:"required"`

	// CriteriaPath points at the JSON judging criteria file. When the
	// file does not exist the built-in default rubric is used.
	CriteriaPath string `yaml:"criteria_path"`

	// SimilarityCorpusDir holds reference documents the text analyzer
	// matches project descriptions against. Optional.
	SimilarityCorpusDir string `yaml:"similarity_corpus_dir"`

	// IncludeSuffixes restricts fingerprinting to files with these
	// suffixes. Empty means all files contribute.
	IncludeSuffixes []string `yaml:"include_suffixes"`

	// MaxConcurrent bounds how many submissions are processed in
	// parallel.
	MaxConcurrent int `yaml:"max_concurrent" validate:"min=1,max=64"`

	// LLM configures the optional language-model probe used by the text
	// analyzer. A disabled block leaves the probe on heuristics.
	LLM LLMConfig `yaml:"llm"`
}

// LLMConfig configures the optional LLM client.
type LLMConfig struct {
	// Enabled turns the LLM probe on. All other fields are ignored when
	// false.
	Enabled bool `yaml:"enabled"`

	// Provider selects the LLM backend: anthropic, openai, or google.
	Provider string `yaml:"provider" validate:"omitempty,oneof=anthropic openai google"`

	// Model names the provider model; empty selects the provider default.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	// RequestsPerSecond and Burst bound the request rate to the provider.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"omitempty,gt=0"`
	Burst             int     `yaml:"burst" validate:"omitempty,gt=0"`

	// MaxRetries bounds retry attempts for transient provider failures.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`

	// Timeout is the per-request deadline.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration used when no config file is
// supplied.
func DefaultConfig() Config {
	return Config{
		DataDir:             "data",
		ReportsDir:          "reports",
		CacheDir:            filepath.Join("data", "intermediate_outputs"),
		CriteriaPath:        filepath.Join("config", "judging_criteria.json"),
		SimilarityCorpusDir: filepath.Join("data", "similarity_corpus"),
		MaxConcurrent:       4,
		LLM: LLMConfig{
			RequestsPerSecond: 2,
			Burst:             4,
			MaxRetries:        3,
			Timeout:           30 * time.Second,
		},
	}
}

// LoadConfig reads and validates a YAML configuration file, layering it
// over the defaults.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// SubmissionDir returns the directory for a named submission.
func (c Config) SubmissionDir(name string) string {
	return filepath.Join(c.DataDir, "submissions", name)
}

// criterionSpec mirrors one criterion object in the JSON criteria file.
// Optional fields are pointers so absent values can take their documented
// defaults (weight 0.0, min 0.0, max 1.0, label = key).
type criterionSpec struct {
	Key         string   `json:"key" validate:"required"`
	Label       *string  `json:"label"`
	Weight      *float64 `json:"weight"`
	Source      string   `json:"source" validate:"required"`
	Description string   `json:"description"`
	MinValue    *float64 `json:"min_value"`
	MaxValue    *float64 `json:"max_value"`
}

func (spec criterionSpec) toCriterion() domain.Criterion {
	c := domain.Criterion{
		Key:         spec.Key,
		Label:       spec.Key,
		Source:      spec.Source,
		Description: spec.Description,
		MinValue:    0.0,
		MaxValue:    1.0,
	}
	if spec.Label != nil {
		c.Label = *spec.Label
	}
	if spec.Weight != nil {
		c.Weight = *spec.Weight
	}
	if spec.MinValue != nil {
		c.MinValue = *spec.MinValue
	}
	if spec.MaxValue != nil {
		c.MaxValue = *spec.MaxValue
	}
	return c
}

// ParseCriteria builds a JudgingCriteria from a JSON document that is
// either a bare list of criterion objects or an object with a "criteria"
// list. Each object requires key and source; missing required fields fail
// immediately rather than being defaulted.
//
// A criterion whose max_value does not exceed its min_value is accepted
// for backward compatibility (Clamp degrades to the identity mapping) but
// logged as a configuration warning naming the criterion.
func ParseCriteria(raw []byte, logger *slog.Logger) (domain.JudgingCriteria, error) {
	trimmed := bytes.TrimSpace(raw)
	var specs []criterionSpec

	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &specs); err != nil {
			return domain.JudgingCriteria{}, fmt.Errorf("parsing criteria list: %w", err)
		}
	} else {
		var doc struct {
			Criteria []criterionSpec `json:"criteria"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return domain.JudgingCriteria{}, fmt.Errorf("parsing criteria document: %w", err)
		}
		specs = doc.Criteria
	}

	criteria := make([]domain.Criterion, 0, len(specs))
	for _, spec := range specs {
		if err := validate.Struct(spec); err != nil {
			return domain.JudgingCriteria{}, domain.NewConfigError(spec.Key, "key/source", err)
		}
		c := spec.toCriterion()
		if c.MaxValue <= c.MinValue && logger != nil {
			logger.Warn("criterion has a degenerate normalization range; raw values pass through unclamped",
				"criterion", c.Key, "min_value", c.MinValue, "max_value", c.MaxValue)
		}
		criteria = append(criteria, c)
	}

	return domain.NewJudgingCriteria(criteria)
}

// LoadCriteria loads the configured criteria file, falling back to the
// built-in default rubric when the file does not exist.
func (c Config) LoadCriteria(logger *slog.Logger) (domain.JudgingCriteria, error) {
	if c.CriteriaPath == "" {
		return domain.DefaultCriteria(), nil
	}
	raw, err := os.ReadFile(c.CriteriaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultCriteria(), nil
		}
		return domain.JudgingCriteria{}, fmt.Errorf("reading criteria: %w", err)
	}
	return ParseCriteria(raw, logger)
}
