// Command judge runs the full judging pipeline over hackathon
// submissions: modality analysis through the stage cache, weighted
// scoring, per-submission reports, and the ranked leaderboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/arbiterhq/arbiter/infrastructure/analyzers"
	"github.com/arbiterhq/arbiter/infrastructure/cache"
	"github.com/arbiterhq/arbiter/infrastructure/llm"
	"github.com/arbiterhq/arbiter/infrastructure/middleware"
	"github.com/arbiterhq/arbiter/internal/application"
	"github.com/arbiterhq/arbiter/internal/ports"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config (defaults apply when empty)")
		submissions = flag.String("submissions", "", "Comma-separated submission names (default: all)")
		refresh     = flag.Bool("refresh", false, "Invalidate cached stage results before judging")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(context.Background(), *configPath, *submissions, *refresh, logger); err != nil {
		logger.Error("judging run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, submissionList string, refresh bool, logger *slog.Logger) error {
	cfg := application.DefaultConfig()
	if configPath != "" {
		loaded, err := application.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	criteria, err := cfg.LoadCriteria(logger)
	if err != nil {
		return err
	}

	names, err := resolveSubmissions(cfg, submissionList)
	if err != nil {
		return err
	}

	metrics := middleware.NewPrometheusMetrics()
	stageCache, err := cache.NewAnalysisCache(cfg.CacheDir, cache.WithMetrics(metrics))
	if err != nil {
		return err
	}
	if refresh {
		for _, name := range names {
			if err := stageCache.Invalidate(name); err != nil {
				logger.Warn("cache invalidation failed", "submission", name, "error", err)
			}
		}
	}

	llmClient, err := buildLLMClient(cfg.LLM, logger)
	if err != nil {
		return err
	}

	pipeline, err := application.NewPipeline(cfg, criteria, application.PipelineDeps{
		Cache:       stageCache,
		Fingerprint: cache.DirectoryFingerprint,
		Video:       analyzers.NewVideoAnalyzer(),
		Text: analyzers.NewTextAnalyzer(analyzers.TextAnalyzerConfig{
			CorpusDir: cfg.SimilarityCorpusDir,
			LLM:       llmClient,
			Logger:    logger,
		}),
		Code:    analyzers.NewCodeAnalyzer(),
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, names)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s judged %d submissions\n", result.RunID, len(result.Submissions))
	fmt.Printf("Leaderboard: %s\n\n", result.LeaderboardPath)
	for _, entry := range result.Leaderboard {
		fmt.Printf("%3d. %-30s %.3f\n", entry.Rank, entry.Submission, entry.Total)
	}
	return nil
}

// resolveSubmissions expands the -submissions flag, defaulting to every
// directory under <data_dir>/submissions.
func resolveSubmissions(cfg application.Config, submissionList string) ([]string, error) {
	if submissionList != "" {
		var names []string
		for _, name := range strings.Split(submissionList, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		return names, nil
	}

	root := filepath.Join(cfg.DataDir, "submissions")
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing submissions in %s: %w", root, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no submissions found under %s", root)
	}
	return names, nil
}

// buildLLMClient assembles the rate-limited, retrying LLM client when
// the probe is enabled. A disabled block yields a nil client and the
// text analyzer falls back to its lexical heuristic.
func buildLLMClient(cfg application.LLMConfig, logger *slog.Logger) (ports.LLMClient, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("LLM probe enabled but %s is not set", cfg.APIKeyEnv)
	}

	client, err := llm.NewClient(cfg.Provider, llm.ClientConfig{
		APIKey:  apiKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
		Middleware: []llm.Middleware{
			llm.RetryMiddleware(cfg.MaxRetries, time.Second, 30*time.Second),
			llm.RateLimitMiddleware(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("building %s client: %w", cfg.Provider, err)
	}
	logger.Info("LLM probe enabled", "provider", cfg.Provider, "model", client.GetModel())
	return client, nil
}
