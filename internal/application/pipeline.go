package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

// Stage names used as cache keys. One stage per modality; each stage's
// output is cached independently against the submission fingerprint.
const (
	StageVideo = "video"
	StageText  = "text"
	StageCode  = "code"
)

// FingerprintFunc computes a content digest for a submission directory.
type FingerprintFunc func(root string, includeSuffixes []string) (string, error)

// PipelineDeps carries the collaborators the pipeline drives. Cache,
// Fingerprint, and the three analyzers are required; Metrics and Logger
// are optional.
type PipelineDeps struct {
	Cache       ports.StageCache
	Fingerprint FingerprintFunc
	Video       ports.VideoAnalyzer
	Text        ports.TextAnalyzer
	Code        ports.CodeAnalyzer
	Metrics     ports.MetricsCollector
	Logger      *slog.Logger
}

// Pipeline runs the full judging flow per submission: fingerprint the
// directory, run each modality stage through the stage cache, combine the
// results with the scorer, and hand the breakdown to the reporter.
//
// Submissions fan out concurrently up to the configured limit; stages
// within one submission run serially because the cache tracks no
// cross-stage dependencies.
type Pipeline struct {
	cfg      Config
	scorer   *Scorer
	reporter *Reporter
	deps     PipelineDeps
	logger   *slog.Logger
	tracer   trace.Tracer

	// flight collapses duplicate concurrent computations of the same
	// submission/stage pair onto one execution.
	flight singleflight.Group
}

// RunResult summarizes one pipeline run across all submissions.
type RunResult struct {
	// RunID uniquely identifies this run in logs and reports.
	RunID string `json:"run_id"`

	// Submissions holds one result per judged submission, in input order.
	Submissions []SubmissionResult `json:"submissions"`

	// LeaderboardPath is where the ranked leaderboard CSV was written.
	LeaderboardPath string `json:"leaderboard_path"`

	// Leaderboard holds the ranked entries.
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

// NewPipeline validates the dependencies and assembles a ready-to-run
// pipeline.
func NewPipeline(cfg Config, criteria domain.JudgingCriteria, deps PipelineDeps) (*Pipeline, error) {
	if deps.Cache == nil {
		return nil, fmt.Errorf("pipeline requires a stage cache")
	}
	if deps.Fingerprint == nil {
		return nil, fmt.Errorf("pipeline requires a fingerprint function")
	}
	if deps.Video == nil || deps.Text == nil || deps.Code == nil {
		return nil, fmt.Errorf("pipeline requires all three modality analyzers")
	}

	// Reject non-positive total weight up front rather than failing on
	// the first submission.
	if _, err := criteria.NormalizedWeights(); err != nil {
		return nil, err
	}

	reporter, err := NewReporter(cfg.ReportsDir)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		cfg:      cfg,
		scorer:   NewScorer(criteria),
		reporter: reporter,
		deps:     deps,
		logger:   logger,
		tracer:   otel.Tracer("judging-pipeline"),
	}, nil
}

// Run judges the named submissions and writes the leaderboard. It fails
// on the first submission whose scoring or analysis fails; cache and
// fingerprint problems never fail a run, they only trigger recomputation.
func (p *Pipeline) Run(ctx context.Context, names []string) (*RunResult, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no submissions to judge")
	}

	runID := uuid.NewString()
	p.logger.Info("starting judging run", "run_id", runID, "submissions", len(names))

	results := make([]SubmissionResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrent)

	for i, name := range names {
		g.Go(func() error {
			result, err := p.processSubmission(gctx, name)
			if err != nil {
				return fmt.Errorf("submission %s: %w", name, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	leaderboardPath, entries, err := p.reporter.WriteLeaderboard(results)
	if err != nil {
		return nil, err
	}

	p.logger.Info("judging run complete", "run_id", runID, "leaderboard", leaderboardPath)
	return &RunResult{
		RunID:           runID,
		Submissions:     results,
		LeaderboardPath: leaderboardPath,
		Leaderboard:     entries,
	}, nil
}

// processSubmission runs the three cached stages for one submission,
// scores the results, and writes the per-submission report.
func (p *Pipeline) processSubmission(ctx context.Context, name string) (SubmissionResult, error) {
	ctx, span := p.tracer.Start(ctx, "Pipeline.processSubmission",
		trace.WithAttributes(attribute.String("submission", name)),
	)
	defer span.End()

	dir := p.cfg.SubmissionDir(name)

	fingerprint, err := p.deps.Fingerprint(dir, p.cfg.IncludeSuffixes)
	if err != nil {
		// An unfingerprintable directory still gets judged; the empty
		// fingerprint makes every stage bypass the cache.
		p.logger.Warn("fingerprinting failed; caching disabled for this run",
			"submission", name, "error", err)
		fingerprint = ""
	}

	video, err := runCachedStage(ctx, p, name, StageVideo, fingerprint,
		func(ctx context.Context) (domain.VideoAnalysisResult, error) {
			return p.deps.Video.Analyze(ctx, dir)
		})
	if err != nil {
		span.RecordError(err)
		return SubmissionResult{}, err
	}

	text, err := runCachedStage(ctx, p, name, StageText, fingerprint,
		func(ctx context.Context) (domain.TextAnalysisResult, error) {
			return p.deps.Text.Analyze(ctx, dir)
		})
	if err != nil {
		span.RecordError(err)
		return SubmissionResult{}, err
	}

	code, err := runCachedStage(ctx, p, name, StageCode, fingerprint,
		func(ctx context.Context) (domain.CodeAnalysisResult, error) {
			return p.deps.Code.Analyze(ctx, dir)
		})
	if err != nil {
		span.RecordError(err)
		return SubmissionResult{}, err
	}

	score, err := p.scorer.Score(video, text, code, nil)
	if err != nil {
		span.RecordError(err)
		return SubmissionResult{}, err
	}
	if p.deps.Metrics != nil {
		p.deps.Metrics.RecordHistogram("submission_score_total", score.Total,
			map[string]string{"submission": name})
	}

	result := SubmissionResult{
		Submission:    name,
		SubmissionDir: dir,
		Fingerprint:   fingerprint,
		Video:         video,
		Text:          text,
		Code:          code,
		Score:         score,
	}

	reportPath, err := p.reporter.WriteSubmissionReport(result)
	if err != nil {
		return SubmissionResult{}, err
	}
	result.ReportPath = reportPath

	p.logger.Info("submission judged", "submission", name, "total", score.Total)
	return result, nil
}

// runCachedStage executes one modality stage through the stage cache:
// a fresh cached payload short-circuits the computation, a miss runs the
// analyzer and stores its result. Concurrent requests for the same
// submission/stage collapse onto a single execution.
//
// An empty fingerprint bypasses the cache entirely. Loading would make
// one unfingerprintable run's results a valid hit for every later
// unfingerprintable run, and storing would plant that entry; the stage
// is recomputed instead.
func runCachedStage[T any](
	ctx context.Context,
	p *Pipeline,
	submission, stage, fingerprint string,
	compute func(context.Context) (T, error),
) (T, error) {
	var zero T

	value, err, _ := p.flight.Do(submission+"/"+stage, func() (any, error) {
		if fingerprint != "" {
			if payload, ok := p.deps.Cache.Load(submission, stage, fingerprint); ok {
				var cached T
				if err := json.Unmarshal(payload, &cached); err == nil {
					p.logger.Debug("stage cache hit", "submission", submission, "stage", stage)
					return cached, nil
				}
				// Undecodable payloads degrade to recomputation.
			}
		}

		start := time.Now()
		result, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if p.deps.Metrics != nil {
			p.deps.Metrics.RecordLatency("stage_"+stage, time.Since(start),
				map[string]string{"stage": stage})
		}

		if fingerprint != "" {
			if err := p.deps.Cache.Store(submission, stage, fingerprint, result); err != nil {
				// A failed store only costs a future recomputation.
				p.logger.Warn("stage cache store failed",
					"submission", submission, "stage", stage, "error", err)
			}
		}
		return result, nil
	})
	if err != nil {
		return zero, err
	}
	return value.(T), nil
}
