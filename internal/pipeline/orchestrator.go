package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"intentional/internal/cache"
	"intentional/internal/llm"
	"intentional/internal/types"
)

// Orchestrator runs one analysis end to end:
//
//	normalize -> 4 dimension analyzers (concurrent, fail fast)
//	          -> aggregate
//	          -> findings | model | plan | recommendations (concurrent)
//	          -> report
//
// Cache writes of a run are staged and only committed once the report is
// complete.
type Orchestrator struct {
	llm   llm.LLMClient
	cache *cache.ResultCache
	cfg   Config
	log   *zap.Logger
}

// NewOrchestrator wires a generation client and an optional result cache.
// client is used as given; wrap it with llm.NewGenerationClient for retries.
func NewOrchestrator(client llm.LLMClient, rc *cache.ResultCache, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{llm: client, cache: rc, cfg: cfg.withDefaults(), log: logger}
}

// Run validates sub and produces its report.
func (o *Orchestrator) Run(ctx context.Context, sub types.Submission) (*types.OverallReport, error) {
	in, err := Normalize(sub)
	if err != nil {
		return nil, err
	}
	return o.RunInput(ctx, in)
}

// RunInput produces the report of an already normalized input.
func (o *Orchestrator) RunInput(ctx context.Context, in *Input) (*types.OverallReport, error) {
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()

	var batch *cache.Batch
	c := cached{TTL: o.cfg.CacheTTL}
	if o.cache != nil {
		batch = o.cache.NewBatch()
		c.Store = batch
	}
	fail := func(err error) (*types.OverallReport, error) {
		if batch != nil {
			batch.Discard()
		}
		o.log.Warn("pipeline run failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	dims, err := o.analyzeDimensions(ctx, in, c)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(&PipelineError{Stage: StagePipeline, Cause: err})
	}

	report := &types.OverallReport{
		Score:     OverallScore(dims.Scores()),
		Desirable: dims.Desirable,
		Effective: dims.Effective,
		Efficient: dims.Efficient,
		Polished:  dims.Polished,
	}
	if err := o.deriveArtifacts(ctx, derivedInput{Context: in.Context, Analyses: dims}, c, report); err != nil {
		return fail(err)
	}

	fields := []zap.Field{
		zap.Float64("score", report.Score),
		zap.String("recommended_model", report.RecommendedModel),
		zap.Duration("elapsed", time.Since(start)),
	}
	if batch != nil {
		committed := batch.Commit()
		m := o.cache.Metrics()
		fields = append(fields,
			zap.Int("cache_committed", committed),
			zap.Uint64("cache_hits", m.Hits),
			zap.Uint64("cache_misses", m.Misses),
			zap.Uint64("cache_rejected", m.Rejected),
		)
	}
	o.log.Info("pipeline run complete", fields...)
	return report, nil
}

// analyzeDimensions runs the four analyzers concurrently. The first failure
// cancels the others.
func (o *Orchestrator) analyzeDimensions(ctx context.Context, in *Input, c cached) (types.DimensionSet, error) {
	results := make([]types.DimensionAnalysis, len(types.Dimensions))
	g, gctx := errgroup.WithContext(ctx)
	for i, dim := range types.Dimensions {
		a := &DimensionAnalyzer{LLM: o.llm, Cache: c, Cfg: o.cfg}
		inputs := in.Deep.For(dim)
		g.Go(func() error {
			res, err := a.Run(gctx, inputs)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.DimensionSet{}, err
	}
	var set types.DimensionSet
	for i, dim := range types.Dimensions {
		set.Set(dim, results[i])
	}
	return set, nil
}

// deriveArtifacts runs the four derived stages concurrently. A failing stage
// does not cancel its siblings but fails the run.
func (o *Orchestrator) deriveArtifacts(ctx context.Context, in derivedInput, c cached, report *types.OverallReport) error {
	var (
		g        errgroup.Group
		findings []string
		model    types.ModelRecommendation
		plan     types.ImplementationPlan
		prose    string
	)
	g.Go(func() (err error) {
		findings, err = (&FindingsGenerator{LLM: o.llm, Cache: c, Cfg: o.cfg}).Run(ctx, in)
		return err
	})
	g.Go(func() (err error) {
		model, err = (&ModelRecommender{LLM: o.llm, Cache: c, Cfg: o.cfg}).Run(ctx, in)
		return err
	})
	g.Go(func() (err error) {
		plan, err = (&PlanGenerator{LLM: o.llm, Cache: c, Cfg: o.cfg}).Run(ctx, in)
		return err
	})
	g.Go(func() (err error) {
		prose, err = (&RecommendationWriter{LLM: o.llm, Cache: c, Cfg: o.cfg}).Run(ctx, in)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	report.KeyFindings = findings
	report.RecommendedModel = model.ModelType
	report.ModelExplanation = model.Explanation
	report.ImplementationPlan = plan
	report.Recommendations = prose
	return nil
}
