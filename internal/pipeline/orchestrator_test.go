package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"intentional/internal/cache"
	"intentional/internal/llm"
	llmclient "intentional/internal/llm/client"
	"intentional/internal/types"
)

func TestMain(m *testing.M) {
	// opencensus (pulled in by the genai auth transport) starts a stats
	// worker in init that never exits.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// stageClient answers from the fake client unless a stage has an override.
type stageClient struct {
	fake *llm.FakeClient

	mu       sync.Mutex
	override map[types.Stage]func(ctx context.Context, n int) (string, error)
	calls    map[types.Stage]int
	lastReq  map[types.Stage]llmclient.Request
}

func newStageClient() *stageClient {
	return &stageClient{
		fake:     llm.NewFakeClient(0),
		override: map[types.Stage]func(context.Context, int) (string, error){},
		calls:    map[types.Stage]int{},
		lastReq:  map[types.Stage]llmclient.Request{},
	}
}

func (s *stageClient) Name() string                { return "stage-client" }
func (s *stageClient) Close() error                { return nil }
func (s *stageClient) CountTokens(text string) int { return llmclient.CountTokens(text) }
func (s *stageClient) TokenCapacity() int          { return 128000 }

func (s *stageClient) Generate(ctx context.Context, req llmclient.Request) (string, error) {
	stage := types.Stage(llm.StageFrom(ctx))
	s.mu.Lock()
	s.calls[stage]++
	n := s.calls[stage]
	s.lastReq[stage] = req
	fn := s.override[stage]
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, n)
	}
	return s.fake.Generate(ctx, req)
}

func (s *stageClient) Calls(stage types.Stage) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[stage]
}

func (s *stageClient) LastRequest(stage types.Stage) llmclient.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq[stage]
}

func allStages() []types.Stage {
	out := []types.Stage{types.StageFindings, types.StageModel, types.StagePlan, types.StageRecommendations}
	for _, d := range types.Dimensions {
		out = append(out, types.DimensionStage(d))
	}
	return out
}

func blockUntilDone(ctx context.Context, _ int) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func sampleSubmission() types.Submission {
	return types.Submission{
		Context: types.AnalysisContext{
			ProductDescription: "  A shared whiteboard for remote design teams  ",
			TargetAudience:     "Design leads at agencies",
			BusinessGoals:      "Grow paid seats",
		},
		DeepInputs: types.DeepInputs{
			Desirable: types.DesirableInputs{ValueProposition: "Real-time canvas", UserNeeds: "Async critique"},
			Effective: types.EffectiveInputs{CoreProblems: "Feedback scattered across tools"},
			Efficient: types.EfficientInputs{ConversionStrategy: "Upgrade when a board is shared externally"},
			Polished:  types.PolishedInputs{OnboardingProcess: "Template gallery on first run"},
		},
	}
}

func TestOrchestrator_ProducesCompleteReport(t *testing.T) {
	client := newStageClient()
	o := NewOrchestrator(client, cache.NewResultCache(cache.CacheConfig{}), DefaultConfig(), zaptest.NewLogger(t))

	report, err := o.Run(context.Background(), sampleSubmission())
	require.NoError(t, err)

	dims := report.Dimensions()
	assert.InDelta(t, OverallScore(dims.Scores()), report.Score, 1e-9)
	for _, d := range types.Dimensions {
		sc := dims.Get(d).Score
		assert.GreaterOrEqual(t, sc, MinDimensionScore)
		assert.LessOrEqual(t, sc, MaxDimensionScore)
	}
	assert.Len(t, report.KeyFindings, 5)
	assert.Equal(t, types.ModelFreemium, report.RecommendedModel)
	assert.NotEmpty(t, report.ModelExplanation)
	assert.Len(t, report.ImplementationPlan.Phases, 2)
	assert.Contains(t, report.Recommendations, "## Strategic Direction")

	for _, st := range allStages() {
		assert.Equal(t, 1, client.Calls(st), st)
	}
	assert.Equal(t, 2000, client.LastRequest(types.StagePlan).MaxTokens)
	assert.Equal(t, 4000, client.LastRequest(types.StageRecommendations).MaxTokens)
	assert.Equal(t, 0.7, client.LastRequest(types.StageFindings).Temperature)
}

func TestOrchestrator_DimensionSeesOnlyItsInputs(t *testing.T) {
	client := newStageClient()
	o := NewOrchestrator(client, nil, DefaultConfig(), nil)

	_, err := o.Run(context.Background(), sampleSubmission())
	require.NoError(t, err)

	req := client.LastRequest(types.DimensionStage(types.Effective))
	text := req.Text()
	assert.Contains(t, text, "Core Problems Solved: Feedback scattered across tools")
	assert.Contains(t, text, "Success Metrics: N/A")
	assert.NotContains(t, text, "Real-time canvas")
	assert.NotContains(t, text, "shared whiteboard")

	derived := client.LastRequest(types.StageModel).Text()
	assert.Contains(t, derived, "Product Description: A shared whiteboard for remote design teams\n")
	assert.Contains(t, derived, "[DIMENSIONAL ANALYSES]")
	assert.Contains(t, derived, `"Ad-Supported"`)
}

func TestOrchestrator_CachedUntilTTL(t *testing.T) {
	clock := &testClock{t: time.Unix(1_700_000_000, 0)}
	rc := cache.NewResultCache(cache.CacheConfig{TTL: time.Hour}, cache.WithClock(clock.Now))
	client := newStageClient()
	o := NewOrchestrator(client, rc, DefaultConfig(), zap.NewNop())

	first, err := o.Run(context.Background(), sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, 8, rc.Len())

	clock.Advance(30 * time.Minute)
	second, err := o.Run(context.Background(), sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	for _, st := range allStages() {
		assert.Equal(t, 1, client.Calls(st), "stage %s called again while cached", st)
	}

	clock.Advance(31 * time.Minute)
	_, err = o.Run(context.Background(), sampleSubmission())
	require.NoError(t, err)
	for _, st := range allStages() {
		assert.Equal(t, 2, client.Calls(st), "stage %s not recomputed after expiry", st)
	}
}

func TestOrchestrator_LogsCacheCounters(t *testing.T) {
	rc := cache.NewResultCache(cache.CacheConfig{})
	core, logs := observer.New(zap.InfoLevel)
	o := NewOrchestrator(newStageClient(), rc, DefaultConfig(), zap.New(core))

	for i := 0; i < 2; i++ {
		_, err := o.Run(context.Background(), sampleSubmission())
		require.NoError(t, err)
	}
	runs := logs.FilterMessage("pipeline run complete").All()
	require.Len(t, runs, 2)

	first := runs[0].ContextMap()
	assert.Equal(t, int64(8), first["cache_committed"])
	assert.Equal(t, uint64(0), first["cache_hits"])
	assert.Equal(t, uint64(8), first["cache_misses"])

	second := runs[1].ContextMap()
	assert.Equal(t, int64(0), second["cache_committed"])
	assert.Equal(t, uint64(8), second["cache_hits"])
	assert.Equal(t, uint64(0), second["cache_rejected"])
}

func TestOrchestrator_ValidationRejectsBeforeAnyCall(t *testing.T) {
	client := newStageClient()
	o := NewOrchestrator(client, nil, DefaultConfig(), nil)

	sub := sampleSubmission()
	sub.Context.ProductDescription = "   "
	_, err := o.Run(context.Background(), sub)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "context.product_description", vErr.Field)
	for _, st := range allStages() {
		assert.Zero(t, client.Calls(st))
	}
}

func TestOrchestrator_ParseFailureFailsRunAndCommitsNothing(t *testing.T) {
	rc := cache.NewResultCache(cache.CacheConfig{})
	client := newStageClient()
	client.override[types.StagePlan] = func(context.Context, int) (string, error) {
		return "Here is your plan: step one, step two.", nil
	}
	o := NewOrchestrator(client, rc, DefaultConfig(), zaptest.NewLogger(t))

	report, err := o.Run(context.Background(), sampleSubmission())
	require.Error(t, err)
	assert.Nil(t, report)

	var pErr *PipelineError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, types.StagePlan, pErr.Stage)
	assert.False(t, pErr.Retryable())
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)

	// siblings ran to completion but none of the run's results were promoted
	assert.Equal(t, 1, client.Calls(types.StageRecommendations))
	assert.Equal(t, 1, client.Calls(types.StagePlan))
	assert.Zero(t, rc.Len())
}

func TestOrchestrator_DimensionFailureCancelsSiblings(t *testing.T) {
	rc := cache.NewResultCache(cache.CacheConfig{})
	client := newStageClient()
	client.override[types.DimensionStage(types.Desirable)] = func(context.Context, int) (string, error) {
		return "", llmclient.NewPermanentError(errors.New("400 invalid request"))
	}
	for _, d := range []types.Dimension{types.Effective, types.Efficient, types.Polished} {
		client.override[types.DimensionStage(d)] = blockUntilDone
	}
	o := NewOrchestrator(client, rc, DefaultConfig(), zaptest.NewLogger(t))

	_, err := o.Run(context.Background(), sampleSubmission())
	var pErr *PipelineError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, types.DimensionStage(types.Desirable), pErr.Stage)
	assert.False(t, pErr.Retryable())
	assert.Zero(t, client.Calls(types.StageFindings), "derived stages must not start")
	assert.Zero(t, rc.Len())
}

func TestOrchestrator_TimeoutDiscardsPartialResults(t *testing.T) {
	rc := cache.NewResultCache(cache.CacheConfig{})
	client := newStageClient()
	client.override[types.DimensionStage(types.Polished)] = blockUntilDone
	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	o := NewOrchestrator(client, rc, cfg, zaptest.NewLogger(t))

	_, err := o.Run(context.Background(), sampleSubmission())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	var pErr *PipelineError
	require.ErrorAs(t, err, &pErr)
	assert.True(t, pErr.Retryable())
	assert.Equal(t, 1, client.Calls(types.DimensionStage(types.Desirable)))
	assert.Zero(t, rc.Len(), "completed dimensions of an aborted run stay uncached")
}

func TestOrchestrator_RetriesTransientFailures(t *testing.T) {
	client := newStageClient()
	client.override[types.DimensionStage(types.Effective)] = func(ctx context.Context, n int) (string, error) {
		if n <= 2 {
			return "", errors.New("503 service unavailable")
		}
		return `{"score": 6, "analysis": "ok", "strengths": [], "weaknesses": [], "opportunities": []}`, nil
	}
	noSleep := llm.WithSleep(func(context.Context, time.Duration) error { return nil })
	gen := llm.NewGenerationClient(client, llm.DefaultRetryPolicy(), zaptest.NewLogger(t), noSleep)
	o := NewOrchestrator(gen, nil, DefaultConfig(), nil)

	report, err := o.Run(context.Background(), sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, 6.0, report.Effective.Score)
	assert.Equal(t, 3, client.Calls(types.DimensionStage(types.Effective)))
}

func TestOrchestrator_RetryExhaustionIsRetryableFailure(t *testing.T) {
	client := newStageClient()
	client.override[types.StageFindings] = func(context.Context, int) (string, error) {
		return "", errors.New("429 too many requests")
	}
	noSleep := llm.WithSleep(func(context.Context, time.Duration) error { return nil })
	gen := llm.NewGenerationClient(client, llm.DefaultRetryPolicy(), zap.NewNop(), noSleep)
	o := NewOrchestrator(gen, nil, DefaultConfig(), nil)

	_, err := o.Run(context.Background(), sampleSubmission())
	var pErr *PipelineError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, types.StageFindings, pErr.Stage)
	assert.True(t, pErr.Retryable())

	var exhausted *llm.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 6, exhausted.Attempts)
	assert.Equal(t, 6, client.Calls(types.StageFindings))
}
