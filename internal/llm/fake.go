package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"

	llmclient "intentional/internal/llm/client"
	"intentional/internal/types"
)

// FakeClient returns deterministic, well-formed payloads per stage for
// offline runs and tests. Dimension scores are derived from a hash of the
// prompt so identical inputs always score the same.
type FakeClient struct {
	tokenCap int

	mu    sync.Mutex
	calls map[string]int
}

func NewFakeClient(tokenCap int) *FakeClient {
	if tokenCap <= 0 {
		tokenCap = 128000
	}
	return &FakeClient{tokenCap: tokenCap, calls: make(map[string]int)}
}

func (f *FakeClient) Name() string                { return "FakeLLM" }
func (f *FakeClient) Close() error                { return nil }
func (f *FakeClient) CountTokens(text string) int { return llmclient.CountTokens(text) }
func (f *FakeClient) TokenCapacity() int          { return f.tokenCap }

// Calls returns how many times stage has been generated.
func (f *FakeClient) Calls(stage string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[stage]
}

func (f *FakeClient) Generate(ctx context.Context, req llmclient.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stage := StageFrom(ctx)
	f.mu.Lock()
	f.calls[stage]++
	f.mu.Unlock()

	var obj any
	if dim, ok := types.Stage(stage).DimensionOf(); ok {
		obj = fakeDimension(dim, req.Text())
	} else {
		switch types.Stage(stage) {
		case types.StageFindings:
			obj = []string{
				"The free offering communicates its core value clearly.",
				"Onboarding friction delays the first moment of value.",
				"Conversion triggers are not tied to usage milestones.",
				"Success metrics are tracked but not reviewed regularly.",
				"Premium features are under-exposed inside the free tier.",
			}
		case types.StageModel:
			obj = types.ModelRecommendation{
				ModelType:   types.ModelFreemium,
				Explanation: "A feature-limited free tier lets users reach value on their own before upgrading.",
			}
		case types.StagePlan:
			obj = fakePlan()
		case types.StageRecommendations:
			return fakeRecommendations, nil
		case types.StageChat:
			return "Focus on shortening time to value: guide new users to one meaningful outcome in their first session.", nil
		default:
			return "", llmclient.NewPermanentError(fmt.Errorf("fake llm: no canned response for stage %q", stage))
		}
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func fakeDimension(dim types.Dimension, prompt string) types.DimensionAnalysis {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	score := 3 + float64(h.Sum32()%61)/10
	name := dim.Title()
	return types.DimensionAnalysis{
		Score:         score,
		Analysis:      fmt.Sprintf("The %s dimension shows a workable foundation with room to sharpen.", name),
		Strengths:     []string{name + " inputs describe a clear intent."},
		Weaknesses:    []string{name + " lacks measurable targets."},
		Opportunities: []string{"Define one leading indicator for " + name + "."},
	}
}

func fakePlan() types.ImplementationPlan {
	step := func(title string) types.ImplementationStep {
		return types.ImplementationStep{
			Title:           title,
			Description:     title + " across the free tier.",
			Priority:        types.LevelHigh,
			EstimatedEffort: types.LevelMedium,
			ExpectedImpact:  types.LevelHigh,
			Metrics:         []string{"activation rate"},
		}
	}
	return types.ImplementationPlan{
		Phases: map[string][]types.ImplementationStep{
			"Phase 1": {step("Map the value moment"), step("Trim onboarding steps"), step("Instrument activation")},
			"Phase 2": {step("Add upgrade prompts"), step("Tune usage limits"), step("Review conversion weekly")},
		},
		Timeline:       "Two phases over roughly three months.",
		SuccessMetrics: []string{"free-to-paid conversion", "time to value"},
	}
}

const fakeRecommendations = `## Strategic Direction
Lead with a freemium tier centred on the core workflow.

## DEEP Improvements
- Desirable: state the value proposition on the first screen.
- Effective: solve one complete job for free.
- Efficient: cap costly resources rather than features.
- Polished: add in-product feedback.

## Feature Allocation
Keep collaboration and scale features paid.

## Conversion Triggers
Prompt upgrades at usage limits and team invites.

## Success Metrics
Track activation, time to value and conversion.
`
