package pipeline

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentional/internal/heuristic"
	"intentional/internal/llm"
	"intentional/internal/llmtool"
	"intentional/internal/types"
)

func TestOverallScore_Weights(t *testing.T) {
	assert.InDelta(t, 1.0, WeightDesirable+WeightEffective+WeightEfficient+WeightPolished, 1e-12)
	assert.InDelta(t, 9.0, OverallScore(types.Scores{Desirable: 9, Effective: 9, Efficient: 9, Polished: 9}), 1e-9)
	assert.InDelta(t, 0.3*10+0.3*1+0.2*1+0.2*10, OverallScore(types.Scores{Desirable: 10, Effective: 1, Efficient: 1, Polished: 10}), 1e-9)
	for _, s := range []types.Scores{
		{Desirable: 1, Effective: 1, Efficient: 1, Polished: 1},
		{Desirable: 10, Effective: 10, Efficient: 10, Polished: 10},
		{Desirable: 1, Effective: 10, Efficient: 1, Polished: 10},
	} {
		got := OverallScore(s)
		assert.GreaterOrEqual(t, got, 1.0-1e-9)
		assert.LessOrEqual(t, got, 10.0+1e-9)
	}
}

func TestParseDimensionAnalysis(t *testing.T) {
	stage := types.DimensionStage(types.Desirable)

	got, err := ParseDimensionAnalysis(stage, "```json\n{\"score\": 7.5, \"analysis\": \" Solid. \", \"strengths\": [\"a\", \" \"], \"weaknesses\": [], \"opportunities\": [\"b\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, 7.5, got.Score)
	assert.Equal(t, "Solid.", got.Analysis)
	assert.Equal(t, []string{"a"}, got.Strengths)

	tests := []struct {
		name string
		text string
	}{
		{"not json", "I think it scores a seven."},
		{"missing keys", `{"score": 5, "analysis": "x"}`},
		{"null key", `{"score": 5, "analysis": "x", "strengths": null, "weaknesses": [], "opportunities": []}`},
		{"score above range", `{"score": 11, "analysis": "x", "strengths": [], "weaknesses": [], "opportunities": []}`},
		{"score below range", `{"score": 0.5, "analysis": "x", "strengths": [], "weaknesses": [], "opportunities": []}`},
		{"empty analysis", `{"score": 5, "analysis": "  ", "strengths": [], "weaknesses": [], "opportunities": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDimensionAnalysis(stage, tt.text)
			var pErr *ParseError
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, stage, pErr.Stage)
			assert.Equal(t, tt.text, pErr.Raw)
		})
	}
}

func TestParseFindings_TruncatesAndTopsUp(t *testing.T) {
	mid := types.Scores{Desirable: 6, Effective: 6, Efficient: 6, Polished: 6}

	got, err := ParseFindings(`["1","2","3","4","5","6","7"]`, mid)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, got)

	got, err = ParseFindings(`["only one", ""]`, mid)
	require.NoError(t, err)
	require.Len(t, got, heuristic.MinFindings)
	assert.Equal(t, "only one", got[0])

	_, err = ParseFindings(`{"findings": []}`, mid)
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, types.StageFindings, pErr.Stage)
}

func TestParseFindings_HighScoresAddPerformsWellFinding(t *testing.T) {
	high := types.Scores{Desirable: 9, Effective: 9, Efficient: 9, Polished: 9}
	got, err := ParseFindings(`[]`, high)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "performs well across all dimensions")
}

func TestParseModelRecommendation(t *testing.T) {
	got, err := ParseModelRecommendation(`{"model_type": " freemium ", "explanation": "Lets users self-serve."}`)
	require.NoError(t, err)
	assert.Equal(t, types.ModelFreemium, got.ModelType)

	got, err = ParseModelRecommendation(`{"model_type": "Other", "explanation": "Reverse trial"}`)
	require.NoError(t, err)
	assert.Equal(t, types.ModelOther, got.ModelType)

	for _, text := range []string{
		`{"model_type": "Pay what you want", "explanation": "x"}`,
		`{"model_type": "Other", "explanation": " "}`,
		`{"model_type": "Freemium"}`,
	} {
		_, err := ParseModelRecommendation(text)
		var pErr *ParseError
		assert.ErrorAs(t, err, &pErr, text)
	}
}

func validPlanJSON(phases int, steps int, priority string) string {
	step := `{"title":"T","description":"D","priority":"` + priority + `","estimated_effort":"Low","expected_impact":"High","metrics":["m"]}`
	var b strings.Builder
	b.WriteString(`{"phases":{`)
	for p := 0; p < phases; p++ {
		if p > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"Phase ` + strconv.Itoa(p+1) + `":[`)
		for s := 0; s < steps; s++ {
			if s > 0 {
				b.WriteString(",")
			}
			b.WriteString(step)
		}
		b.WriteString("]")
	}
	b.WriteString(`},"timeline":"Q1-Q2","success_metrics":["conversion"]}`)
	return b.String()
}

func TestParsePlan(t *testing.T) {
	plan, err := ParsePlan(validPlanJSON(3, 5, "Medium"))
	require.NoError(t, err)
	assert.Len(t, plan.Phases, 3)
	assert.Equal(t, "Q1-Q2", plan.Timeline)

	for name, text := range map[string]string{
		"one phase":      validPlanJSON(1, 3, "High"),
		"four phases":    validPlanJSON(4, 3, "High"),
		"too few steps":  validPlanJSON(2, 2, "High"),
		"too many steps": validPlanJSON(2, 6, "High"),
		"bad enum":       validPlanJSON(2, 3, "Urgent"),
		"no timeline":    `{"phases":{},"success_metrics":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlan(text)
			var pErr *ParseError
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, types.StagePlan, pErr.Stage)
		})
	}
}

func TestDimensionPrompt_NotProvidedPolicy(t *testing.T) {
	spec := dimensionPrompt(types.PolishedInputs{UserExperience: "Clean"})
	msgs, err := llmtool.BuildMessages(spec)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "'Polished' dimension")
	user := msgs[1].Content
	assert.Contains(t, user, "User Experience: Clean\n")
	assert.Contains(t, user, "Onboarding Process: "+NotProvided+"\n")
	assert.Contains(t, user, "Additional Notes: "+NotProvided)
	assert.Contains(t, user, "Treat an input of N/A as not provided")
}

func TestRecommendationWriter_RejectsEmptyOutput(t *testing.T) {
	client := newStageClient()
	client.override[types.StageRecommendations] = func(context.Context, int) (string, error) { return "  \n", nil }
	w := &RecommendationWriter{LLM: client, Cfg: DefaultConfig()}

	_, err := w.Run(context.Background(), derivedInput{})
	var pErr *ParseError
	require.ErrorAs(t, err, &pErr)
}

func TestChatResponder(t *testing.T) {
	client := newStageClient()
	r := &ChatResponder{LLM: client, Cfg: DefaultConfig()}

	report := &types.OverallReport{Score: 6.5, RecommendedModel: types.ModelFreemium, KeyFindings: []string{"Slow onboarding"}}
	cc := NewChatContext(types.AnalysisContext{ProductDescription: "Whiteboard"}, report)
	out, err := r.Respond(context.Background(), "How do I convert more users?", cc)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	req := client.LastRequest(types.StageChat)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.Equal(t, systemChat, req.Messages[0].Content)
	user := req.Messages[1].Content
	assert.Contains(t, user, "User's question: How do I convert more users?")
	assert.Contains(t, user, `"recommended_model": "Freemium"`)
	assert.Contains(t, user, `"target_audience": "N/A"`)
	assert.Contains(t, user, `"overall_score": 6.5`)

	_, err = r.Respond(context.Background(), "what next?", nil)
	require.NoError(t, err)
	assert.Contains(t, client.LastRequest(types.StageChat).Messages[1].Content, "{}")

	_, err = r.Respond(context.Background(), "  ", cc)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestRunCached_SkipsStoreWithoutCache(t *testing.T) {
	calls := 0
	compute := func(ctx context.Context) (int, error) {
		calls++
		assert.Equal(t, "findings", llm.StageFrom(ctx))
		return 42, nil
	}
	for i := 0; i < 2; i++ {
		v, err := runCached(context.Background(), cached{}, types.StageFindings, "k", compute)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 2, calls)
}
