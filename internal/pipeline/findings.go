package pipeline

import (
	"context"
	"strings"

	"intentional/internal/heuristic"
	"intentional/internal/llm"
	"intentional/internal/llmtool"
	"intentional/internal/types"
)

// FindingsGenerator distills 3-5 key findings from the four analyses.
type FindingsGenerator struct {
	LLM   llm.LLMClient
	Cache cached
	Cfg   Config
}

func (x *FindingsGenerator) Run(ctx context.Context, in derivedInput) ([]string, error) {
	return runCached(ctx, x.Cache, types.StageFindings, in, func(ctx context.Context) ([]string, error) {
		spec, err := derivedPrompt(systemStrategist,
			"Based on the following analyses and context, generate a list of 5-7 key findings about the free model strategy.", in)
		if err != nil {
			return nil, err
		}
		spec.OutputFormat = `["finding 1", "finding 2", "..."]`
		spec = llmtool.ApplyPresets(spec, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent())

		text, err := generate(ctx, x.LLM, spec, x.Cfg.MaxTokens, x.Cfg.Temperature)
		if err != nil {
			return nil, err
		}
		return ParseFindings(text, in.Analyses.Scores())
	})
}

// ParseFindings decodes a JSON string array, keeps at most five non-empty
// findings and tops up to three with rule-based findings from the scores.
func ParseFindings(text string, scores types.Scores) ([]string, error) {
	var items []string
	if err := llmtool.DecodeArray(text, &items); err != nil {
		return nil, parseFailure(types.StageFindings, text, err)
	}
	findings := nonEmpty(items)
	if len(findings) > heuristic.MaxFindings {
		findings = findings[:heuristic.MaxFindings]
	}
	for _, f := range heuristic.ScoreFindings(scores) {
		if len(findings) >= heuristic.MinFindings {
			break
		}
		if !containsFold(findings, f) {
			findings = append(findings, f)
		}
	}
	return heuristic.TopUp(findings, scores), nil
}

func containsFold(items []string, s string) bool {
	for _, it := range items {
		if strings.EqualFold(it, s) {
			return true
		}
	}
	return false
}
