package pipeline

import (
	"context"
	"strconv"
	"strings"

	"intentional/internal/llm"
	"intentional/internal/llmtool"
	"intentional/internal/types"
)

// RecommendationHeadings are the sections the prose must cover, in order.
var RecommendationHeadings = []string{
	"Strategic direction for the free model",
	"Specific improvements for each DEEP dimension",
	"Feature allocation guidance (what to include in free vs. paid)",
	"Conversion trigger recommendations",
	"Success metrics to track",
}

// RecommendationWriter produces the long-form markdown recommendations.
type RecommendationWriter struct {
	LLM   llm.LLMClient
	Cache cached
	Cfg   Config
}

func (x *RecommendationWriter) Run(ctx context.Context, in derivedInput) (string, error) {
	return runCached(ctx, x.Cache, types.StageRecommendations, in, func(ctx context.Context) (string, error) {
		spec, err := derivedPrompt(systemStrategist,
			"Based on the following analyses and context, generate comprehensive recommendations.", in)
		if err != nil {
			return "", err
		}
		var topics strings.Builder
		for i, h := range RecommendationHeadings {
			topics.WriteString(strconv.Itoa(i + 1))
			topics.WriteString(". ")
			topics.WriteString(h)
			topics.WriteString("\n")
		}
		spec.Sections = append(spec.Sections, llmtool.PromptSection{Title: "Address", Body: topics.String()})
		spec.OutputFormat = "Detailed markdown text with clear headings and bullet points."
		spec = llmtool.ApplyPresets(spec, llmtool.PresetActionable())

		text, err := generate(ctx, x.LLM, spec, x.Cfg.RecommendationMaxTokens, x.Cfg.Temperature)
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", &ParseError{Stage: types.StageRecommendations, Reason: "empty recommendations"}
		}
		return text, nil
	})
}
