package pipeline

import (
	"context"
	"fmt"
	"strings"

	"intentional/internal/llm"
	"intentional/internal/llmtool"
	"intentional/internal/types"
)

// ModelRecommender picks one free model type from the fixed list.
type ModelRecommender struct {
	LLM   llm.LLMClient
	Cache cached
	Cfg   Config
}

func (x *ModelRecommender) Run(ctx context.Context, in derivedInput) (types.ModelRecommendation, error) {
	return runCached(ctx, x.Cache, types.StageModel, in, func(ctx context.Context) (types.ModelRecommendation, error) {
		spec, err := derivedPrompt(systemStrategist,
			"Based on the following analyses and context, recommend the most appropriate free model type.", in)
		if err != nil {
			return types.ModelRecommendation{}, err
		}
		spec.Sections = append(spec.Sections, llmtool.PromptSection{Title: "Options", Body: modelOptions()})
		spec.OutputFields = []llmtool.PromptField{
			{Name: "model_type", Type: "string", Required: true, Description: "exactly one of the options"},
			{Name: "explanation", Type: "string", Required: true},
		}
		spec = llmtool.ApplyPresets(spec, llmtool.PresetStrictJSON())

		text, err := generate(ctx, x.LLM, spec, x.Cfg.MaxTokens, x.Cfg.Temperature)
		if err != nil {
			return types.ModelRecommendation{}, err
		}
		return ParseModelRecommendation(text)
	})
}

// ParseModelRecommendation decodes {model_type, explanation}. The model type
// is matched case-insensitively and returned in canonical spelling; "Other"
// must come with an explanation.
func ParseModelRecommendation(text string) (types.ModelRecommendation, error) {
	var out types.ModelRecommendation
	if err := llmtool.DecodeObject(text, &out, "model_type", "explanation"); err != nil {
		return types.ModelRecommendation{}, parseFailure(types.StageModel, text, err)
	}
	canonical, ok := canonicalModelType(out.ModelType)
	if !ok {
		return types.ModelRecommendation{}, &ParseError{
			Stage:  types.StageModel,
			Reason: fmt.Sprintf("unknown model_type %q", out.ModelType),
			Raw:    text,
		}
	}
	out.ModelType = canonical
	out.Explanation = strings.TrimSpace(out.Explanation)
	if out.ModelType == types.ModelOther && out.Explanation == "" {
		return types.ModelRecommendation{}, &ParseError{Stage: types.StageModel, Reason: `"Other" requires an explanation`, Raw: text}
	}
	return out, nil
}

func canonicalModelType(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, m := range types.ModelTypes {
		if strings.EqualFold(m.Name, s) {
			return m.Name, true
		}
	}
	return "", false
}
