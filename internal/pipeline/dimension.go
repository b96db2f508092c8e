package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"intentional/internal/llm"
	"intentional/internal/llmtool"
	"intentional/internal/types"
)

// Dimension score bounds.
const (
	MinDimensionScore = 1.0
	MaxDimensionScore = 10.0
)

var dimensionKeys = []string{"score", "analysis", "strengths", "weaknesses", "opportunities"}

// DimensionAnalyzer scores one DEEP dimension from that dimension's inputs
// only. Results are cached by (dimension stage, inputs).
type DimensionAnalyzer struct {
	LLM   llm.LLMClient
	Cache cached
	Cfg   Config
}

func (x *DimensionAnalyzer) Run(ctx context.Context, in types.DimensionInputs) (types.DimensionAnalysis, error) {
	stage := types.DimensionStage(in.Dimension())
	return runCached(ctx, x.Cache, stage, in, func(ctx context.Context) (types.DimensionAnalysis, error) {
		text, err := generate(ctx, x.LLM, dimensionPrompt(in), x.Cfg.MaxTokens, x.Cfg.Temperature)
		if err != nil {
			return types.DimensionAnalysis{}, err
		}
		return ParseDimensionAnalysis(stage, text)
	})
}

// ParseDimensionAnalysis decodes and validates one dimension response.
func ParseDimensionAnalysis(stage types.Stage, text string) (types.DimensionAnalysis, error) {
	var out types.DimensionAnalysis
	if err := llmtool.DecodeObject(text, &out, dimensionKeys...); err != nil {
		return types.DimensionAnalysis{}, parseFailure(stage, text, err)
	}
	if err := ValidateDimensionAnalysis(out); err != nil {
		return types.DimensionAnalysis{}, &ParseError{Stage: stage, Reason: err.Error(), Raw: text}
	}
	out.Analysis = strings.TrimSpace(out.Analysis)
	out.Strengths = nonEmpty(out.Strengths)
	out.Weaknesses = nonEmpty(out.Weaknesses)
	out.Opportunities = nonEmpty(out.Opportunities)
	return out, nil
}

// ValidateDimensionAnalysis checks the score range and that a narrative exists.
func ValidateDimensionAnalysis(a types.DimensionAnalysis) error {
	if math.IsNaN(a.Score) || a.Score < MinDimensionScore || a.Score > MaxDimensionScore {
		return fmt.Errorf("score %v outside [%g, %g]", a.Score, MinDimensionScore, MaxDimensionScore)
	}
	if strings.TrimSpace(a.Analysis) == "" {
		return errors.New("analysis is empty")
	}
	return nil
}

func parseFailure(stage types.Stage, raw string, err error) error {
	var missing *llmtool.MissingKeysError
	reason := "invalid json"
	if errors.As(err, &missing) {
		reason = "missing keys"
	}
	return &ParseError{Stage: stage, Reason: reason, Raw: raw, Err: err}
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
