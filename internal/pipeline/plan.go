package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"intentional/internal/llm"
	"intentional/internal/llmtool"
	"intentional/internal/types"
)

// Plan shape limits.
const (
	MinPhases        = 2
	MaxPhases        = 3
	MinStepsPerPhase = 3
	MaxStepsPerPhase = 5
)

const planFormat = `{
  "phases": {
    "Phase 1": [
      {
        "title": "Step title",
        "description": "Step description",
        "priority": "High/Medium/Low",
        "estimated_effort": "High/Medium/Low",
        "expected_impact": "High/Medium/Low",
        "metrics": ["metric1", "metric2"]
      }
    ]
  },
  "timeline": "Overall timeline description",
  "success_metrics": ["metric1", "metric2"]
}`

// PlanGenerator produces the phased implementation plan.
type PlanGenerator struct {
	LLM   llm.LLMClient
	Cache cached
	Cfg   Config
}

func (x *PlanGenerator) Run(ctx context.Context, in derivedInput) (types.ImplementationPlan, error) {
	return runCached(ctx, x.Cache, types.StagePlan, in, func(ctx context.Context) (types.ImplementationPlan, error) {
		spec, err := derivedPrompt(systemPlanner,
			"Based on the following analyses and context, create a phased implementation plan.", in)
		if err != nil {
			return types.ImplementationPlan{}, err
		}
		spec.Rules = []string{
			fmt.Sprintf("Create %d-%d phases, each containing %d-%d specific steps.", MinPhases, MaxPhases, MinStepsPerPhase, MaxStepsPerPhase),
			`priority, estimated_effort and expected_impact must each be "High", "Medium", or "Low".`,
			"metrics lists the success metrics for the step.",
			"Also include an overall timeline and a list of overall success metrics.",
		}
		spec.OutputFormat = planFormat
		spec = llmtool.ApplyPresets(spec, llmtool.PresetStrictJSON(), llmtool.PresetActionable())

		text, err := generate(ctx, x.LLM, spec, x.Cfg.MaxTokens, x.Cfg.Temperature)
		if err != nil {
			return types.ImplementationPlan{}, err
		}
		return ParsePlan(text)
	})
}

// ParsePlan decodes and validates an implementation plan.
func ParsePlan(text string) (types.ImplementationPlan, error) {
	var out types.ImplementationPlan
	if err := llmtool.DecodeObject(text, &out, "phases", "timeline", "success_metrics"); err != nil {
		return types.ImplementationPlan{}, parseFailure(types.StagePlan, text, err)
	}
	if err := ValidatePlan(out); err != nil {
		return types.ImplementationPlan{}, &ParseError{Stage: types.StagePlan, Reason: err.Error(), Raw: text}
	}
	return out, nil
}

// ValidatePlan enforces the phase and step counts, required step fields and
// the High/Medium/Low enums.
func ValidatePlan(p types.ImplementationPlan) error {
	if n := len(p.Phases); n < MinPhases || n > MaxPhases {
		return fmt.Errorf("plan has %d phases, want %d-%d", n, MinPhases, MaxPhases)
	}
	if strings.TrimSpace(p.Timeline) == "" {
		return fmt.Errorf("timeline is empty")
	}
	names := make([]string, 0, len(p.Phases))
	for name := range p.Phases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		steps := p.Phases[name]
		if n := len(steps); n < MinStepsPerPhase || n > MaxStepsPerPhase {
			return fmt.Errorf("phase %q has %d steps, want %d-%d", name, n, MinStepsPerPhase, MaxStepsPerPhase)
		}
		for i, s := range steps {
			if err := validateStep(s); err != nil {
				return fmt.Errorf("phase %q step %d: %w", name, i+1, err)
			}
		}
	}
	return nil
}

func validateStep(s types.ImplementationStep) error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("title is empty")
	}
	if strings.TrimSpace(s.Description) == "" {
		return fmt.Errorf("description is empty")
	}
	levels := []struct{ field, v string }{
		{"priority", s.Priority},
		{"estimated_effort", s.EstimatedEffort},
		{"expected_impact", s.ExpectedImpact},
	}
	for _, l := range levels {
		switch l.v {
		case types.LevelHigh, types.LevelMedium, types.LevelLow:
		default:
			return fmt.Errorf("%s %q is not High, Medium or Low", l.field, l.v)
		}
	}
	if s.Metrics == nil {
		return fmt.Errorf("metrics is missing")
	}
	return nil
}
