package pipeline

import (
	"strings"

	"intentional/internal/llmtool"
	"intentional/internal/types"
	"intentional/internal/util/jsonutil"
)

// NotProvided is substituted for every empty input before it reaches a
// prompt. Prompts instruct the model to treat it as missing information.
const NotProvided = "N/A"

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotProvided
	}
	return s
}

const systemStrategist = `You are an expert product strategist specializing in product-led growth and free model strategies.
Your task is to analyze the provided information about a product and its free model strategy using the DEEP framework:

- Desirable: How compelling is the free offering to users?
- Effective: How well does it solve real user problems?
- Efficient: How sustainable is it for the business?
- Polished: How refined is the user experience?

Provide a comprehensive analysis with specific, actionable recommendations.`

const systemPlanner = `You are creating an implementation plan for improving a free model strategy.
Based on the analysis provided, create a phased approach with specific, actionable steps.
For each step, include title, description, priority, estimated effort, expected impact, and success metrics.`

const systemChat = `You are an AI assistant specializing in product-led growth and free model strategies.
You have access to the analysis and context of a product's free model strategy.
Provide helpful, specific, and actionable advice based on the user's question and the available context.`

// dimensionFocus is what each analyzer evaluates.
var dimensionFocus = map[types.Dimension]string{
	types.Desirable: "how compelling the free offering is to users, evaluating the value proposition, alignment with user needs, and competitive differentiation",
	types.Effective: "how well the free offering solves real user problems, evaluating problem-solution fit, success metrics, and friction points in the user experience",
	types.Efficient: "how sustainable the free offering is for the business, evaluating acquisition costs, conversion strategy, and resource allocation",
	types.Polished:  "how refined the user experience is, evaluating the overall UX, onboarding process, and feedback mechanisms",
}

func dimensionSystem(dim types.Dimension) string {
	return "You are analyzing the '" + dim.Title() + "' dimension of a free model strategy.\n" +
		"Focus on " + dimensionFocus[dim] + ".\n" +
		"Identify strengths, weaknesses, and opportunities for improvement."
}

var dimensionOutput = []llmtool.PromptField{
	{Name: "score", Type: "number", Required: true, Description: "1-10, may be fractional"},
	{Name: "analysis", Type: "string", Required: true, Description: "detailed analysis text"},
	{Name: "strengths", Type: "string[]", Required: true},
	{Name: "weaknesses", Type: "string[]", Required: true},
	{Name: "opportunities", Type: "string[]", Required: true},
}

func dimensionPrompt(in types.DimensionInputs) llmtool.StructuredPromptSpec {
	dim := in.Dimension()
	fields := in.Fields()
	inputs := make([]llmtool.PromptInput, 0, len(fields))
	for _, f := range fields {
		inputs = append(inputs, llmtool.PromptInput{Label: f.Label, Value: orNA(f.Value)})
	}
	spec := llmtool.StructuredPromptSpec{
		System:       dimensionSystem(dim),
		Purpose:      "Analyze the '" + dim.Title() + "' dimension of this free model strategy.",
		Inputs:       inputs,
		OutputFields: dimensionOutput,
		Rules: []string{
			"Provide a score from 1-10, detailed analysis text, and lists of specific strengths, weaknesses, and opportunities.",
		},
		OutputFormat: `{"score": 7.5, "analysis": "...", "strengths": ["..."], "weaknesses": ["..."], "opportunities": ["..."]}`,
	}
	return llmtool.ApplyPresets(spec, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent(), llmtool.PresetCautious())
}

// derivedPrompt is the shared shape of the four derived stages: the run
// context as labelled inputs and the four analyses as a JSON section.
func derivedPrompt(system, purpose string, in derivedInput) (llmtool.StructuredPromptSpec, error) {
	var analyses strings.Builder
	for _, d := range types.Dimensions {
		raw, err := jsonutil.MarshalNoEscape(in.Analyses.Get(d))
		if err != nil {
			return llmtool.StructuredPromptSpec{}, err
		}
		analyses.WriteString(d.Title())
		analyses.WriteString(": ")
		analyses.Write(raw)
		analyses.WriteString("\n")
	}
	return llmtool.StructuredPromptSpec{
		System:  system,
		Purpose: purpose,
		Inputs: []llmtool.PromptInput{
			{Label: "Product Description", Value: orNA(in.Context.ProductDescription)},
			{Label: "Target Audience", Value: orNA(in.Context.TargetAudience)},
			{Label: "Business Goals", Value: orNA(in.Context.BusinessGoals)},
		},
		Sections: []llmtool.PromptSection{{Title: "Dimensional Analyses", Body: analyses.String()}},
	}, nil
}

func modelOptions() string {
	var b strings.Builder
	for _, m := range types.ModelTypes {
		b.WriteString(`- "`)
		b.WriteString(m.Name)
		b.WriteString(`": `)
		b.WriteString(m.Description)
		b.WriteString("\n")
	}
	return b.String()
}
