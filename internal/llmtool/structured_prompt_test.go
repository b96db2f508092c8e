package llmtool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmclient "intentional/internal/llm/client"
)

func TestBuildMessages_RendersSections(t *testing.T) {
	spec := StructuredPromptSpec{
		System:       "You are a strategist.",
		Purpose:      "Score the dimension.",
		Background:   "DEEP rubric.",
		Inputs:       []PromptInput{{Label: "Value Proposition", Value: "Fast"}, {Label: "User Needs", Value: "N/A"}},
		Sections:     []PromptSection{{Title: "Dimensional Analyses", Body: `{"score":5}`}},
		OutputFormat: "JSON only.",
		Language:     "English",
		OutputFields: []PromptField{
			{Name: "score", Type: "number", Required: true, Description: "1-10."},
			{Name: "notes", Type: "[]string"},
		},
		Constraints: []string{"No markdown."},
		Rules:       []string{"Be concise."},
		Assumptions: []string{"If unsure, say so."},
		Examples:    []PromptExample{{InputJSON: `{"a":1}`, OutputJSON: `{"score":5}`}},
	}

	msgs, err := BuildMessages(spec)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, llmclient.RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are a strategist.", msgs[0].Content)
	assert.Equal(t, llmclient.RoleUser, msgs[1].Role)

	out := msgs[1].Content
	for _, sec := range []string{
		"[PURPOSE]", "[BACKGROUND]", "[INPUT]", "[DIMENSIONAL ANALYSES]", "[OUTPUT]",
		"[CONSTRAINTS]", "[RULES]", "[ASSUMPTIONS]", "[OUTPUT_FORMAT]", "[LANGUAGE]", "[EXAMPLES]",
	} {
		assert.Contains(t, out, sec)
	}
	assert.Contains(t, out, "Value Proposition: Fast\nUser Needs: N/A")
	assert.Contains(t, out, "- score (number, required): 1-10.")
	assert.Contains(t, out, "- notes ([]string, optional)")
	assert.Less(t, strings.Index(out, "[INPUT]"), strings.Index(out, "[OUTPUT]"))
}

func TestBuildMessages_RequiresSystem(t *testing.T) {
	_, err := BuildMessages(StructuredPromptSpec{Purpose: "x", OutputFormat: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "system")
}

func TestRenderPrompt_RequiresPurpose(t *testing.T) {
	_, err := RenderPrompt(StructuredPromptSpec{OutputFields: []PromptField{{Name: "a", Type: "string"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purpose")
}

func TestRenderPrompt_RequiresOutputShape(t *testing.T) {
	_, err := RenderPrompt(StructuredPromptSpec{Purpose: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output")
}

func TestRenderPrompt_SkipsEmptySections(t *testing.T) {
	out, err := RenderPrompt(StructuredPromptSpec{Purpose: "x", OutputFormat: "markdown"})
	require.NoError(t, err)
	assert.NotContains(t, out, "[BACKGROUND]")
	assert.NotContains(t, out, "[INPUT]")
	assert.NotContains(t, out, "[EXAMPLES]")
}

func TestApplyPresets_PrependsInOrder(t *testing.T) {
	spec := StructuredPromptSpec{Constraints: []string{"own"}, Rules: []string{"own rule"}}
	got := ApplyPresets(spec, PresetStrictJSON(), PresetCautious())
	require.Len(t, got.Constraints, 4)
	assert.Equal(t, "Return strict JSON only.", got.Constraints[0])
	assert.Equal(t, "own", got.Constraints[3])
	assert.Equal(t, []string{PresetCautious().Rules[0], "own rule"}, got.Rules)
}
