package llmtool

import (
	"bytes"
	"fmt"
	"strings"

	llmclient "intentional/internal/llm/client"
)

// PromptField describes a single output field in a simple schema.
type PromptField struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// PromptInput is one labelled value rendered under [INPUT] as "Label: Value".
type PromptInput struct {
	Label string
	Value string
}

// PromptSection is an extra titled block, e.g. serialized upstream results.
type PromptSection struct {
	Title string
	Body  string
}

// PromptExample captures an optional input/output example.
type PromptExample struct {
	InputJSON  string
	OutputJSON string
}

// StructuredPromptSpec defines the sections for a structured prompt.
// System becomes the system message; everything else renders into the user
// message.
type StructuredPromptSpec struct {
	System       string
	Purpose      string
	Background   string
	Inputs       []PromptInput
	Sections     []PromptSection
	OutputFields []PromptField
	Constraints  []string
	Rules        []string
	Assumptions  []string
	OutputFormat string
	Language     string
	Examples     []PromptExample
}

// BuildMessages renders spec into a system and a user message.
func BuildMessages(spec StructuredPromptSpec) ([]llmclient.Message, error) {
	if strings.TrimSpace(spec.System) == "" {
		return nil, fmt.Errorf("llmtool: system instruction is empty")
	}
	user, err := RenderPrompt(spec)
	if err != nil {
		return nil, err
	}
	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: strings.TrimSpace(spec.System)},
		{Role: llmclient.RoleUser, Content: user},
	}, nil
}

// RenderPrompt renders the user-facing part of spec.
func RenderPrompt(spec StructuredPromptSpec) (string, error) {
	if strings.TrimSpace(spec.Purpose) == "" {
		return "", fmt.Errorf("llmtool: purpose is empty")
	}
	if len(spec.OutputFields) == 0 && strings.TrimSpace(spec.OutputFormat) == "" {
		return "", fmt.Errorf("llmtool: output fields and output format are empty")
	}

	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", spec.Purpose)
	writeSection(&buf, "BACKGROUND", spec.Background)
	writeSection(&buf, "INPUT", formatInputs(spec.Inputs))
	for _, s := range spec.Sections {
		writeSection(&buf, strings.ToUpper(strings.TrimSpace(s.Title)), s.Body)
	}
	writeSection(&buf, "OUTPUT", formatFields(spec.OutputFields))
	writeSection(&buf, "CONSTRAINTS", formatList(spec.Constraints))
	writeSection(&buf, "RULES", formatList(spec.Rules))
	writeSection(&buf, "ASSUMPTIONS", formatList(spec.Assumptions))
	writeSection(&buf, "OUTPUT_FORMAT", spec.OutputFormat)
	writeSection(&buf, "LANGUAGE", spec.Language)
	if len(spec.Examples) > 0 {
		writeSection(&buf, "EXAMPLES", formatExamples(spec.Examples))
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

func formatInputs(inputs []PromptInput) string {
	if len(inputs) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, in := range inputs {
		fmt.Fprintf(&buf, "%s: %s\n", in.Label, in.Value)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatFields(fields []PromptField) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		req := "optional"
		if f.Required {
			req = "required"
		}
		if f.Description != "" {
			fmt.Fprintf(&buf, "- %s (%s, %s): %s\n", name, f.Type, req, f.Description)
		} else {
			fmt.Fprintf(&buf, "- %s (%s, %s)\n", name, f.Type, req)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatExamples(examples []PromptExample) string {
	var buf strings.Builder
	for i, ex := range examples {
		fmt.Fprintf(&buf, "Example %d:\n", i+1)
		if strings.TrimSpace(ex.InputJSON) != "" {
			buf.WriteString("INPUT:\n")
			buf.WriteString(strings.TrimRight(ex.InputJSON, "\n"))
			buf.WriteString("\n")
		}
		if strings.TrimSpace(ex.OutputJSON) != "" {
			buf.WriteString("OUTPUT:\n")
			buf.WriteString(strings.TrimRight(ex.OutputJSON, "\n"))
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" || title == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
