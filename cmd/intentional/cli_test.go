package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentional/internal/types"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("INTENTIONAL_CONFIG", "")
	t.Setenv("LOG_LEVEL", "error")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyze_Fake(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submission.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"context": {"product_description": "Usage analytics for mobile games"},
		"deep_inputs": {"efficient": {"conversion_strategy": "Paywall after 10k events"}}
	}`), 0o600))

	out, err := run(t, "", "analyze", "--fake", path)
	require.NoError(t, err)
	var report types.OverallReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.GreaterOrEqual(t, report.Score, 1.0)
	assert.NotEmpty(t, report.RecommendedModel)

	out, err = run(t, `{"context": {"product_description": "x"}, "deep_inputs": {"polished": {"user_experience": "clean"}}}`, "analyze", "--fake", "--html", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
}

func TestAnalyze_InvalidSubmission(t *testing.T) {
	_, err := run(t, `{"context": {}}`, "analyze", "--fake", "-")
	assert.ErrorContains(t, err, "context.product_description")
}

func TestQuiz(t *testing.T) {
	out, err := run(t, `{"answers": [{"question_id": "time_to_value", "answer": "Immediately (under 5 minutes)"}]}`, "quiz", "-")
	require.NoError(t, err)
	var result types.LegacyResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.GreaterOrEqual(t, len(result.Analysis.KeyFindings), 3)

	_, err = run(t, `{"answers": []}`, "quiz", "-")
	assert.Error(t, err)
}

func TestQuestions(t *testing.T) {
	out, err := run(t, "", "questions")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "current_free_model"`)
}
