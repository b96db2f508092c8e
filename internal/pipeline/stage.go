package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"intentional/internal/cache"
	"intentional/internal/llm"
	llmclient "intentional/internal/llm/client"
	"intentional/internal/llmtool"
	"intentional/internal/types"
)

// derivedInput is everything a derived stage sees, and its cache key.
type derivedInput struct {
	Context  types.AnalysisContext `json:"context"`
	Analyses types.DimensionSet    `json:"analyses"`
}

// cached is the cache a stage reads and writes. A nil Store disables
// caching; TTL zero uses the store's default.
type cached struct {
	Store cache.Store
	TTL   time.Duration
}

// runCached returns the stored result for (stage, key) or computes and
// stores it. Only successful results are stored; entries that no longer
// decode are recomputed.
func runCached[T any](ctx context.Context, c cached, stage types.Stage, key any, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	fp, err := cache.Fingerprint(string(stage), key)
	if err != nil {
		return zero, stageError(stage, err)
	}
	if c.Store != nil {
		if raw, ok := c.Store.Get(fp); ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				return v, nil
			}
		}
	}
	v, err := compute(llm.WithStage(ctx, string(stage)))
	if err != nil {
		return zero, stageError(stage, err)
	}
	if c.Store != nil {
		if raw, err := json.Marshal(v); err == nil {
			c.Store.Put(fp, raw, c.TTL)
		}
	}
	return v, nil
}

// generate renders spec and performs one (middleware-wrapped) call.
func generate(ctx context.Context, client llm.LLMClient, spec llmtool.StructuredPromptSpec, maxTokens int, temperature float64) (string, error) {
	msgs, err := llmtool.BuildMessages(spec)
	if err != nil {
		return "", err
	}
	return client.Generate(ctx, llmclient.Request{
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
}
