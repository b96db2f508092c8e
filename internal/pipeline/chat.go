package pipeline

import (
	"context"
	"strings"
	"unicode/utf8"

	"intentional/internal/llm"
	llmclient "intentional/internal/llm/client"
	"intentional/internal/types"
	"intentional/internal/util/jsonutil"
)

// ChatContext summarizes a stored analysis for a follow-up question.
type ChatContext struct {
	ProductDescription string   `json:"product_description"`
	TargetAudience     string   `json:"target_audience"`
	BusinessGoals      string   `json:"business_goals"`
	RecommendedModel   string   `json:"recommended_model"`
	OverallScore       any      `json:"overall_score"`
	KeyFindings        []string `json:"key_findings"`
}

// NewChatContext builds the summary from a run's context and report.
// Missing values are reported as NotProvided.
func NewChatContext(ac types.AnalysisContext, r *types.OverallReport) *ChatContext {
	cc := &ChatContext{
		ProductDescription: orNA(ac.ProductDescription),
		TargetAudience:     orNA(ac.TargetAudience),
		BusinessGoals:      orNA(ac.BusinessGoals),
		RecommendedModel:   NotProvided,
		OverallScore:       NotProvided,
		KeyFindings:        []string{},
	}
	if r != nil {
		cc.RecommendedModel = orNA(r.RecommendedModel)
		cc.OverallScore = r.Score
		if len(r.KeyFindings) > 0 {
			cc.KeyFindings = r.KeyFindings
		}
	}
	return cc
}

// ChatResponder answers a free-form question about a strategy. It keeps no
// session state and does not cache.
type ChatResponder struct {
	LLM llm.LLMClient
	Cfg Config
}

func (x *ChatResponder) Respond(ctx context.Context, message string, cc *ChatContext) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", &ValidationError{Field: "message", Reason: "is required"}
	}
	if utf8.RuneCountInString(message) > MaxFieldRunes {
		return "", &ValidationError{Field: "message", Reason: "is too long"}
	}
	summary := []byte("{}")
	if cc != nil {
		raw, err := jsonutil.MarshalIndentNoEscape(cc)
		if err != nil {
			return "", stageError(types.StageChat, err)
		}
		summary = raw
	}
	cfg := x.Cfg.withDefaults()
	user := "User's question: " + message + "\n\n" +
		"Context about their product and free model strategy:\n" + string(summary) + "\n\n" +
		"Provide a helpful, specific, and actionable response that directly addresses their question.\n" +
		"If you don't have enough context to give a specific answer, ask for the necessary information."

	ctx = llm.WithStage(ctx, string(types.StageChat))
	text, err := x.LLM.Generate(ctx, llmclient.Request{
		Messages: []llmclient.Message{
			{Role: llmclient.RoleSystem, Content: systemChat},
			{Role: llmclient.RoleUser, Content: user},
		},
		MaxTokens:   cfg.ChatMaxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return "", stageError(types.StageChat, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", stageError(types.StageChat, llmclient.ErrEmptyResponse)
	}
	return text, nil
}
