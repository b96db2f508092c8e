package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"intentional/internal/cache"
	"intentional/internal/gateway/config"
	"intentional/internal/gateway/handler"
	"intentional/internal/gateway/server"
	"intentional/internal/gateway/service/analysis"
	"intentional/internal/llm"
	llmclient "intentional/internal/llm/client"
	"intentional/internal/pipeline"
)

type App struct {
	server   *server.Server
	analysis *analysis.Service
	llm      llm.LLMClient
	stores   *gatewayStores
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := NewGenerationClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	stores, err := initStores(ctx, cfg, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	orch, chat := NewPipeline(cfg, client, logger)
	opts := []analysis.Option{analysis.WithLogger(logger.Named("analysis"))}
	if stores.artifacts != nil {
		opts = append(opts, analysis.WithArtifacts(stores.artifacts))
	}
	svc := analysis.New(orch, chat, stores.tasks, opts...)

	mux := server.NewMux(handler.New(svc, logger.Named("http")), cfg.FrontendURL)
	return &App{
		server:   server.New(cfg.Port, mux, logger),
		analysis: svc,
		llm:      client,
		stores:   stores,
	}, nil
}

// NewGenerationClient builds the configured provider wrapped with retries,
// token budgeting and call logging.
func NewGenerationClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.LLMClient, error) {
	var provider llm.LLMClient
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		c, err := llmclient.NewOpenAIClient(llmclient.OpenAIConfig{
			APIKey:  cfg.LLM.OpenAIKey,
			Model:   cfg.LLM.OpenAIModel,
			BaseURL: cfg.LLM.OpenAIBaseURL,
			Timeout: cfg.LLM.CallTimeout,
		})
		if err != nil {
			return nil, err
		}
		provider = c
	case config.ProviderGemini:
		c, err := llmclient.NewGeminiClient(ctx, llmclient.GeminiConfig{
			APIKey:  cfg.LLM.GeminiKey,
			Model:   cfg.LLM.GeminiModel,
			BaseURL: cfg.LLM.GeminiBaseURL,
		})
		if err != nil {
			return nil, err
		}
		provider = c
	case config.ProviderFake:
		logger.Warn("no LLM credentials configured, using the offline fake client")
		provider = llm.NewFakeClient(0)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}

	policy := llm.DefaultRetryPolicy()
	if cfg.LLM.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.LLM.MaxAttempts
	}
	return llm.NewGenerationClient(provider, policy, logger.Named("llm")), nil
}

// NewPipeline builds the orchestrator and chat responder over client.
func NewPipeline(cfg *config.Config, client llm.LLMClient, logger *zap.Logger) (*pipeline.Orchestrator, *pipeline.ChatResponder) {
	pcfg := pipeline.DefaultConfig()
	pcfg.CacheTTL = cfg.Pipeline.CacheTTL
	pcfg.Timeout = cfg.Pipeline.Timeout
	rc := cache.NewResultCache(cache.CacheConfig{
		MaxEntries: cfg.Pipeline.CacheEntries,
		TTL:        cfg.Pipeline.CacheTTL,
	})
	return pipeline.NewOrchestrator(client, rc, pcfg, logger.Named("pipeline")),
		&pipeline.ChatResponder{LLM: client, Cfg: pcfg}
}

func (a *App) Start() error {
	return a.server.Start()
}

// Shutdown stops the server, then cancels running analyses and closes stores.
func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(
		a.server.Shutdown(ctx),
		a.analysis.Close(ctx),
		a.stores.close(),
		a.llm.Close(),
	)
}
