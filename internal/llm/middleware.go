package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	llmclient "intentional/internal/llm/client"
)

type LLMClient = llmclient.LLMClient

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (retries, logging, budgeting).
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// NewGenerationClient layers the advisory token budget, the retry policy
// and per-attempt logging around provider.
func NewGenerationClient(provider LLMClient, policy RetryPolicy, logger *zap.Logger, opts ...RetryOption) LLMClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Wrap(provider,
		TokenBudget(logger),
		Retry(policy, opts...),
		WithLogging(logger),
	)
}

// passthrough forwards the non-generation methods of LLMClient.
type passthrough struct{ next LLMClient }

func (p passthrough) Name() string                { return p.next.Name() }
func (p passthrough) Close() error                { return p.next.Close() }
func (p passthrough) CountTokens(text string) int { return p.next.CountTokens(text) }
func (p passthrough) TokenCapacity() int          { return p.next.TokenCapacity() }

// -------- Logging --------

// WithLogging logs every call with its stage, provider, size and latency.
// Failures are logged at warn level, successes at debug.
func WithLogging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next LLMClient) LLMClient {
		return &logging{passthrough: passthrough{next}, log: logger}
	}
}

type logging struct {
	passthrough
	log *zap.Logger
}

func (l *logging) Generate(ctx context.Context, req llmclient.Request) (string, error) {
	start := time.Now()
	text, err := l.next.Generate(ctx, req)
	fields := []zap.Field{
		zap.String("stage", StageFrom(ctx)),
		zap.String("provider", l.next.Name()),
		zap.Int("request_bytes", len(req.Text())),
		zap.Int("response_bytes", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		l.log.Warn("llm call failed", append(fields, zap.Error(err))...)
		return text, err
	}
	l.log.Debug("llm call", fields...)
	return text, nil
}

// -------- Token budget --------

// TokenBudget counts the prompt before each call and warns when prompt plus
// the requested output would exceed the model's context window. The call is
// still issued.
func TokenBudget(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next LLMClient) LLMClient {
		return &budgeted{passthrough: passthrough{next}, log: logger}
	}
}

type budgeted struct {
	passthrough
	log *zap.Logger
}

func (b *budgeted) Generate(ctx context.Context, req llmclient.Request) (string, error) {
	if used, ok := WithinBudget(b.next, req); !ok {
		b.log.Warn("prompt exceeds model context window",
			zap.String("stage", StageFrom(ctx)),
			zap.String("provider", b.next.Name()),
			zap.Int("prompt_tokens", used),
			zap.Int("max_tokens", req.MaxTokens),
			zap.Int("capacity", b.next.TokenCapacity()),
		)
	}
	return b.next.Generate(ctx, req)
}

// WithinBudget returns the estimated prompt tokens of req and whether they
// fit next to req.MaxTokens in the client's context window. A client that
// reports no capacity always fits.
func WithinBudget(c LLMClient, req llmclient.Request) (int, bool) {
	used := c.CountTokens(req.Text())
	capacity := c.TokenCapacity()
	if capacity <= 0 {
		return used, true
	}
	return used, used+req.MaxTokens <= capacity
}
