package llm

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	llmclient "intentional/internal/llm/client"
)

// RetryPolicy describes how transient generation failures are retried.
// Backoff grows as BaseDelay*2^n, is capped at MaxDelay and, with Jitter,
// is drawn uniformly from [BaseDelay, cap].
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultRetryPolicy allows six attempts with jittered waits between one
// second and one minute.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 6,
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
		Jitter:      true,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	return p
}

// Backoff returns the wait after the failed attempt with zero-based index n.
// rnd must return values in [0,1); it is ignored without Jitter.
func (p RetryPolicy) Backoff(n int, rnd func() float64) time.Duration {
	p = p.normalized()
	ceiling := p.MaxDelay
	if n < 32 {
		if d := p.BaseDelay << n; d > 0 && d < ceiling {
			ceiling = d
		}
	}
	if !p.Jitter || rnd == nil {
		return ceiling
	}
	span := ceiling - p.BaseDelay
	return p.BaseDelay + time.Duration(rnd()*float64(span))
}

// RetryExhaustedError is returned once every attempt of a policy has failed
// with a retryable error.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// RetryOption customises the retry middleware, mainly for tests.
type RetryOption func(*retrying)

// WithSleep replaces the context-aware sleep between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) RetryOption {
	return func(r *retrying) { r.sleep = sleep }
}

// WithRand replaces the jitter source.
func WithRand(rnd func() float64) RetryOption {
	return func(r *retrying) { r.rand = rnd }
}

// OnRetry registers a callback invoked before each wait.
func OnRetry(fn func(attempt int, err error, wait time.Duration)) RetryOption {
	return func(r *retrying) { r.onRetry = fn }
}

// Retry retries Generate according to policy. Permanent provider errors and
// context cancellation stop immediately.
func Retry(policy RetryPolicy, opts ...RetryOption) Middleware {
	policy = policy.normalized()
	return func(next LLMClient) LLMClient {
		r := &retrying{
			passthrough: passthrough{next},
			policy:      policy,
			sleep:       sleepCtx,
			rand:        rand.Float64,
		}
		for _, o := range opts {
			o(r)
		}
		return r
	}
}

type retrying struct {
	passthrough
	policy  RetryPolicy
	sleep   func(ctx context.Context, d time.Duration) error
	rand    func() float64
	onRetry func(attempt int, err error, wait time.Duration)
}

func (r *retrying) Generate(ctx context.Context, req llmclient.Request) (string, error) {
	var last error
	for i := 0; i < r.policy.MaxAttempts; i++ {
		text, err := r.next.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		if llmclient.IsPermanent(err) {
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		last = err
		if i == r.policy.MaxAttempts-1 {
			break
		}
		wait := r.policy.Backoff(i, r.rand)
		if r.onRetry != nil {
			r.onRetry(i+1, err, wait)
		}
		if err := r.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", &RetryExhaustedError{Attempts: r.policy.MaxAttempts, Last: last}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
