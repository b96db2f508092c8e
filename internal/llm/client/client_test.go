package llmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pkoukk/tiktoken-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens("   "))
	assert.Equal(t, 3, CountTokens("hello world"))
	assert.Equal(t, 3, CountTokens("a b c"))
	assert.Equal(t, 25, CountTokens(strings.Repeat("abcd", 25)))
}

func TestContextWindow_LongestPrefix(t *testing.T) {
	assert.Equal(t, 128000, ContextWindow("gpt-4-turbo-2024-04-09", 1))
	assert.Equal(t, 8192, ContextWindow("gpt-4-0613", 1))
	assert.Equal(t, 32768, ContextWindow("gpt-4-32k", 1))
	assert.Equal(t, 42, ContextWindow("mystery", 42))
}

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 409, 429, 500, 502, 503} {
		assert.True(t, retryableStatus(code), "code %d", code)
	}
	for _, code := range []int{400, 401, 403, 404, 422} {
		assert.False(t, retryableStatus(code), "code %d", code)
	}
}

func TestPermanentError_Unwraps(t *testing.T) {
	base := errors.New("bad request")
	err := fmt.Errorf("stage: %w", NewPermanentError(base))
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsPermanent(base))
	assert.Nil(t, NewPermanentError(nil))
}

func TestRequestText(t *testing.T) {
	req := Request{Messages: []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "usr"}}}
	assert.Equal(t, "sys\nusr\n", req.Text())
}

func TestBPECounter_FallsBackWithoutEncoding(t *testing.T) {
	var loads atomic.Int32
	b := newBPECounter("local-model")
	b.load = func(model string) (*tiktoken.Tiktoken, error) {
		loads.Add(1)
		return nil, fmt.Errorf("no encoding for model %s", model)
	}
	text := "Score the onboarding flow of a whiteboard app."
	assert.Equal(t, CountTokens(text), b.Count(text))
	assert.Equal(t, CountTokens(text), b.Count(text))
	assert.Equal(t, 0, b.Count(""))
	assert.Equal(t, int32(1), loads.Load())
}

func TestOpenAIClient_UnknownModelUsesEstimate(t *testing.T) {
	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", Model: "acme-chat-1"})
	require.NoError(t, err)
	assert.Equal(t, CountTokens("hello world"), c.CountTokens("hello world"))
}

func TestGeminiClient_CountTokens(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":countTokens") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		code := int(status.Load())
		w.WriteHeader(code)
		if code != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"totalTokens": 42}`))
	}))
	t.Cleanup(srv.Close)

	g, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	text := "Describe the activation moment."
	assert.Equal(t, 42, g.CountTokens(text))

	status.Store(http.StatusBadRequest)
	assert.Equal(t, CountTokens(text), g.CountTokens(text))
}
