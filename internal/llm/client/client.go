package llmclient

import (
	"context"
	"errors"
)

// Message roles accepted by providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a generation request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single text-generation call.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Text concatenates all message contents; used for token estimation.
func (r Request) Text() string {
	n := 0
	for _, m := range r.Messages {
		n += len(m.Content) + 1
	}
	buf := make([]byte, 0, n)
	for _, m := range r.Messages {
		buf = append(buf, m.Content...)
		buf = append(buf, '\n')
	}
	return string(buf)
}

// LLMClient defines the interface for text-generation providers.
// Implementations only perform the call; retries, logging and budgeting
// are layered on as middleware.
type LLMClient interface {
	Name() string
	Close() error
	CountTokens(text string) int
	TokenCapacity() int
	Generate(ctx context.Context, req Request) (string, error)
}

var ErrEmptyResponse = errors.New("empty response from LLM")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var pErr *PermanentError
	return errors.As(err, &pErr)
}

// retryableStatus reports whether an HTTP status from a provider is worth retrying.
func retryableStatus(code int) bool {
	switch {
	case code == 408, code == 409, code == 429:
		return true
	case code >= 500:
		return true
	case code >= 400:
		return false
	default:
		return true
	}
}
