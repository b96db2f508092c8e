package llmclient

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// CountTokens estimates the token count of text when no encoding for the
// model is available. BPE encodings average roughly four characters per
// token for English prose; the estimate never drops below the whitespace
// word count.
func CountTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	chars := (utf8.RuneCountInString(text) + 3) / 4
	if words > chars {
		return words
	}
	return chars
}

// bpeCounter counts tokens with the tiktoken encoding of a model. The
// encoding is loaded on first use. Models without a known encoding, or whose
// ranks cannot be loaded, fall back to CountTokens.
type bpeCounter struct {
	model string
	load  func(model string) (*tiktoken.Tiktoken, error)
	once  sync.Once
	enc   *tiktoken.Tiktoken
}

func newBPECounter(model string) *bpeCounter {
	return &bpeCounter{model: model, load: tiktoken.EncodingForModel}
}

func (b *bpeCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	b.once.Do(func() {
		if enc, err := b.load(b.model); err == nil {
			b.enc = enc
		}
	})
	if b.enc == nil {
		return CountTokens(text)
	}
	// Special tokens are counted as text; Encode panics on disallowed ones.
	return len(b.enc.Encode(text, []string{"all"}, nil))
}

// contextWindows maps model name prefixes to their context size in tokens.
// The longest matching prefix wins.
var contextWindows = []struct {
	prefix string
	tokens int
}{
	{"gpt-4-turbo", 128000},
	{"gpt-4o", 128000},
	{"gpt-4.1", 1047576},
	{"gpt-4-32k", 32768},
	{"gpt-4", 8192},
	{"gpt-3.5-turbo", 16385},
	{"o1", 200000},
	{"o3", 200000},
	{"gemini-1.5", 1048576},
	{"gemini-2", 1048576},
}

// ContextWindow returns the known context size for model, or fallback.
func ContextWindow(model string, fallback int) int {
	best, bestLen := fallback, 0
	for _, w := range contextWindows {
		if strings.HasPrefix(model, w.prefix) && len(w.prefix) > bestLen {
			best, bestLen = w.tokens, len(w.prefix)
		}
	}
	return best
}
