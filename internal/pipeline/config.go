package pipeline

import (
	"time"

	"intentional/internal/cache"
)

// Config holds the generation parameters shared by every stage.
type Config struct {
	Temperature float64
	// MaxTokens caps the structured stages (dimensions, findings, model, plan).
	MaxTokens int
	// RecommendationMaxTokens caps the long-form recommendations prose.
	RecommendationMaxTokens int
	ChatMaxTokens           int
	CacheTTL                time.Duration
	// Timeout bounds a whole run; zero means no overall deadline.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Temperature:             0.7,
		MaxTokens:               2000,
		RecommendationMaxTokens: 4000,
		ChatMaxTokens:           1000,
		CacheTTL:                cache.DefaultTTL,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Temperature < 0 {
		c.Temperature = def.Temperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	if c.RecommendationMaxTokens <= 0 {
		c.RecommendationMaxTokens = def.RecommendationMaxTokens
	}
	if c.ChatMaxTokens <= 0 {
		c.ChatMaxTokens = def.ChatMaxTokens
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = def.CacheTTL
	}
	return c
}
