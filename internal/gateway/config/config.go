package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "INTENTIONAL_CONFIG"

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderFake   = "fake"
)

type Config struct {
	Port        string         `yaml:"port"`
	Env         string         `yaml:"env"`
	FrontendURL string         `yaml:"frontend_url"`
	Log         LogConfig      `yaml:"log"`
	LLM         LLMConfig      `yaml:"llm"`
	Pipeline    PipelineConfig `yaml:"pipeline"`
	Store       StoreConfig    `yaml:"store"`
	Artifact    ArtifactConfig `yaml:"artifact"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type LLMConfig struct {
	Provider      string        `yaml:"provider"`
	OpenAIKey     string        `yaml:"openai_api_key"`
	OpenAIModel   string        `yaml:"openai_model"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	GeminiKey     string        `yaml:"gemini_api_key"`
	GeminiModel   string        `yaml:"gemini_model"`
	GeminiBaseURL string        `yaml:"gemini_base_url"`
	MaxAttempts   int           `yaml:"max_attempts"`
	CallTimeout   time.Duration `yaml:"call_timeout"`
}

type PipelineConfig struct {
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	CacheEntries int           `yaml:"cache_entries"`
	Timeout      time.Duration `yaml:"timeout"`
}

// StoreConfig selects the task store: postgres when DatabaseURL is set,
// sqlite when SQLitePath is set, memory otherwise.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
}

type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// CanUseS3 reports whether the report copy can go to an S3 bucket.
func (a ArtifactConfig) CanUseS3() bool {
	return a.Enabled && a.Endpoint != "" && a.AccessKey != "" && a.SecretKey != "" && a.Bucket != ""
}

func Default() Config {
	return Config{
		Port:        ":8081",
		Env:         "local",
		FrontendURL: "http://localhost:3000",
		Log:         LogConfig{Level: "info"},
		LLM: LLMConfig{
			OpenAIModel: "gpt-4-turbo",
			GeminiModel: "gemini-2.0-flash",
			MaxAttempts: 6,
			CallTimeout: 2 * time.Minute,
		},
		Pipeline: PipelineConfig{
			CacheTTL:     time.Hour,
			CacheEntries: 4096,
			Timeout:      10 * time.Minute,
		},
		Artifact: ArtifactConfig{
			Region: "us-east-1",
			Bucket: "intentional-reports",
		},
	}
}

// Load reads .env, the optional YAML file named by INTENTIONAL_CONFIG and
// then environment overrides, in that order.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(os.Getenv)
}

// LoadWith is Load with an explicit environment lookup.
func LoadWith(getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(getenv(configPathEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.Port = normalizePort(cfg.Port)
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = inferProvider(cfg.LLM)
	}
	switch cfg.LLM.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderFake:
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLM.Provider)
	}
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }
	setString := func(dst *string, keys ...string) {
		if v := firstNonEmpty(mapEnv(env, keys)...); v != "" {
			*dst = v
		}
	}
	setString(&c.Port, "PORT")
	setString(&c.Env, "APP_ENV")
	setString(&c.FrontendURL, "FRONTEND_URL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.LLM.OpenAIModel, "OPENAI_MODEL")
	setString(&c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.GeminiKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	setString(&c.LLM.GeminiModel, "GEMINI_MODEL")
	setString(&c.LLM.GeminiBaseURL, "GEMINI_BASE_URL")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")
	setString(&c.Store.SQLitePath, "SQLITE_PATH")
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"CACHE_TTL", &c.Pipeline.CacheTTL},
		{"PIPELINE_TIMEOUT", &c.Pipeline.Timeout},
		{"LLM_CALL_TIMEOUT", &c.LLM.CallTimeout},
	} {
		if raw := env(d.key); raw != "" {
			v, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", d.key, err)
			}
			*d.dst = v
		}
	}
	if raw := env("LLM_MAX_ATTEMPTS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("LLM_MAX_ATTEMPTS: %w", err)
		}
		c.LLM.MaxAttempts = n
	}

	c.applyArtifactEnv(env)
	return nil
}

func (c *Config) applyArtifactEnv(env func(string) string) {
	local := strings.EqualFold(c.Env, "local")
	a := &c.Artifact
	if local {
		a.Endpoint = firstNonEmpty(env("ARTIFACT_MINIO_ENDPOINT"), a.Endpoint)
	} else {
		a.Endpoint = firstNonEmpty(env("ARTIFACT_S3_ENDPOINT"), a.Endpoint)
	}
	a.Region = firstNonEmpty(env("ARTIFACT_S3_REGION"), a.Region)
	a.AccessKey = firstNonEmpty(env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"), a.AccessKey)
	a.SecretKey = firstNonEmpty(env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"), a.SecretKey)
	a.Bucket = firstNonEmpty(env("ARTIFACT_S3_BUCKET"), a.Bucket)
	if raw := env("ARTIFACT_S3_USE_SSL"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			a.UseSSL = v
		}
	} else if !local && a.Endpoint != "" && !a.Enabled {
		a.UseSSL = true
	}
	if a.Endpoint != "" {
		a.Enabled = true
	}
}

func inferProvider(c LLMConfig) string {
	switch {
	case c.OpenAIKey != "":
		return ProviderOpenAI
	case c.GeminiKey != "":
		return ProviderGemini
	default:
		return ProviderFake
	}
}

func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func mapEnv(env func(string) string, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = env(k)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
