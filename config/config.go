// Package config holds the settings shared by every component. A Config is
// built once by the CLI and passed into constructors.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/lltranslate/budget"
	"github.com/sevigo/lltranslate/llms"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

type Config struct {
	// Inference backend
	Provider     string `yaml:"provider" json:"provider" mapstructure:"provider"`
	ModelName    string `yaml:"model_name" json:"model_name" mapstructure:"model_name"`
	EndpointURL  string `yaml:"endpoint_url" json:"endpoint_url" mapstructure:"endpoint_url"`
	GeminiAPIKey string `yaml:"gemini_api_key" json:"gemini_api_key" mapstructure:"gemini_api_key"`

	// Chunking and pacing; durations are in seconds
	ChunkSize          int      `yaml:"chunk_size" json:"chunk_size" mapstructure:"chunk_size"`
	DelayBetweenChunks float64  `yaml:"delay_between_chunks" json:"delay_between_chunks" mapstructure:"delay_between_chunks"`
	RequestTimeout     float64  `yaml:"request_timeout" json:"request_timeout" mapstructure:"request_timeout"`
	RetryDelay         float64  `yaml:"retry_delay" json:"retry_delay" mapstructure:"retry_delay"`
	MaxRetries         *int     `yaml:"max_retries" json:"max_retries" mapstructure:"max_retries"`
	FileExtensions     []string `yaml:"file_extensions" json:"file_extensions" mapstructure:"file_extensions"`
	Encodings          []string `yaml:"encodings" json:"encodings" mapstructure:"encodings"`
	OutputPrefix       string   `yaml:"output_prefix" json:"output_prefix" mapstructure:"output_prefix"`

	// Token budget
	// A zero MaxContextCeiling is resolved from the model's reported
	// context length, see ResolveCeiling.
	ContextLimit      int     `yaml:"context_limit" json:"context_limit" mapstructure:"context_limit"`
	MaxContextCeiling int     `yaml:"max_context_ceiling" json:"max_context_ceiling" mapstructure:"max_context_ceiling"`
	Tokenizer         string  `yaml:"tokenizer" json:"tokenizer" mapstructure:"tokenizer"`
	CharsPerToken     float64 `yaml:"chars_per_token" json:"chars_per_token" mapstructure:"chars_per_token"`
	OutputTokensRatio float64 `yaml:"output_tokens_ratio" json:"output_tokens_ratio" mapstructure:"output_tokens_ratio"`
	ContextMargin     int     `yaml:"context_margin" json:"context_margin" mapstructure:"context_margin"`
	SafetyFactor      float64 `yaml:"safety_factor" json:"safety_factor" mapstructure:"safety_factor"`

	// Decoding configuration, sent unchanged with each request
	Temperature   float64 `yaml:"temperature" json:"temperature" mapstructure:"temperature"`
	TopP          float64 `yaml:"top_p" json:"top_p" mapstructure:"top_p"`
	MaxTokens     int     `yaml:"max_tokens" json:"max_tokens" mapstructure:"max_tokens"`
	NumCtx        int     `yaml:"num_ctx" json:"num_ctx" mapstructure:"num_ctx"`
	RepeatPenalty float64 `yaml:"repeat_penalty" json:"repeat_penalty" mapstructure:"repeat_penalty"`
	TopK          int     `yaml:"top_k" json:"top_k" mapstructure:"top_k"`

	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
}

// Default returns the settings of a local typhoon-translate setup.
func Default() *Config {
	c := defaults()
	c.applyProviderDefaults()
	return c
}

// DefaultModel returns the model used by provider when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderGemini {
		return "gemini-2.5-flash"
	}
	return "scb10x/typhoon-translate-4b"
}

// DefaultEndpoint returns the server address used by provider when none is
// configured. Hosted providers have none.
func DefaultEndpoint(provider string) string {
	if provider == ProviderOllama {
		return "http://localhost:11434"
	}
	return ""
}

// defaults holds every setting that does not depend on the provider. Files
// and overrides are decoded on top of it, so a key that is present keeps its
// value even when it is zero.
func defaults() *Config {
	maxRetries := 1
	return &Config{
		Provider:           ProviderOllama,
		ChunkSize:          2000,
		DelayBetweenChunks: 1,
		RequestTimeout:     300,
		RetryDelay:         5,
		MaxRetries:         &maxRetries,
		FileExtensions:     []string{".txt", ".md"},
		Encodings:          []string{"utf-8", "windows-1252", "iso-8859-1"},
		OutputPrefix:       "translated_",
		ContextLimit:       budget.DefaultContextLimit,
		Tokenizer:          "tiktoken",
		CharsPerToken:      4,
		OutputTokensRatio:  budget.DefaultOutputRatio,
		ContextMargin:      budget.DefaultContextMargin,
		SafetyFactor:       budget.DefaultSafetyFactor,
		Temperature:        0.2,
		TopP:               0.85,
		MaxTokens:          6000,
		NumCtx:             16384,
		RepeatPenalty:      1.1,
		TopK:               40,
		LogLevel:           "info",
	}
}

// fillRequired restores the defaults of settings whose empty value is never
// meaningful, such as an explicit null or an empty list.
func (c *Config) fillRequired() {
	d := defaults()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.MaxRetries == nil {
		c.MaxRetries = d.MaxRetries
	}
	if len(c.FileExtensions) == 0 {
		c.FileExtensions = d.FileExtensions
	}
	if len(c.Encodings) == 0 {
		c.Encodings = d.Encodings
	}
	if c.Tokenizer == "" {
		c.Tokenizer = d.Tokenizer
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	c.applyProviderDefaults()
}

func (c *Config) applyProviderDefaults() {
	if c.ModelName == "" {
		c.ModelName = DefaultModel(c.Provider)
	}
	if c.EndpointURL == "" {
		c.EndpointURL = DefaultEndpoint(c.Provider)
	}
}

// LoadFile reads a YAML or JSON file. Keys missing from the file take their
// defaults; keys that are present keep their value, including zero.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	cfg.fillRequired()
	return cfg, nil
}

// SaveFile writes the configuration as YAML or JSON depending on the
// extension of path.
func (c *Config) SaveFile(path string) error {
	var data []byte
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Provider != ProviderOllama && c.Provider != ProviderGemini {
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}
	if c.ModelName == "" {
		errs = append(errs, errors.New("model_name is required"))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize))
	}
	if c.ContextLimit <= 0 {
		errs = append(errs, fmt.Errorf("context_limit must be positive, got %d", c.ContextLimit))
	}
	if c.MaxContextCeiling < 0 {
		errs = append(errs, fmt.Errorf("max_context_ceiling must not be negative, got %d", c.MaxContextCeiling))
	}
	if c.MaxContextCeiling > 0 && c.MaxContextCeiling < c.ContextLimit {
		errs = append(errs, fmt.Errorf("max_context_ceiling (%d) is below context_limit (%d)", c.MaxContextCeiling, c.ContextLimit))
	}
	if c.DelayBetweenChunks < 0 || c.RetryDelay < 0 || c.RequestTimeout < 0 {
		errs = append(errs, errors.New("delays and timeouts must not be negative"))
	}
	if c.MaxRetries != nil && *c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries must not be negative, got %d", *c.MaxRetries))
	}
	if c.SafetyFactor <= 0 || c.SafetyFactor >= 1 {
		errs = append(errs, fmt.Errorf("safety_factor must be between 0 and 1, got %g", c.SafetyFactor))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Decoding returns the decoding configuration for translation requests.
func (c *Config) Decoding() llms.CallOptions {
	return llms.CallOptions{
		Model:         c.ModelName,
		Temperature:   llms.Ptr(c.Temperature),
		TopP:          llms.Ptr(c.TopP),
		MaxTokens:     c.MaxTokens,
		NumCtx:        c.NumCtx,
		RepeatPenalty: llms.Ptr(c.RepeatPenalty),
		TopK:          llms.Ptr(c.TopK),
	}
}

func (c *Config) Limits() budget.Limits {
	return budget.Limits{ContextLimit: c.ContextLimit, MaxCeiling: c.MaxContextCeiling}
}

// ResolveCeiling fills an unset MaxContextCeiling with the model's context
// length, or with budget.DefaultMaxCeiling when that is unknown. The result
// is never below ContextLimit.
func (c *Config) ResolveCeiling(modelContext int) {
	if c.MaxContextCeiling > 0 {
		return
	}
	c.MaxContextCeiling = modelContext
	if c.MaxContextCeiling <= 0 {
		c.MaxContextCeiling = budget.DefaultMaxCeiling
	}
	c.MaxContextCeiling = max(c.MaxContextCeiling, c.ContextLimit)
}

func (c *Config) Retries() int {
	if c.MaxRetries == nil {
		return 1
	}
	return *c.MaxRetries
}

func (c *Config) Delay() time.Duration {
	return seconds(c.DelayBetweenChunks)
}

func (c *Config) RequestTimeoutDuration() time.Duration {
	return seconds(c.RequestTimeout)
}

func (c *Config) RetryDelayDuration() time.Duration {
	return seconds(c.RetryDelay)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
