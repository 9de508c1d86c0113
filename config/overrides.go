package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "LLTRANSLATE"

// Keys lists every setting that can be overridden.
var Keys = []string{
	"provider", "model_name", "endpoint_url", "gemini_api_key",
	"chunk_size", "delay_between_chunks", "request_timeout", "retry_delay", "max_retries",
	"file_extensions", "encodings", "output_prefix",
	"context_limit", "max_context_ceiling", "tokenizer", "chars_per_token",
	"output_tokens_ratio", "context_margin", "safety_factor",
	"temperature", "top_p", "max_tokens", "num_ctx", "repeat_penalty", "top_k",
	"log_level",
}

// BindEnv maps every key to LLTRANSLATE_<KEY>.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// ApplyOverrides copies the keys that are explicitly set in v (changed
// flags, environment variables, explicit Set calls) onto c. Unset keys keep
// the value from the file or the defaults. When the provider changes, a model
// name or endpoint that was the old provider's default follows the new
// provider unless it is overridden as well.
func (c *Config) ApplyOverrides(v *viper.Viper) error {
	set := viper.New()
	for _, key := range Keys {
		if v.IsSet(key) {
			set.Set(key, v.Get(key))
		}
	}
	if len(set.AllKeys()) == 0 {
		return nil
	}

	previous := c.Provider
	if err := set.Unmarshal(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Provider != previous {
		if !set.IsSet("model_name") && c.ModelName == DefaultModel(previous) {
			c.ModelName = ""
		}
		if !set.IsSet("endpoint_url") && c.EndpointURL == DefaultEndpoint(previous) {
			c.EndpointURL = ""
		}
	}
	c.fillRequired()
	return nil
}
