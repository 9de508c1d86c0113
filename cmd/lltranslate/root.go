package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/lltranslate/config"
)

// app is the state shared by all subcommands once flags are parsed.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

// persistentFlags maps config keys to the root flags that override them.
var persistentFlags = map[string]string{
	"provider":            "provider",
	"model_name":          "model",
	"endpoint_url":        "endpoint",
	"chunk_size":          "chunk-size",
	"tokenizer":           "tokenizer",
	"context_limit":       "context-limit",
	"max_context_ceiling": "max-context-ceiling",
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	var (
		configFile string
		debug      bool
	)

	root := &cobra.Command{
		Use:   "lltranslate",
		Short: "Translate long documents into Thai with an LLM",
		Long: `lltranslate splits long English documents into paragraph-aligned chunks,
checks each chunk against the model's context window and translates the
chunks one at a time into Thai. Chunks that fail to translate are kept in
the original language so the output document stays complete.

Settings are read from a YAML or JSON config file, then LLTRANSLATE_*
environment variables, then flags.

Example:
  lltranslate translate chapter1.txt
  lltranslate batch ./novel ./novel_th --ext .txt,.md
  lltranslate tokens chapter1.txt --chunks
  lltranslate optimize --chunk-size 3000`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, configFile, debug)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./lltranslate.yaml or <user config dir>/lltranslate/lltranslate.yaml)")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.String("provider", "", "inference provider: ollama or gemini")
	flags.StringP("model", "m", "", "model name")
	flags.String("endpoint", "", "Ollama server URL")
	flags.Int("chunk-size", 0, "maximum characters per chunk")
	flags.String("tokenizer", "", "token counter: tiktoken, ollama or heuristic")
	flags.Int("context-limit", 0, "context window the requests are sized for")
	flags.Int("max-context-ceiling", 0, "largest context window the model supports (0 asks the model)")
	for key, name := range persistentFlags {
		cobra.CheckErr(a.v.BindPFlag(key, flags.Lookup(name)))
	}

	root.AddCommand(
		newTranslateCmd(a),
		newBatchCmd(a),
		newTokensCmd(a),
		newOptimizeCmd(a),
		newBenchCmd(a),
		newModelCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, configFile string, debug bool) error {
	a.out = cmd.OutOrStdout()

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	if err := config.BindEnv(a.v); err != nil {
		return err
	}
	if err := cfg.ApplyOverrides(a.v); err != nil {
		return err
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	slog.SetDefault(a.logger)

	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// loadConfig reads path, or the first lltranslate config file found in the
// working directory or the user config directory. Without any file the
// defaults are used. Files are always decoded by config.LoadFile so the
// settings viper holds are only flags and environment variables.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		finder := viper.New()
		finder.SetConfigName("lltranslate")
		finder.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			finder.AddConfigPath(filepath.Join(dir, "lltranslate"))
		}
		if err := finder.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return config.Default(), nil
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		path = finder.ConfigFileUsed()
	}
	return config.LoadFile(path)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
