// Package tokenizer provides token counters used to size prompts against a
// model's context window. Counts are approximate: none of the counters is
// guaranteed to match the tokenizer of the model that serves the request.
package tokenizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/lltranslate/llms"
)

// Counter counts the tokens in a piece of text.
type Counter interface {
	CountTokens(ctx context.Context, text string) (int, error)
	// Name identifies the counting method in reports.
	Name() string
}

// Kind selects a counter implementation.
type Kind string

const (
	KindTiktoken  Kind = "tiktoken"
	KindOllama    Kind = "ollama"
	KindHeuristic Kind = "heuristic"
)

var (
	ErrUnknownKind    = errors.New("tokenizer: unknown kind")
	ErrNoModelCounter = errors.New("tokenizer: model token counter is not configured")
	ErrUnavailable    = errors.New("tokenizer: tokenizer is unavailable")
)

type options struct {
	charsPerToken float64
	encoding      string
	model         llms.Tokenizer
	logger        *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithCharsPerToken sets the ratio used by the heuristic counter.
func WithCharsPerToken(ratio float64) Option {
	return func(o *options) {
		if ratio > 0 {
			o.charsPerToken = ratio
		}
	}
}

// WithEncoding sets the tiktoken encoding name.
func WithEncoding(name string) Option {
	return func(o *options) {
		if name != "" {
			o.encoding = name
		}
	}
}

// WithModelTokenizer sets the model-backed tokenizer used by KindOllama.
func WithModelTokenizer(t llms.Tokenizer) Option {
	return func(o *options) {
		o.model = t
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New builds the counter of the requested kind. Statistical counters are
// wrapped so that they degrade to the character heuristic when they fail; if
// the primary counter cannot be built at all the heuristic is returned alone.
// Degrading is not an error.
func New(kind Kind, opts ...Option) (Counter, error) {
	o := options{
		charsPerToken: DefaultCharsPerToken,
		encoding:      DefaultEncoding,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("component", "tokenizer")
	heuristic := NewHeuristic(o.charsPerToken)

	var primary Counter
	switch kind {
	case KindHeuristic, "":
		return heuristic, nil
	case KindTiktoken:
		tk, err := NewTiktoken(o.encoding)
		if err != nil {
			logger.Warn("Statistical tokenizer unavailable, using character heuristic",
				"encoding", o.encoding, "chars_per_token", o.charsPerToken, "error", err)
			return heuristic, nil
		}
		primary = tk
	case KindOllama:
		if o.model == nil {
			logger.Warn("Model tokenizer unavailable, using character heuristic", "error", ErrNoModelCounter)
			return heuristic, nil
		}
		primary = NewModel(o.model)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return NewFallback(primary, heuristic, logger), nil
}
