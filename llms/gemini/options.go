package gemini

import (
	"log/slog"
	"net/http"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

type options struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*options)

func applyOptions(opts ...Option) options {
	o := options{
		model:  DefaultModel,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithModel sets the model name. An empty name keeps the default.
func WithModel(model string) Option {
	return func(opts *options) {
		if model != "" {
			opts.model = model
		}
	}
}

// WithAPIKey sets the API key. Without it GEMINI_API_KEY is used.
func WithAPIKey(apiKey string) Option {
	return func(opts *options) {
		opts.apiKey = apiKey
	}
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}
