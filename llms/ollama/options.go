package ollama

import (
	"log/slog"
	"net/http"
	"net/url"
)

type options struct {
	model           string
	ollamaServerURL *url.URL
	httpClient      *http.Client
	logger          *slog.Logger
}

// Option is a function type for configuring Ollama client options.
type Option func(*options)

func applyOptions(opts ...Option) options {
	o := options{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithServerURL sets the server address. Unparseable values are ignored and
// the OLLAMA_URL environment variable or the local default is used instead.
func WithServerURL(rawURL string) Option {
	return func(opts *options) {
		if rawURL == "" {
			return
		}
		if parsedURL, err := url.Parse(rawURL); err == nil {
			opts.ollamaServerURL = parsedURL
		}
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
