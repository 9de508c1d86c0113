package chains

import (
	"context"
	"log/slog"
	"time"

	"github.com/sevigo/lltranslate/budget"
	"github.com/sevigo/lltranslate/documentloaders"
	"github.com/sevigo/lltranslate/llms"
	"github.com/sevigo/lltranslate/textsplitter"
)

const (
	DefaultMaxRetries     = 1
	DefaultRetryDelay     = 5 * time.Second
	DefaultRequestTimeout = 300 * time.Second
	DefaultDelay          = time.Second
)

// DefaultDecoding is the decoding configuration sent with every translation
// request unless overridden.
var DefaultDecoding = llms.CallOptions{
	Temperature:   llms.Ptr(0.2),
	TopP:          llms.Ptr(0.85),
	MaxTokens:     6000,
	NumCtx:        16384,
	RepeatPenalty: llms.Ptr(1.1),
	TopK:          llms.Ptr(40),
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type options struct {
	decoding       llms.CallOptions
	chunkSize      int
	maxRetries     int
	retryDelay     time.Duration
	requestTimeout time.Duration
	delay          time.Duration
	encodings      []string
	sleep          SleepFunc
	estimator      *budget.Estimator
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		decoding:       DefaultDecoding,
		chunkSize:      textsplitter.DefaultChunkSize,
		maxRetries:     DefaultMaxRetries,
		retryDelay:     DefaultRetryDelay,
		requestTimeout: DefaultRequestTimeout,
		delay:          DefaultDelay,
		encodings:      documentloaders.DefaultEncodings,
		sleep:          Sleep,
		logger:         slog.Default(),
	}
}

// Option configures a Translation.
type Option func(*options)

// WithDecoding replaces the decoding configuration. The values are passed
// to the model unchanged.
func WithDecoding(decoding llms.CallOptions) Option {
	return func(o *options) {
		o.decoding = decoding
	}
}

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithMaxRetries sets how many times a timed out request is retried.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		o.retryDelay = d
	}
}

// WithRequestTimeout bounds each request to the model.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.requestTimeout = d
		}
	}
}

// WithDelay sets the pause between two consecutive chunk requests.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		o.delay = d
	}
}

// WithEncodings sets the decode order for input files.
func WithEncodings(encodings ...string) Option {
	return func(o *options) {
		if len(encodings) > 0 {
			o.encodings = encodings
		}
	}
}

// WithSleep replaces the function used for delays and retry back-off.
func WithSleep(sleep SleepFunc) Option {
	return func(o *options) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithEstimator attaches a budget report to every chunk. Reports are
// advisory and never stop a translation.
func WithEstimator(e *budget.Estimator) Option {
	return func(o *options) {
		o.estimator = e
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
