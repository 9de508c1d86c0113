package textsplitter

import "log/slog"

// options holds configuration settings for the text splitter.
type options struct {
	chunkSize int
	separator string
	logger    *slog.Logger
}

// Option is a function type for configuring the splitter.
type Option func(*options)

// WithChunkSize sets the maximum chunk size in characters. Non-positive
// values are kept so that SplitText can report them.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithSeparator overrides the paragraph separator.
func WithSeparator(sep string) Option {
	return func(o *options) {
		if sep != "" {
			o.separator = sep
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
